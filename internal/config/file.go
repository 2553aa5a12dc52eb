package config

import (
	"fmt"
	"time"
)

// ProviderConfig holds file-level settings for a single provider.
type ProviderConfig struct {
	// BaseURL overrides the provider API root.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Timeout is a Go duration string such as "20s".
	Timeout string `yaml:"timeout,omitempty"`

	// Headers are custom HTTP headers sent to this provider.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// CredentialsConfig holds API keys. Environment variables take precedence.
type CredentialsConfig struct {
	VirusTotal string `yaml:"virustotal,omitempty"`
	LeakLookup string `yaml:"leaklookup,omitempty"`
	Classifier string `yaml:"classifier,omitempty"`
}

// ClassifierConfig tunes risk analysis.
type ClassifierConfig struct {
	Model              string  `yaml:"model,omitempty"`
	MaxTokens          int     `yaml:"maxTokens,omitempty"`
	Temperature        float64 `yaml:"temperature,omitempty"`
	MinBalance         float64 `yaml:"minBalance,omitempty"`
	MaxTranscriptRunes int     `yaml:"maxTranscriptRunes,omitempty"`
}

// ScanConfig tunes wait-for-completion.
type ScanConfig struct {
	PollInterval string `yaml:"pollInterval,omitempty"`
	WaitTimeout  string `yaml:"waitTimeout,omitempty"`
}

// ServerConfig configures "scamguard serve".
type ServerConfig struct {
	Listen          string `yaml:"listen,omitempty"`
	ReplyWebhook    string `yaml:"replyWebhook,omitempty"`
	ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"`
}

// SessionConfig configures conversation sessions.
type SessionConfig struct {
	IdleTimeout string `yaml:"idleTimeout,omitempty"`
}

// File represents the structure of the scamguard configuration file.
type File struct {
	Credentials CredentialsConfig `yaml:"credentials,omitempty"`

	// Providers maps provider names to their configuration.
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`

	// Defaults is applied to every provider unless overridden.
	Defaults ProviderConfig `yaml:"defaults,omitempty"`

	Classifier ClassifierConfig `yaml:"classifier,omitempty"`
	Scan       ScanConfig       `yaml:"scan,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Session    SessionConfig    `yaml:"session,omitempty"`

	// Proxy is an optional SOCKS5 proxy address for provider traffic.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent overrides the default User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// Provider returns the configuration for a provider merged over Defaults.
func (cf *File) Provider(name string) ProviderConfig {
	result := ProviderConfig{
		BaseURL: cf.Defaults.BaseURL,
		Timeout: cf.Defaults.Timeout,
	}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	pc, ok := cf.Providers[name]
	if !ok {
		return result
	}
	if pc.BaseURL != "" {
		result.BaseURL = pc.BaseURL
	}
	if pc.Timeout != "" {
		result.Timeout = pc.Timeout
	}
	if len(pc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(pc.Headers))
		}
		for k, v := range pc.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// Apply merges the file into c. Only values present in the file override.
func (c *Config) Apply(cf *File) error {
	if cf == nil {
		return nil
	}

	for name, ep := range c.Endpoints {
		pc := cf.Provider(name)
		if pc.BaseURL != "" {
			ep.BaseURL = pc.BaseURL
		}
		if pc.Timeout != "" {
			d, err := parseDuration("providers."+name+".timeout", pc.Timeout)
			if err != nil {
				return err
			}
			ep.Timeout = d
		}
		if len(pc.Headers) > 0 {
			ep.Headers = pc.Headers
		}
		c.Endpoints[name] = ep
	}

	setString(&c.VirusTotalAPIKey, cf.Credentials.VirusTotal)
	setString(&c.LeakLookupAPIKey, cf.Credentials.LeakLookup)
	setString(&c.ClassifierAPIKey, cf.Credentials.Classifier)
	setString(&c.ClassifierModel, cf.Classifier.Model)
	setString(&c.ProxyAddress, cf.Proxy)
	setString(&c.UserAgent, cf.UserAgent)
	setString(&c.ListenAddress, cf.Server.Listen)
	setString(&c.ReplyWebhookURL, cf.Server.ReplyWebhook)

	if cf.Classifier.MaxTokens != 0 {
		c.ClassifierMaxTokens = cf.Classifier.MaxTokens
	}
	if cf.Classifier.Temperature != 0 {
		c.ClassifierTemperature = cf.Classifier.Temperature
	}
	if cf.Classifier.MinBalance != 0 {
		c.MinBalance = cf.Classifier.MinBalance
	}
	if cf.Classifier.MaxTranscriptRunes != 0 {
		c.MaxTranscriptRunes = cf.Classifier.MaxTranscriptRunes
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"scan.pollInterval", cf.Scan.PollInterval, &c.ScanPollInterval},
		{"scan.waitTimeout", cf.Scan.WaitTimeout, &c.ScanWaitTimeout},
		{"server.shutdownTimeout", cf.Server.ShutdownTimeout, &c.ShutdownTimeout},
		{"session.idleTimeout", cf.Session.IdleTimeout, &c.SessionIdleTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := parseDuration(d.key, d.value)
		if err != nil {
			return err
		}
		*d.dst = parsed
	}

	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
