package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// AppName is the application name used for XDG directory paths.
const AppName = "scamguard"

// Provider names. They key the endpoints map and the "providers" section
// of the configuration file.
const (
	ProviderPwnedPasswords = "pwnedpasswords"
	ProviderXposedOrNot    = "xposedornot"
	ProviderLeakLookup     = "leaklookup"
	ProviderVirusTotal     = "virustotal"
	ProviderClassifier     = "classifier"
)

// Default configuration values.
const (
	// DefaultPwnedPasswordsURL is the password-range (k-anonymity) API.
	DefaultPwnedPasswordsURL = "https://api.pwnedpasswords.com"

	// DefaultXposedOrNotURL is the e-mail breach API.
	DefaultXposedOrNotURL = "https://api.xposedornot.com"

	// DefaultLeakLookupURL is the generic lookup search endpoint.
	DefaultLeakLookupURL = "https://leak-lookup.com/api/search"

	// DefaultVirusTotalURL is the scan engine REST API root.
	DefaultVirusTotalURL = "https://www.virustotal.com/api/v3"

	// DefaultClassifierURL is the OpenAI-compatible chat-completions gateway.
	DefaultClassifierURL = "https://api.aitunnel.ru/v1"

	// DefaultProviderTimeout bounds a single request to a leak provider
	// or to the scan engine.
	DefaultProviderTimeout = 15 * time.Second

	// DefaultClassifierTimeout bounds the single classification request.
	DefaultClassifierTimeout = 30 * time.Second

	// DefaultClassifierModel is the chat model used for risk analysis.
	DefaultClassifierModel = "gpt-4o-mini"

	// DefaultClassifierMaxTokens caps the classifier answer length.
	DefaultClassifierMaxTokens = 800

	// DefaultClassifierTemperature keeps classification nearly deterministic.
	DefaultClassifierTemperature = 0.1

	// DefaultMinBalance is the quota below which classification is skipped.
	DefaultMinBalance = 50.0

	// DefaultMaxTranscriptRunes is where transcripts are truncated.
	DefaultMaxTranscriptRunes = 4000

	// DefaultScanPollInterval is the delay between analysis status polls.
	DefaultScanPollInterval = 5 * time.Second

	// DefaultScanWaitTimeout bounds wait-for-completion for one artifact.
	DefaultScanWaitTimeout = 3 * time.Minute

	// DefaultMaxBodySize limits provider response bodies.
	DefaultMaxBodySize = 2 * 1024 * 1024 // 2MB

	// DefaultUserAgent identifies scamguard in provider requests.
	DefaultUserAgent = "scamguard/1.0 (+https://github.com/nao1215/scamguard)"

	// DefaultListenAddress is where "scamguard serve" accepts events.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultShutdownTimeout bounds graceful shutdown of in-flight tasks.
	DefaultShutdownTimeout = 10 * time.Second
)

// Endpoint is the resolved connection settings for one provider.
type Endpoint struct {
	// BaseURL is the provider API root (or full URL for single-endpoint APIs).
	BaseURL string

	// Timeout bounds each request made through this provider's handle.
	Timeout time.Duration

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string
}

// Config holds all configuration options for scamguard.
// It is populated by Load and CLI flags, then passed down explicitly.
type Config struct {
	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONLogs switches the logger to JSON output.
	JSONLogs bool

	// ConfigFilePath is an explicit configuration file path.
	// When empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// VirusTotalAPIKey authenticates scan engine requests.
	VirusTotalAPIKey string

	// LeakLookupAPIKey authenticates generic lookup requests.
	LeakLookupAPIKey string

	// ClassifierAPIKey authenticates chat-completion and balance requests.
	// When empty, risk analysis returns a "not configured" degraded result.
	ClassifierAPIKey string

	// Endpoints maps provider names to their resolved settings.
	Endpoints map[string]Endpoint

	// ProxyAddress optionally routes all provider traffic through a SOCKS5
	// proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is sent with every provider request.
	UserAgent string

	// MaxBodySize is the maximum provider response body size in bytes.
	MaxBodySize int64

	// ClassifierModel, ClassifierMaxTokens and ClassifierTemperature tune
	// the chat-completion request.
	ClassifierModel       string
	ClassifierMaxTokens   int
	ClassifierTemperature float64

	// MinBalance is the quota threshold checked before classification.
	MinBalance float64

	// MaxTranscriptRunes is the transcript length limit.
	MaxTranscriptRunes int

	// ScanPollInterval and ScanWaitTimeout drive wait-for-completion.
	ScanPollInterval time.Duration
	ScanWaitTimeout  time.Duration

	// SessionIdleTimeout expires collecting sessions that received no
	// message for this long. Zero disables expiry.
	SessionIdleTimeout time.Duration

	// ListenAddress is the "serve" HTTP listen address.
	ListenAddress string

	// ReplyWebhookURL receives replies produced by "serve". When empty,
	// replies are only logged.
	ReplyWebhookURL string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// JSONReport and MarkdownReport select the CLI report format.
	// They are mutually exclusive; the default is plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the CLI report to a file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoints: map[string]Endpoint{
			ProviderPwnedPasswords: {BaseURL: DefaultPwnedPasswordsURL, Timeout: DefaultProviderTimeout},
			ProviderXposedOrNot:    {BaseURL: DefaultXposedOrNotURL, Timeout: DefaultProviderTimeout},
			ProviderLeakLookup:     {BaseURL: DefaultLeakLookupURL, Timeout: DefaultProviderTimeout},
			ProviderVirusTotal:     {BaseURL: DefaultVirusTotalURL, Timeout: DefaultProviderTimeout},
			ProviderClassifier:     {BaseURL: DefaultClassifierURL, Timeout: DefaultClassifierTimeout},
		},
		UserAgent:             DefaultUserAgent,
		MaxBodySize:           DefaultMaxBodySize,
		ClassifierModel:       DefaultClassifierModel,
		ClassifierMaxTokens:   DefaultClassifierMaxTokens,
		ClassifierTemperature: DefaultClassifierTemperature,
		MinBalance:            DefaultMinBalance,
		MaxTranscriptRunes:    DefaultMaxTranscriptRunes,
		ScanPollInterval:      DefaultScanPollInterval,
		ScanWaitTimeout:       DefaultScanWaitTimeout,
		ListenAddress:         DefaultListenAddress,
		ShutdownTimeout:       DefaultShutdownTimeout,
	}
}

// Endpoint returns the settings for a provider. Unknown names get an
// empty BaseURL and the default provider timeout.
func (c *Config) Endpoint(name string) Endpoint {
	if ep, ok := c.Endpoints[name]; ok {
		return ep
	}
	return Endpoint{Timeout: DefaultProviderTimeout}
}

// XDGConfigDir returns the XDG config directory for scamguard.
// On Linux: ~/.config/scamguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	for name, ep := range c.Endpoints {
		if ep.BaseURL == "" {
			return fmt.Errorf("%w: %s", ErrMissingEndpoint, name)
		}
		if ep.Timeout <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTimeout, name)
		}
	}

	if c.ScanPollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if c.ScanWaitTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxTranscriptRunes <= 0 {
		return ErrInvalidTranscriptLimit
	}

	if c.ClassifierMaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}

	if c.ClassifierTemperature < 0 || c.ClassifierTemperature > 2 {
		return ErrInvalidTemperature
	}

	if c.SessionIdleTimeout < 0 {
		return ErrInvalidIdleTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// Credential names a secret that a command may require.
type Credential int

const (
	// CredentialVirusTotal is the scan engine API key.
	CredentialVirusTotal Credential = iota

	// CredentialLeakLookup is the generic lookup API key.
	CredentialLeakLookup

	// CredentialClassifier is the classifier gateway token.
	CredentialClassifier
)

// String returns the environment variable that supplies the credential.
func (c Credential) String() string {
	switch c {
	case CredentialVirusTotal:
		return EnvVirusTotalAPIKey
	case CredentialLeakLookup:
		return EnvLeakLookupAPIKey
	case CredentialClassifier:
		return EnvClassifierAPIKey
	default:
		return "unknown credential"
	}
}

// RequireCredentials returns ErrMissingCredential for the first required
// credential that is empty. A missing required credential is fatal at startup.
func (c *Config) RequireCredentials(required ...Credential) error {
	for _, cred := range required {
		var value string
		switch cred {
		case CredentialVirusTotal:
			value = c.VirusTotalAPIKey
		case CredentialLeakLookup:
			value = c.LeakLookupAPIKey
		case CredentialClassifier:
			value = c.ClassifierAPIKey
		}
		if value == "" {
			return fmt.Errorf("%w: set %s", ErrMissingCredential, cred)
		}
	}
	return nil
}
