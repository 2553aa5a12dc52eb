package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvVirusTotalAPIKey   = "VIRUSTOTAL_API_TOKEN"
	EnvLeakLookupAPIKey   = "LEAKLOOKUP_PUBLIC_KEY"
	EnvClassifierAPIKey   = "AI_TUNNEL_TOKEN"
	EnvClassifierURL      = "SCAMGUARD_CLASSIFIER_URL"
	EnvClassifierModel    = "SCAMGUARD_CLASSIFIER_MODEL"
	EnvMinBalance         = "SCAMGUARD_MIN_BALANCE"
	EnvProxy              = "SCAMGUARD_PROXY"
	EnvListenAddress      = "SCAMGUARD_LISTEN"
	EnvReplyWebhook       = "SCAMGUARD_REPLY_WEBHOOK"
	EnvSessionIdleTimeout = "SCAMGUARD_SESSION_IDLE_TIMEOUT"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides c with the environment variables that are set and non-empty.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvVirusTotalAPIKey); ok {
		c.VirusTotalAPIKey = v
	}
	if v, ok := get(EnvLeakLookupAPIKey); ok {
		c.LeakLookupAPIKey = v
	}
	if v, ok := get(EnvClassifierAPIKey); ok {
		c.ClassifierAPIKey = v
	}
	if v, ok := get(EnvClassifierURL); ok {
		ep := c.Endpoint(ProviderClassifier)
		ep.BaseURL = v
		c.Endpoints[ProviderClassifier] = ep
	}
	if v, ok := get(EnvClassifierModel); ok {
		c.ClassifierModel = v
	}
	if v, ok := get(EnvMinBalance); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMinBalance, err)
		}
		c.MinBalance = f
	}
	if v, ok := get(EnvProxy); ok {
		c.ProxyAddress = v
	}
	if v, ok := get(EnvListenAddress); ok {
		c.ListenAddress = v
	}
	if v, ok := get(EnvReplyWebhook); ok {
		c.ReplyWebhookURL = v
	}
	if v, ok := get(EnvSessionIdleTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSessionIdleTimeout, err)
		}
		c.SessionIdleTimeout = d
	}

	return nil
}
