package config

import "errors"

// Configuration validation errors returned by Validate and RequireCredentials.
var (
	// ErrMissingCredential is returned when a required API key is not configured.
	ErrMissingCredential = errors.New("missing required credential")

	// ErrMissingEndpoint is returned when a provider has no base URL.
	ErrMissingEndpoint = errors.New("missing provider endpoint")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPollInterval is returned when the scan poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid scan poll interval: must be positive")

	// ErrInvalidTranscriptLimit is returned when the transcript limit is not positive.
	ErrInvalidTranscriptLimit = errors.New("invalid transcript limit: must be positive")

	// ErrInvalidMaxTokens is returned when the classifier token cap is not positive.
	ErrInvalidMaxTokens = errors.New("invalid classifier max tokens: must be positive")

	// ErrInvalidTemperature is returned when the temperature is outside [0, 2].
	ErrInvalidTemperature = errors.New("invalid classifier temperature: must be between 0 and 2")

	// ErrInvalidIdleTimeout is returned when the session idle timeout is negative.
	ErrInvalidIdleTimeout = errors.New("invalid session idle timeout: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
