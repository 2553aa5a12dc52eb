package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps failures to reach the service.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse is returned when a successful answer cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is returned for non-success HTTP answers. Message is the
// provider's error message when the body carried one.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("classifier returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("classifier returned status %d: %s", e.StatusCode, e.Message)
}
