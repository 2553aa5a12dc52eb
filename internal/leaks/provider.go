package leaks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nao1215/scamguard/internal/model"
)

// Provider names used as record sources, log fields and metric labels.
const (
	NamePasswordRange = "pwnedpasswords"
	NameEmailBreach   = "xposedornot"
	NameGenericLookup = "leaklookup"
)

// defaultMaxBodySize limits provider response bodies.
const defaultMaxBodySize = 2 * 1024 * 1024

// Provider searches one breach source.
type Provider interface {
	// Name identifies the provider.
	Name() string

	// Search returns the records the provider knows for item.
	Search(ctx context.Context, item model.CheckItem) ([]model.LeakRecord, error)
}

// Doer sends HTTP requests. *transport.Client and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrResponseTooLarge is returned when a provider body exceeds the size limit.
var ErrResponseTooLarge = errors.New("provider response too large")

// StatusError is returned when a provider answers with a non-success status.
type StatusError struct {
	Provider   string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// ProviderOption configures a provider.
type ProviderOption func(*providerBase)

// WithMaxBodySize limits how many bytes of a response body are read.
func WithMaxBodySize(n int64) ProviderOption {
	return func(b *providerBase) {
		if n > 0 {
			b.maxBodySize = n
		}
	}
}

// providerBase holds what every HTTP provider needs.
type providerBase struct {
	doer        Doer
	baseURL     string
	maxBodySize int64
}

func newProviderBase(doer Doer, baseURL string, opts []ProviderOption) providerBase {
	b := providerBase{
		doer:        doer,
		baseURL:     baseURL,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// readBody reads at most maxBodySize bytes from resp.Body.
func (b providerBase) readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > b.maxBodySize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // best effort
	_ = resp.Body.Close()                                          //nolint:errcheck // best effort
}

// transportError drops the request URL from err, since the URL may carry
// the searched value.
func transportError(provider string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %s failed: %w", provider, urlErr.Op, urlErr.Err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
