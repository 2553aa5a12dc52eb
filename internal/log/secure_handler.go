package log

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers used by the providers
	"authorization":       true,
	"proxy-authorization": true,
	"x-apikey":            true,
	"x-api-key":           true,
	"cookie":              true,

	// Provider credentials
	"api_key":  true,
	"apikey":   true,
	"api-key":  true,
	"key":      true,
	"token":    true,
	"password": true,
	"secret":   true,

	// Values a user submits for a leak check
	"query":      true,
	"value":      true,
	"credential": true,
	"email":      true,
	"phone":      true,

	// Conversation content
	"text":       true,
	"caption":    true,
	"transcript": true,
}

// sensitiveKeywords mask any key that contains them.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "apikey", "api_key",
}

// sensitivePatterns mask string values regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// OpenAI-compatible gateway keys
	regexp.MustCompile(`^sk-[A-Za-z0-9_-]{16,}$`),

	// Long opaque API keys (VirusTotal keys are 64 hex chars)
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),

	// E-mail addresses submitted for leak checks
	regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// fingerprintLength is the number of hex characters kept by Fingerprint.
const fingerprintLength = 12

// SecureHandler wraps an slog.Handler and masks sensitive attributes
// (provider credentials, values submitted for leak checks, conversation
// text) before they reach the underlying handler.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes masked and added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, recursing into groups.
func maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			masked[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] || containsSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// containsSensitiveKeyword reports whether key contains a sensitive keyword.
// The bare word "key" is matched only exactly (see sensitiveKeys) so that
// keys like "session_key_scope" or "report_key" stay readable.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue reports whether value matches a sensitive pattern.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// Fingerprint returns a short, stable, non-reversible tag for a sensitive
// value so that log lines about the same lookup can be correlated without
// logging the value itself. The digest is SHA3-256, distinct from the
// SHA-1 used for password-range queries.
func Fingerprint(value string) string {
	sum := sha3.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}

// NewSecureLogger creates a text logger that masks sensitive attributes.
// verbose selects slog.LevelDebug, otherwise slog.LevelWarn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a JSON logger that masks sensitive attributes.
// It is used by the long-running server where logs are shipped to an aggregator.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

// NewLogger picks the text or JSON logger.
func NewLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return NewSecureJSONLogger(w, verbose)
	}
	return NewSecureLogger(w, verbose)
}

// Discard returns a logger that drops everything. Components fall back to
// it when no logger is injected.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
