package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_MasksSensitiveKeys tests that sensitive keys are masked.
func TestSecureHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "x-apikey header", key: "x-apikey", value: "vt-key-123", wantMask: true},
		{name: "Authorization header", key: "Authorization", value: "Bearer abc", wantMask: true},
		{name: "leak query", key: "query", value: "+12345678901", wantMask: true},
		{name: "submitted credential", key: "credential", value: "hunter2", wantMask: true},
		{name: "conversation text", key: "text", value: "send me the code", wantMask: true},
		{name: "key containing token", key: "gateway_token", value: "abc", wantMask: true},
		{name: "provider name stays", key: "provider", value: "xposedornot", wantMask: false},
		{name: "report id stays", key: "report_id", value: "u-abc-123", wantMask: false},
		{name: "status stays", key: "status", value: "completed", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test message", tt.key, tt.value)
			output := buf.String()

			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked, got: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected %q in output, got: %s", MaskValue, output)
				}
			} else if !strings.Contains(output, tt.value) {
				t.Errorf("expected value %q in output, got: %s", tt.value, output)
			}
		})
	}
}

// TestSecureHandler_MasksSensitivePatterns tests that values are masked by shape.
func TestSecureHandler_MasksSensitivePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{name: "bearer token", value: "Bearer sk-abcdefghijklmnop", wantMask: true},
		{name: "gateway key", value: "sk-aitunnel-0123456789abcdef", wantMask: true},
		{name: "jwt", value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", wantMask: true},
		{name: "64 hex api key", value: strings.Repeat("a1", 32), wantMask: true},
		{name: "email", value: "victim@example.com", wantMask: true},
		{name: "short word", value: "completed", wantMask: false},
		{name: "url", value: "https://www.virustotal.com/gui/file-analysis/abc", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test message", "detail", tt.value)
			output := buf.String()

			if got := strings.Contains(output, MaskValue); got != tt.wantMask {
				t.Errorf("masked = %v, expected %v; output: %s", got, tt.wantMask, output)
			}
		})
	}
}

// TestSecureHandler_LogLevels tests that verbose toggles debug output.
func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	t.Run("non-verbose drops info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("shown")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("info should not be logged when not verbose")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn should be logged")
		}
	})

	t.Run("verbose keeps debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("details")
		if !strings.Contains(buf.String(), "details") {
			t.Error("debug should be logged when verbose")
		}
	})
}

// TestSecureHandler_WithAttrs tests that attributes added with With are masked.
func TestSecureHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).With("apikey", "vt-secret", "provider", "virustotal")
	logger.Info("submit")

	output := buf.String()
	if strings.Contains(output, "vt-secret") {
		t.Errorf("expected apikey to be masked: %s", output)
	}
	if !strings.Contains(output, "virustotal") {
		t.Errorf("expected provider to stay: %s", output)
	}
}

// TestSecureHandler_WithGroup tests masking inside groups.
func TestSecureHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, true)
	logger.Info("request", slog.Group("headers", slog.String("x-apikey", "secret-value"), slog.String("accept", "json")))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	headers, ok := entry["headers"].(map[string]any)
	if !ok {
		t.Fatalf("expected headers group, got %v", entry)
	}
	if headers["x-apikey"] != MaskValue {
		t.Errorf("expected masked x-apikey, got %v", headers["x-apikey"])
	}
	if headers["accept"] != "json" {
		t.Errorf("expected accept to stay, got %v", headers["accept"])
	}

	buf.Reset()
	logger.WithGroup("leaks").Info("lookup", "email", "a@b.io")
	if strings.Contains(buf.String(), "a@b.io") {
		t.Errorf("expected email to be masked: %s", buf.String())
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewLogger(&buf, false, true).Warn("json please")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got %s", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, false, false).Warn("text please")
	if !strings.Contains(buf.String(), "msg=\"text please\"") {
		t.Errorf("expected text output, got %s", buf.String())
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("user@example.com")
	if len(a) != fingerprintLength {
		t.Fatalf("expected %d chars, got %q", fingerprintLength, a)
	}
	if a != Fingerprint("user@example.com") {
		t.Error("fingerprint is not stable")
	}
	if a == Fingerprint("other@example.com") {
		t.Error("different values share a fingerprint")
	}
	if isSensitiveValue(a) {
		t.Error("fingerprint itself should not be masked")
	}
}

func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("expected fallback handler")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	Discard().Error("nothing happens")
}
