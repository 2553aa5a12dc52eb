package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatComplete(t *testing.T) {
	t.Parallel()

	t.Run("sends fixed parameters and returns content", func(t *testing.T) {
		t.Parallel()

		var got chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"risk_score\":10}"}}],"usage":{"total_tokens":42}}`)
		}))
		defer server.Close()

		chat := NewChat(server.Client(), server.URL+"/v1/")
		content, err := chat.Complete(context.Background(), "system prompt", "Speaker 1: hi")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content != `{"risk_score":10}` {
			t.Errorf("unexpected content %q", content)
		}
		if got.Model != "gpt-4o-mini" || got.MaxTokens != 800 || got.Temperature != 0.1 || got.Stream {
			t.Errorf("unexpected request parameters %+v", got)
		}
		if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Speaker 1: hi" {
			t.Errorf("unexpected messages %+v", got.Messages)
		}
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		chat := NewChat(http.DefaultClient, "http://localhost", WithModel("gpt-4o"), WithMaxTokens(100), WithTemperature(0))
		if chat.Model() != "gpt-4o" || chat.maxTokens != 100 || chat.temperature != 0 {
			t.Errorf("options not applied: %+v", chat)
		}
	})

	t.Run("status error carries provider message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Model not found: gpt-x","type":"invalid_request_error"}}`)
		}))
		defer server.Close()

		_, err := NewChat(server.Client(), server.URL).Complete(context.Background(), "s", "u")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusBadRequest || statusErr.Message != "Model not found: gpt-x" {
			t.Errorf("unexpected status error %+v", statusErr)
		}
	})

	t.Run("no choices is malformed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[]}`)
		}))
		defer server.Close()

		_, err := NewChat(server.Client(), server.URL).Complete(context.Background(), "s", "u")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("transport failure is a network error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewChat(http.DefaultClient, url).Complete(context.Background(), "s", "u")
		if !errors.Is(err, ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
	})
}

func TestBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    float64
		wantErr error
	}{
		{name: "balance", status: http.StatusOK, body: `{"balance": 123.5}`, want: 123.5},
		{name: "missing field", status: http.StatusOK, body: `{}`, wantErr: ErrMalformedResponse},
		{name: "invalid json", status: http.StatusOK, body: `oops`, wantErr: ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/aitunnel/balance" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			got, err := NewBalance(server.Client(), server.URL+"/v1").Balance(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := NewBalance(server.Client(), server.URL).Balance(context.Background())
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 StatusError, got %v", err)
		}
	})
}
