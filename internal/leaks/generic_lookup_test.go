package leaks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/scamguard/internal/model"
)

func TestGenericLookupSearch(t *testing.T) {
	t.Parallel()

	t.Run("sends key and query", func(t *testing.T) {
		t.Parallel()

		var got genericLookupRequest
		var method, contentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			contentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = io.WriteString(w, `{"found":["vk.com",{"name":"mail.ru"},{"site":"ok.ru"},42]}`)
		}))
		defer server.Close()

		p := NewGenericLookup(server.Client(), server.URL, "public-key")
		records, err := p.Search(context.Background(), model.CheckItem{Value: "+79991234567", Kind: model.ItemPhone})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if method != http.MethodPost || contentType != "application/json" {
			t.Errorf("unexpected request %s %s", method, contentType)
		}
		if got.Key != "public-key" || got.Query != "+79991234567" {
			t.Errorf("unexpected payload %+v", got)
		}

		expected := []string{"vk.com", "mail.ru", "ok.ru", ""}
		if len(records) != len(expected) {
			t.Fatalf("expected %d records, got %d", len(expected), len(records))
		}
		for i, site := range expected {
			if records[i].Site != site {
				t.Errorf("record %d site = %q, expected %q", i, records[i].Site, site)
			}
			if records[i].Source != NameGenericLookup {
				t.Errorf("record %d source = %q", i, records[i].Source)
			}
		}
	})

	t.Run("missing found field", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{}`)
		}))
		defer server.Close()

		records, err := NewGenericLookup(server.Client(), server.URL, "k").
			Search(context.Background(), model.CheckItem{Value: "login"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %v", records)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := NewGenericLookup(server.Client(), server.URL, "bad").
			Search(context.Background(), model.CheckItem{Value: "login"})
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 StatusError, got %v", err)
		}
	})
}
