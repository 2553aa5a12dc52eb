package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nao1215/scamguard/internal/router"
)

// Doer sends HTTP requests. *transport.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookReplier delivers replies by POSTing them as JSON to a URL.
type WebhookReplier struct {
	doer Doer
	url  string
}

// NewWebhookReplier creates a WebhookReplier.
func NewWebhookReplier(doer Doer, url string) *WebhookReplier {
	return &WebhookReplier{doer: doer, url: url}
}

// Reply posts r to the webhook. Any non-2xx answer is an error.
func (w *WebhookReplier) Reply(ctx context.Context, r router.Reply) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.doer.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post reply: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("reply webhook returned status %d", resp.StatusCode)
	}
	return nil
}
