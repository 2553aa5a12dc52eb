package leaks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nao1215/scamguard/internal/model"
)

// GenericLookup searches any value (e-mail, phone or credential) through a
// lookup API that takes {"key", "query"} and answers {"found": [...]}.
type GenericLookup struct {
	providerBase
	apiKey string
}

// NewGenericLookup creates the provider. endpoint is the full search URL.
func NewGenericLookup(doer Doer, endpoint, apiKey string, opts ...ProviderOption) *GenericLookup {
	return &GenericLookup{
		providerBase: newProviderBase(doer, endpoint, opts),
		apiKey:       apiKey,
	}
}

// Name implements Provider.
func (p *GenericLookup) Name() string {
	return NameGenericLookup
}

type genericLookupRequest struct {
	Key   string `json:"key"`
	Query string `json:"query"`
}

type genericLookupResponse struct {
	Found []json.RawMessage `json:"found"`
}

// foundEntry is the object form of a "found" element.
type foundEntry struct {
	Name string `json:"name"`
	Site string `json:"site"`
}

// Search implements Provider.
func (p *GenericLookup) Search(ctx context.Context, item model.CheckItem) ([]model.LeakRecord, error) {
	payload, err := json.Marshal(genericLookupRequest{Key: p.apiKey, Query: item.Value})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.doer.Do(req)
	if err != nil {
		return nil, transportError(NameGenericLookup, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: NameGenericLookup, StatusCode: resp.StatusCode}
	}

	body, err := p.readBody(resp)
	if err != nil {
		return nil, err
	}

	var parsed genericLookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", NameGenericLookup, err)
	}

	records := make([]model.LeakRecord, 0, len(parsed.Found))
	for _, raw := range parsed.Found {
		records = append(records, model.LeakRecord{
			Source: NameGenericLookup,
			Site:   foundName(raw),
		})
	}
	return records, nil
}

// foundName accepts either a bare string or an object with a name or site.
func foundName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var entry foundEntry
	if err := json.Unmarshal(raw, &entry); err == nil {
		if entry.Name != "" {
			return entry.Name
		}
		return entry.Site
	}
	return ""
}
