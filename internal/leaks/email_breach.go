package leaks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/scamguard/internal/model"
)

// breachDateLayouts are tried in order when parsing a breach date.
var breachDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// EmailBreach looks an e-mail address up in a breach API that answers
// {"breaches": [{"name": ..., "date": ...}]}.
type EmailBreach struct {
	providerBase
}

// NewEmailBreach creates the provider. baseURL is the API root, for
// example "https://api.xposedornot.com".
func NewEmailBreach(doer Doer, baseURL string, opts ...ProviderOption) *EmailBreach {
	return &EmailBreach{providerBase: newProviderBase(doer, baseURL, opts)}
}

// Name implements Provider.
func (p *EmailBreach) Name() string {
	return NameEmailBreach
}

type emailBreachResponse struct {
	Breaches []struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"breaches"`
}

// Search implements Provider. A 404 means the address is not in any breach.
func (p *EmailBreach) Search(ctx context.Context, item model.CheckItem) ([]model.LeakRecord, error) {
	endpoint := strings.TrimRight(p.baseURL, "/") + "/v1/check-email/" + url.PathEscape(item.Value)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.doer.Do(req)
	if err != nil {
		return nil, transportError(NameEmailBreach, err)
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: NameEmailBreach, StatusCode: resp.StatusCode}
	}

	body, err := p.readBody(resp)
	if err != nil {
		return nil, err
	}

	var parsed emailBreachResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", NameEmailBreach, err)
	}

	records := make([]model.LeakRecord, 0, len(parsed.Breaches))
	for _, b := range parsed.Breaches {
		records = append(records, model.LeakRecord{
			Source:     NameEmailBreach,
			Site:       b.Name,
			BreachDate: parseBreachDate(b.Date),
		})
	}
	return records, nil
}

// parseBreachDate returns nil for empty or unparsable dates.
func parseBreachDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range breachDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
