package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Balance reads the remaining account balance of the classifier service.
type Balance struct {
	doer    Doer
	baseURL string
}

// NewBalance creates a balance reader for the service rooted at baseURL.
func NewBalance(doer Doer, baseURL string) *Balance {
	return &Balance{doer: doer, baseURL: strings.TrimRight(baseURL, "/")}
}

type balanceResponse struct {
	Balance *float64 `json:"balance"`
}

// Balance returns the current balance.
func (b *Balance) Balance(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/aitunnel/balance", nil)
	if err != nil {
		return 0, fmt.Errorf("create balance request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := send(b.doer, req)
	if err != nil {
		return 0, err
	}

	var resp balanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.Balance == nil {
		return 0, fmt.Errorf("%w: missing balance", ErrMalformedResponse)
	}
	return *resp.Balance, nil
}
