package leaks

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // the range API is keyed by SHA-1
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nao1215/scamguard/internal/model"
)

// hashPrefixLength is the number of hex characters sent to the range API.
const hashPrefixLength = 5

// PasswordRange checks a credential against a k-anonymity password-range
// API. Only the first five characters of the upper-case SHA-1 hex digest
// leave the process; matching happens locally.
type PasswordRange struct {
	providerBase
}

// NewPasswordRange creates the provider. baseURL is the API root, for
// example "https://api.pwnedpasswords.com".
func NewPasswordRange(doer Doer, baseURL string, opts ...ProviderOption) *PasswordRange {
	return &PasswordRange{providerBase: newProviderBase(doer, baseURL, opts)}
}

// Name implements Provider.
func (p *PasswordRange) Name() string {
	return NamePasswordRange
}

// Search implements Provider. A hit yields exactly one anonymous record.
func (p *PasswordRange) Search(ctx context.Context, item model.CheckItem) ([]model.LeakRecord, error) {
	prefix, suffix := hashParts(item.Value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.baseURL, "/")+"/range/"+prefix, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := p.doer.Do(req)
	if err != nil {
		return nil, transportError(NamePasswordRange, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: NamePasswordRange, StatusCode: resp.StatusCode}
	}

	body, err := p.readBody(resp)
	if err != nil {
		return nil, err
	}

	count := matchSuffix(body, suffix)
	if count <= 0 {
		return nil, nil
	}
	return []model.LeakRecord{{Source: NamePasswordRange}}, nil
}

// hashParts returns the 5-character prefix and the remaining suffix of the
// upper-case SHA-1 hex digest of secret.
func hashParts(secret string) (string, string) {
	sum := sha1.Sum([]byte(secret)) //nolint:gosec // required by the range API
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest[:hashPrefixLength], digest[hashPrefixLength:]
}

// matchSuffix scans "SUFFIX:COUNT" lines and returns the count for suffix,
// or 0 when absent. Padding entries carry a count of 0. Malformed lines are skipped.
func matchSuffix(body []byte, suffix string) int {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		hashSuffix, rawCount, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(hashSuffix, suffix) {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(rawCount))
		if err != nil {
			continue
		}
		return count
	}
	return 0
}
