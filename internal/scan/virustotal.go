package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const (
	// ReportURLPrefix is the human-facing analysis page.
	ReportURLPrefix = "https://www.virustotal.com/gui/file-analysis/"

	// ManualCheckURL is offered when an automatic scan fails.
	ManualCheckURL = "https://www.virustotal.com"

	// MaxUploadSize is the largest file accepted by the direct upload endpoint.
	MaxUploadSize = 32 * 1024 * 1024

	maxResponseBytes = 1 << 20
)

// ReportURL returns the deep link for an analysis.
func ReportURL(id string) string {
	return ReportURLPrefix + url.PathEscape(id)
}

// Doer sends HTTP requests. *transport.Client and *http.Client satisfy it.
// The API key header is expected to be injected by the Doer.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// VirusTotal is an Engine backed by the VirusTotal v3 REST API.
type VirusTotal struct {
	doer    Doer
	baseURL string
}

// NewVirusTotal creates the engine client. baseURL is the API root, for
// example "https://www.virustotal.com/api/v3".
func NewVirusTotal(doer Doer, baseURL string) *VirusTotal {
	return &VirusTotal{doer: doer, baseURL: strings.TrimRight(baseURL, "/")}
}

type vtObjectResponse struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Status string `json:"status"`
			Stats  Stats  `json:"stats"`
		} `json:"attributes"`
	} `json:"data"`
}

type vtErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SubmitURL implements Engine.
func (v *VirusTotal) SubmitURL(ctx context.Context, link string) (string, error) {
	form := url.Values{"url": {link}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	obj, err := v.do(req)
	if err != nil {
		return "", err
	}
	return obj.Data.ID, nil
}

// SubmitFile implements Engine.
func (v *VirusTotal) SubmitFile(ctx context.Context, name string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if n > MaxUploadSize {
		return "", ErrFileTooLarge
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	obj, err := v.do(req)
	if err != nil {
		return "", err
	}
	return obj.Data.ID, nil
}

// Analysis implements Engine.
func (v *VirusTotal) Analysis(ctx context.Context, id string) (Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to build request: %w", err)
	}

	obj, err := v.do(req)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{
		ID:     obj.Data.ID,
		Status: obj.Data.Attributes.Status,
		Stats:  obj.Data.Attributes.Stats,
	}, nil
}

// do sends req and decodes a data object, turning non-2xx answers into *EngineError.
func (v *VirusTotal) do(req *http.Request) (*vtObjectResponse, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := v.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		engineErr := &EngineError{StatusCode: resp.StatusCode}
		var parsed vtErrorResponse
		if json.Unmarshal(body, &parsed) == nil {
			engineErr.Code = parsed.Error.Code
			engineErr.Message = parsed.Error.Message
		}
		return nil, engineErr
	}

	var obj vtObjectResponse
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("invalid engine response: %w", err)
	}
	if obj.Data.ID == "" {
		return nil, fmt.Errorf("invalid engine response: missing analysis id")
	}
	return &obj, nil
}
