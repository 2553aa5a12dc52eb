package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 800
	defaultTemperature = 0.1

	maxResponseBytes = 1 << 20
)

// Doer sends HTTP requests. The bearer token and the request timeout are
// expected to be applied by the Doer.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Chat is a chat-completions client.
type Chat struct {
	doer        Doer
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithModel sets the model name.
func WithModel(model string) ChatOption {
	return func(c *Chat) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) ChatOption {
	return func(c *Chat) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ChatOption {
	return func(c *Chat) {
		if t >= 0 {
			c.temperature = t
		}
	}
}

// NewChat creates a client for the service rooted at baseURL, for example
// "https://api.aitunnel.ru/v1".
func NewChat(doer Doer, baseURL string, opts ...ChatOption) *Chat {
	c := &Chat{
		doer:        doer,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       defaultModel,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Chat) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one system and one user message and returns the
// assistant's content. Non-success answers are returned as *StatusError,
// transport failures wrap ErrNetwork.
func (c *Chat) Complete(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := send(c.doer, req)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// send performs req and returns the body of a 2xx answer.
func send(doer Doer, req *http.Request) ([]byte, error) {
	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errBody errorResponse
		if json.Unmarshal(respBody, &errBody) == nil {
			statusErr.Message = errBody.Error.Message
		}
		return nil, statusErr
	}
	return respBody, nil
}
