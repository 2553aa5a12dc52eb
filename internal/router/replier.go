package router

import (
	"context"
	"log/slog"

	"github.com/nao1215/scamguard/internal/session"
)

// Reply is a message sent back to a chat.
type Reply struct {
	ChatID  int64            `json:"chat_id"`
	Text    string           `json:"text"`
	Actions []session.Action `json:"actions,omitempty"`
	Links   []string         `json:"links,omitempty"`
}

// Replier delivers replies to the chat platform.
type Replier interface {
	Reply(ctx context.Context, r Reply) error
}

// ReplierFunc adapts a function to the Replier interface.
type ReplierFunc func(ctx context.Context, r Reply) error

// Reply calls f.
func (f ReplierFunc) Reply(ctx context.Context, r Reply) error {
	return f(ctx, r)
}

// LogReplier writes replies to a logger. It is used when no delivery
// endpoint is configured.
type LogReplier struct {
	logger *slog.Logger
}

// NewLogReplier creates a LogReplier.
func NewLogReplier(logger *slog.Logger) *LogReplier {
	return &LogReplier{logger: logger}
}

// Reply logs r.
func (l *LogReplier) Reply(ctx context.Context, r Reply) error {
	l.logger.InfoContext(ctx, "reply", "chat_id", r.ChatID, "text", r.Text, "actions", r.Actions, "links", r.Links)
	return nil
}
