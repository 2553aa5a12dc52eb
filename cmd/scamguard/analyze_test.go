package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/session"
)

func TestSplitSpeaker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line     string
		wantName string
		wantText string
	}{
		{line: "Alice: hello there", wantName: "Alice", wantText: "hello there"},
		{line: "no speaker here", wantName: "unknown", wantText: "no speaker here"},
		{line: "https://example.com: look", wantName: "unknown", wantText: "https://example.com: look"},
		{line: ": empty name", wantName: "unknown", wantText: ": empty name"},
		{line: strings.Repeat("x", maxSpeakerRunes+1) + ": text", wantName: "unknown", wantText: strings.Repeat("x", maxSpeakerRunes+1) + ": text"},
	}

	for _, tt := range tests {
		name, text := splitSpeaker(tt.line)
		if name != tt.wantName || text != tt.wantText {
			t.Errorf("splitSpeaker(%q) = (%q, %q), want (%q, %q)", tt.line, name, text, tt.wantName, tt.wantText)
		}
	}
}

func TestParseConversation(t *testing.T) {
	t.Parallel()

	input := `Alice: Hi, I am from the bank security service

Bob: What happened?
> What happened?
Alice: Tell me the code from the SMS
Bob: ok
`
	events, err := parseConversation(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	if events[0].SenderName != "Alice" || events[1].SenderName != "Bob" {
		t.Errorf("unexpected speakers %q, %q", events[0].SenderName, events[1].SenderName)
	}
	if events[0].SenderID != events[2].SenderID {
		t.Error("expected the same id for the same speaker")
	}
	if events[0].SenderID == events[1].SenderID {
		t.Error("expected different ids for different speakers")
	}

	reply, ok := events[2].Body.(session.Reply)
	if !ok {
		t.Fatalf("expected a reply after a quoted line, got %T", events[2].Body)
	}
	if reply.Quoted != "What happened?" || reply.Text != "Tell me the code from the SMS" {
		t.Errorf("unexpected reply %+v", reply)
	}
	if _, ok := events[3].Body.(session.Text); !ok {
		t.Errorf("expected the quote to apply to one message only, got %T", events[3].Body)
	}
}

func TestAnalyzeConversation(t *testing.T) {
	t.Parallel()

	events, err := parseConversation(strings.NewReader("Alice: send money\n> send money\nBob: why?\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("private keeps quoted text", func(t *testing.T) {
		t.Parallel()

		var seen session.Snapshot
		analyzer := session.AnalyzerFunc(func(_ context.Context, s session.Snapshot) model.AnalysisResult {
			seen = s
			return model.AnalysisResult{RiskScore: 75, Status: model.AnalysisOK}
		})

		m := session.NewManager()
		out, err := analyzeConversation(context.Background(), m, analyzer, model.ScopePrivate, events)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result.RiskScore != 75 {
			t.Errorf("expected risk score 75, got %d", out.Result.RiskScore)
		}
		if seen.Len() != 2 {
			t.Fatalf("expected 2 messages, got %d", seen.Len())
		}
		if !strings.Contains(seen.Messages[1].Text, "send money") {
			t.Errorf("expected the private reply to carry the quote, got %q", seen.Messages[1].Text)
		}
		if seen.Messages[1].Kind != model.MessageReply {
			t.Errorf("expected reply kind, got %v", seen.Messages[1].Kind)
		}
		if m.Active() != 0 {
			t.Errorf("expected the session to be removed, %d active", m.Active())
		}
	})

	t.Run("group drops provenance", func(t *testing.T) {
		t.Parallel()

		var seen session.Snapshot
		analyzer := session.AnalyzerFunc(func(_ context.Context, s session.Snapshot) model.AnalysisResult {
			seen = s
			return model.AnalysisResult{Status: model.AnalysisOK}
		})

		_, err := analyzeConversation(context.Background(), session.NewManager(), analyzer, model.ScopeGroup, events)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen.Messages[1].Text != "why?" {
			t.Errorf("expected group reply without quote, got %q", seen.Messages[1].Text)
		}
		if seen.Messages[1].Kind != model.MessageText {
			t.Errorf("expected text kind in group scope, got %v", seen.Messages[1].Kind)
		}
	})

	t.Run("empty conversation", func(t *testing.T) {
		t.Parallel()

		_, err := analyzeConversation(context.Background(), session.NewManager(), session.AnalyzerFunc(nil), model.ScopePrivate, nil)
		if !errors.Is(err, session.ErrNoMessages) {
			t.Errorf("expected ErrNoMessages, got %v", err)
		}
	})
}
