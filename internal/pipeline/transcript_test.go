package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/session"
)

func TestRenderTranscript(t *testing.T) {
	t.Parallel()

	t.Run("private", func(t *testing.T) {
		t.Parallel()

		s := session.NewSnapshot(session.Key{Scope: model.ScopePrivate}, []model.Message{
			{SenderID: 7, Text: "hello"},
			{SenderID: 8, Text: "hi, send the code"},
			{SenderID: 7, Text: "which code?"},
		})
		want := "Speaker 1: hello\nSpeaker 2: hi, send the code\nSpeaker 1: which code?\n\n[Context: 3 messages from a private chat]"
		if got := RenderTranscript(s); got != want {
			t.Errorf("got %q\nwant %q", got, want)
		}
	})

	t.Run("group", func(t *testing.T) {
		t.Parallel()

		s := session.NewSnapshot(session.Key{Scope: model.ScopeGroup}, []model.Message{{SenderID: 1, Text: "x"}})
		if got := RenderTranscript(s); !strings.HasSuffix(got, "[Context: 1 messages from a group chat]") {
			t.Errorf("unexpected footer in %q", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		if got := RenderTranscript(session.Snapshot{}); got != "" {
			t.Errorf("expected empty transcript, got %q", got)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short text is kept", func(t *testing.T) {
		t.Parallel()

		got, truncated := Truncate("short", 4000)
		if got != "short" || truncated {
			t.Errorf("got %q, %v", got, truncated)
		}
	})

	t.Run("cuts at rune boundary", func(t *testing.T) {
		t.Parallel()

		got, truncated := Truncate(strings.Repeat("ж", 4001), 4000)
		if !truncated {
			t.Fatal("expected truncation")
		}
		if !strings.HasSuffix(got, TruncationMarker) {
			t.Errorf("missing marker")
		}
		if n := utf8.RuneCountInString(strings.TrimSuffix(got, TruncationMarker)); n != 4000 {
			t.Errorf("expected 4000 runes, got %d", n)
		}
	})

	t.Run("normalizes before counting", func(t *testing.T) {
		t.Parallel()

		decomposed := strings.Repeat("e\u0301", 3)
		got, truncated := Truncate(decomposed, 3)
		if truncated {
			t.Errorf("composed text fits the limit, got %q", got)
		}
		if got != strings.Repeat("\u00e9", 3) {
			t.Errorf("expected NFC text, got %q", got)
		}
	})

	t.Run("exact limit", func(t *testing.T) {
		t.Parallel()

		if _, truncated := Truncate(strings.Repeat("a", 4000), 4000); truncated {
			t.Error("text at the limit must not be truncated")
		}
	})
}
