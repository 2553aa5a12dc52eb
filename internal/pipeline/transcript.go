package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/session"
)

// TruncationMarker is appended to a transcript that was shortened.
const TruncationMarker = "... [text truncated]"

// RenderTranscript formats the messages as "Speaker N: text" lines in
// order, followed by a footer naming the message count and chat scope.
// It returns an empty string for a snapshot without messages.
func RenderTranscript(s session.Snapshot) string {
	if s.Len() == 0 {
		return ""
	}

	var b strings.Builder
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "Speaker %d: %s\n", s.SpeakerOf(m.SenderID), m.Text)
	}

	chat := "private chat"
	if s.Scope() == model.ScopeGroup {
		chat = "group chat"
	}
	fmt.Fprintf(&b, "\n[Context: %d messages from a %s]", s.Len(), chat)
	return b.String()
}

// Truncate normalizes text to NFC and cuts it to limit runes, appending
// TruncationMarker when anything was removed. A non-positive limit
// disables truncation.
func Truncate(text string, limit int) (string, bool) {
	text = norm.NFC.String(text)
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + TruncationMarker, true
}
