package session

import (
	"fmt"
	"time"

	"github.com/nao1215/scamguard/internal/model"
)

// State is the lifecycle state of a session.
type State int

const (
	// StateIdle means no messages are being collected.
	StateIdle State = iota

	// StateCollecting means messages are being accumulated.
	StateCollecting

	// StateTerminal means the messages are frozen and being analyzed.
	StateTerminal
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Key identifies a session. In private chats OwnerID is the user talking
// to the bot; in group chats it is the user who started the session.
type Key struct {
	Scope   model.Scope
	ChatID  int64
	OwnerID model.UserID
}

// String returns a log-friendly form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d", k.Scope, k.ChatID, k.OwnerID)
}

// Action is a control affordance offered with an acknowledgement.
type Action string

const (
	// ActionComplete finishes collection and analyzes the messages.
	ActionComplete Action = "complete"

	// ActionCancel discards the collected messages.
	ActionCancel Action = "cancel"
)

// Ack acknowledges a stored message.
type Ack struct {
	Count   int      `json:"count"`
	Actions []Action `json:"actions"`
}

func newAck(count int) Ack {
	return Ack{Count: count, Actions: []Action{ActionComplete, ActionCancel}}
}

// Snapshot is a frozen copy of a session's messages.
type Snapshot struct {
	Key       Key
	Messages  []model.Message
	StartedAt time.Time

	speakers map[model.UserID]int
}

// Scope returns the scope of the snapshot's session.
func (s Snapshot) Scope() model.Scope {
	return s.Key.Scope
}

// Len returns the number of messages.
func (s Snapshot) Len() int {
	return len(s.Messages)
}

// SpeakerOf returns the 1-based ordinal of a sender in order of first
// appearance, or 0 if the sender wrote none of the messages.
func (s Snapshot) SpeakerOf(id model.UserID) int {
	if s.speakers != nil {
		return s.speakers[id]
	}
	for i, n := 0, 0; i < len(s.Messages); i++ {
		seen := false
		for _, prev := range s.Messages[:i] {
			if prev.SenderID == s.Messages[i].SenderID {
				seen = true
				break
			}
		}
		if !seen {
			n++
			if s.Messages[i].SenderID == id {
				return n
			}
		}
	}
	return 0
}

// NewSnapshot builds a snapshot from messages, assigning speaker ordinals
// in order of first appearance.
func NewSnapshot(key Key, messages []model.Message) Snapshot {
	s := Snapshot{
		Key:      key,
		Messages: append([]model.Message(nil), messages...),
		speakers: make(map[model.UserID]int),
	}
	for _, m := range s.Messages {
		if _, ok := s.speakers[m.SenderID]; !ok {
			s.speakers[m.SenderID] = len(s.speakers) + 1
		}
	}
	return s
}

// Outcome is the result of completing a session.
type Outcome struct {
	Snapshot Snapshot
	Result   model.AnalysisResult
}
