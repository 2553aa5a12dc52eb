package router

import (
	"time"

	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/session"
)

// EventType discriminates inbound events.
type EventType string

const (
	// EventLeakCheck is the leak check menu entry. The next private text
	// from the chat is searched in the leak providers.
	EventLeakCheck EventType = "leak_check"

	// EventText is a text message, possibly forwarded, captioned or a reply.
	EventText EventType = "text"

	// EventFile is a file to scan. FilePath points at a local copy.
	EventFile EventType = "file"

	// EventAction is a control action on a conversation session.
	EventAction EventType = "action"
)

// Actions carried by an EventAction.
const (
	ActionStart    = "start"
	ActionComplete = string(session.ActionComplete)
	ActionCancel   = string(session.ActionCancel)
)

// Event is an already decoded chat event.
type Event struct {
	Type       EventType    `json:"type"`
	ChatID     int64        `json:"chat_id"`
	Group      bool         `json:"group,omitempty"`
	SenderID   model.UserID `json:"sender_id"`
	SenderName string       `json:"sender_name,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`

	// Message is set for EventText.
	Message *Message `json:"message,omitempty"`

	// FilePath is set for EventFile.
	FilePath string `json:"file_path,omitempty"`

	// Action is set for EventAction.
	Action string `json:"action,omitempty"`

	// Target is the message a group start was sent in reply to.
	Target *Event `json:"target,omitempty"`
}

// Message is the body of a text event.
type Message struct {
	Text       string `json:"text,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Forwarded  bool   `json:"forwarded,omitempty"`

	// Quoted is the text of the message this one replies to.
	Quoted string `json:"quoted,omitempty"`
}

// Inbound converts the message to its session shape.
func (m *Message) Inbound() session.Inbound {
	if m == nil {
		return session.Text{}
	}
	var in session.Inbound
	switch {
	case m.Attachment != "":
		in = session.Captioned{Attachment: m.Attachment, Caption: m.Caption}
	case m.Quoted != "":
		in = session.Reply{Text: m.Text, Quoted: m.Quoted}
	default:
		in = session.Text{Body: m.Text}
	}
	if m.Forwarded {
		in = session.Forwarded{Inner: in}
	}
	return in
}

// Scope returns the chat scope of the event.
func (e Event) Scope() model.Scope {
	if e.Group {
		return model.ScopeGroup
	}
	return model.ScopePrivate
}

// text returns the text the user typed.
func (e Event) text() string {
	return session.ExtractText(e.Message.Inbound())
}

// sessionEvent converts the event to a session message.
func (e Event) sessionEvent() session.Event {
	return session.Event{
		SenderID:   e.SenderID,
		SenderName: e.SenderName,
		Timestamp:  e.Timestamp,
		Body:       e.Message.Inbound(),
	}
}

// key returns the session key owned by the event's sender.
func (e Event) key() session.Key {
	return session.Key{Scope: e.Scope(), ChatID: e.ChatID, OwnerID: e.SenderID}
}
