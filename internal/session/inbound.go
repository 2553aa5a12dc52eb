package session

import (
	"time"

	"github.com/nao1215/scamguard/internal/model"
)

// replyMarker separates a reply from the message it answers.
const replyMarker = "\n[Reply to]: "

// Inbound is the shape of a message received from the chat platform.
// The set of shapes is closed: Text, Captioned, Forwarded and Reply.
type Inbound interface {
	inbound()
}

// Text is a plain text message.
type Text struct {
	Body string
}

// Captioned is an attachment (photo, document, video) with an optional caption.
type Captioned struct {
	Attachment string
	Caption    string
}

// Forwarded is a message forwarded from another chat.
type Forwarded struct {
	Inner Inbound
}

// Reply is a message written in reply to another message.
type Reply struct {
	Text   string
	Quoted string
}

func (Text) inbound()      {}
func (Captioned) inbound() {}
func (Forwarded) inbound() {}
func (Reply) inbound()     {}

// ExtractText returns the text carried by a message. A reply returns its
// own text without the quoted message.
func ExtractText(in Inbound) string {
	switch m := in.(type) {
	case Text:
		return m.Body
	case Captioned:
		return m.Caption
	case Forwarded:
		return ExtractText(m.Inner)
	case Reply:
		return m.Text
	default:
		return ""
	}
}

// Provenance returns where the message came from.
func Provenance(in Inbound) model.MessageKind {
	switch in.(type) {
	case Forwarded:
		return model.MessageForwarded
	case Reply:
		return model.MessageReply
	default:
		return model.MessageText
	}
}

// composeText returns the text stored for a message in the given scope.
// Private replies keep the quoted message so the analyzer sees both sides.
func composeText(in Inbound, scope model.Scope) string {
	r, ok := in.(Reply)
	if !ok || scope != model.ScopePrivate || r.Quoted == "" {
		return ExtractText(in)
	}
	return r.Text + replyMarker + r.Quoted
}

// Event is an inbound message together with its author.
type Event struct {
	SenderID   model.UserID
	SenderName string
	Timestamp  time.Time
	Body       Inbound
}

// Message converts the event to the message stored for scope.
func (e Event) Message(scope model.Scope) model.Message {
	kind := model.MessageText
	if scope == model.ScopePrivate {
		kind = Provenance(e.Body)
	}
	return model.Message{
		Text:       composeText(e.Body, scope),
		SenderID:   e.SenderID,
		SenderName: e.SenderName,
		Timestamp:  e.Timestamp,
		Kind:       kind,
	}
}
