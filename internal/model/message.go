package model

import "time"

// Scope is the kind of chat a conversation session lives in.
type Scope int

const (
	// ScopePrivate is a one-to-one dialog with the bot.
	ScopePrivate Scope = iota

	// ScopeGroup is a multi-user chat where only the session owner may add messages.
	ScopeGroup
)

// String returns a human-readable representation of the scope.
func (s Scope) String() string {
	switch s {
	case ScopePrivate:
		return "private"
	case ScopeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// UserID identifies a chat participant.
type UserID int64

// MessageKind records where a collected message came from.
type MessageKind int

const (
	// MessageText is a message typed directly by the sender.
	MessageText MessageKind = iota

	// MessageForwarded is a message forwarded from another chat.
	MessageForwarded

	// MessageReply is a message written as a reply to another message.
	MessageReply
)

// String returns a human-readable representation of the message kind.
func (k MessageKind) String() string {
	switch k {
	case MessageText:
		return "text"
	case MessageForwarded:
		return "forwarded"
	case MessageReply:
		return "reply"
	default:
		return "unknown"
	}
}

// Message is one element of a collected conversation.
type Message struct {
	Text       string      `json:"text"`
	SenderID   UserID      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	Timestamp  time.Time   `json:"timestamp"`
	Kind       MessageKind `json:"kind"`
}
