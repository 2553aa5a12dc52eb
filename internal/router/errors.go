package router

import "errors"

var (
	// ErrUnknownEvent is returned for an event type the dispatcher does not handle.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrUnknownAction is returned for an action other than start, complete or cancel.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMissingMessage is returned for a text event without a message.
	ErrMissingMessage = errors.New("text event has no message")

	// ErrMissingFile is returned for a file event without a path.
	ErrMissingFile = errors.New("file event has no file path")
)
