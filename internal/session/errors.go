package session

import "errors"

var (
	// ErrBusy is returned when a session is being analyzed and cannot change.
	ErrBusy = errors.New("session is being analyzed")

	// ErrNotCollecting is returned by terminal actions on a session that is not collecting.
	ErrNotCollecting = errors.New("session is not collecting messages")

	// ErrNoMessages is returned when completing a session that holds no messages.
	ErrNoMessages = errors.New("no messages to analyze")
)
