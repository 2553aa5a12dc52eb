package pipeline

import "errors"

var (
	// ErrNotConfigured is returned when no classifier is configured.
	ErrNotConfigured = errors.New("classifier not configured")

	// ErrInsufficientBalance is returned when the quota is below the minimum.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrQuotaUnavailable is returned when the quota cannot be read.
	ErrQuotaUnavailable = errors.New("balance check failed")

	// ErrEmptyTranscript is returned when there is nothing to classify.
	ErrEmptyTranscript = errors.New("empty transcript")
)
