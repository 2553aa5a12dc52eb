package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when the file to scan does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when the file exceeds the direct upload limit.
	ErrFileTooLarge = errors.New("file too large for direct upload")

	// ErrTimeout is returned when the analysis does not complete in time.
	ErrTimeout = errors.New("analysis did not complete in time")

	// ErrEmptyTarget is returned when the link or file name is empty.
	ErrEmptyTarget = errors.New("empty scan target")
)

// Scan operations reported in ScanError.Op.
const (
	OpSubmitLink = "submit link"
	OpSubmitFile = "submit file"
	OpWait       = "wait for analysis"
)

// ScanError describes a failed scan. Target is a link or a file base name.
type ScanError struct {
	Op     string
	Target string
	Err    error
}

// Error implements error.
func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s %q: %v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// EngineError is returned by the engine client for non-success answers.
type EngineError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements error.
func (e *EngineError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("engine returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("engine returned status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}
