package scan

import (
	"context"
	"io"
)

// Analysis statuses reported by the engine.
const (
	StatusQueued     = "queued"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Stats are the per-outcome engine counts of a completed analysis.
type Stats struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
	Timeout    int `json:"timeout"`
	Failure    int `json:"failure"`
}

// Analysis is one poll result.
type Analysis struct {
	ID     string
	Status string
	Stats  Stats
}

// Engine is a scanning service that accepts artifacts and produces analyses.
type Engine interface {
	// SubmitURL queues a link and returns the analysis ID.
	SubmitURL(ctx context.Context, link string) (string, error)

	// SubmitFile uploads content under name and returns the analysis ID.
	SubmitFile(ctx context.Context, name string, content io.Reader) (string, error)

	// Analysis fetches the current state of an analysis.
	Analysis(ctx context.Context, id string) (Analysis, error)
}
