package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/session"
)

// defaultConcurrency bounds concurrent classifier calls in a batch.
const defaultConcurrency = 4

// BatchProcessor analyzes several independent conversations concurrently.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor running p.
func NewBatchProcessor(p *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipeline:    p,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = log.Discard()
	}
	return bp
}

// ProcessBatch analyzes every snapshot and returns the results in input
// order. A failing analysis yields a degraded result and does not stop
// the others.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, snapshots []session.Snapshot) []model.AnalysisResult {
	results := make([]model.AnalysisResult, len(snapshots))
	_ = bp.ProcessBatchWithCallback(ctx, snapshots, func(result model.AnalysisResult, index int) {
		results[index] = result
	})
	return results
}

// ProcessBatchWithCallback analyzes every snapshot and calls callback with
// each result as it completes. The callback may run concurrently with
// itself for different indexes. Snapshots not started before ctx is done
// get a degraded result.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	snapshots []session.Snapshot,
	callback func(result model.AnalysisResult, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total", len(snapshots),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, snapshot := range snapshots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				callback(Degrade(err), i)
				return nil
			}
			callback(bp.pipeline.Analyze(ctx, snapshot), i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch analysis complete",
		"total", len(snapshots),
		"elapsed", time.Since(start),
	)
	if err == nil {
		err = ctx.Err()
	}
	return err
}
