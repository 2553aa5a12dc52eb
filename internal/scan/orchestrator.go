package scan

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/scamguard/internal/classify"
	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/model"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultWaitTimeout  = 3 * time.Minute
)

// Orchestrator submits artifacts to an Engine and waits for completion.
type Orchestrator struct {
	engine       Engine
	pollInterval time.Duration
	waitTimeout  time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithWaitTimeout bounds wait-for-completion.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator creates an Orchestrator for engine.
func NewOrchestrator(engine Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:       engine,
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
		tracer:       otel.Tracer("scamguard/internal/scan"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.Discard()
	}
	return o
}

// ScanLink submits a link and returns the verdict of the completed
// analysis. The verdict's ReportID identifies the engine report.
func (o *Orchestrator) ScanLink(ctx context.Context, link string) (model.ScanVerdict, error) {
	ctx, span := o.tracer.Start(ctx, "scan.link",
		trace.WithAttributes(attribute.String("domain", classify.RegistrableDomain(link))))
	defer span.End()

	if link == "" {
		return o.fail(span, "link", &ScanError{Op: OpSubmitLink, Err: ErrEmptyTarget})
	}

	id, err := o.engine.SubmitURL(ctx, link)
	if err != nil {
		return o.fail(span, "link", &ScanError{Op: OpSubmitLink, Target: link, Err: err})
	}
	o.logger.Debug("link submitted", "report_id", id, "domain", classify.RegistrableDomain(link))

	verdict, err := o.waitForCompletion(ctx, id, link)
	if err != nil {
		return o.fail(span, "link", err)
	}
	o.succeed(span, "link", verdict)
	return verdict, nil
}

// ScanFile uploads the file at path and returns the verdict of the
// completed analysis.
func (o *Orchestrator) ScanFile(ctx context.Context, path string) (model.ScanVerdict, error) {
	name := filepath.Base(path)
	ctx, span := o.tracer.Start(ctx, "scan.file")
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = ErrFileNotFound
		}
		return o.fail(span, "file", &ScanError{Op: OpSubmitFile, Target: name, Err: err})
	}
	if info.Size() > MaxUploadSize {
		return o.fail(span, "file", &ScanError{Op: OpSubmitFile, Target: name, Err: ErrFileTooLarge})
	}

	f, err := os.Open(path) //nolint:gosec // user-selected file is intentional
	if err != nil {
		return o.fail(span, "file", &ScanError{Op: OpSubmitFile, Target: name, Err: err})
	}
	defer f.Close()

	id, err := o.engine.SubmitFile(ctx, name, f)
	if err != nil {
		return o.fail(span, "file", &ScanError{Op: OpSubmitFile, Target: name, Err: err})
	}
	o.logger.Debug("file submitted", "report_id", id, "file", name, "size", info.Size())

	verdict, err := o.waitForCompletion(ctx, id, name)
	if err != nil {
		return o.fail(span, "file", err)
	}
	o.succeed(span, "file", verdict)
	return verdict, nil
}

// waitForCompletion polls the analysis until it completes, the wait
// timeout elapses, or a poll fails. Polling is not retrying: a failed
// poll ends the scan.
func (o *Orchestrator) waitForCompletion(ctx context.Context, id, target string) (model.ScanVerdict, error) {
	waitCtx, cancel := context.WithTimeout(ctx, o.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		analysis, err := o.engine.Analysis(waitCtx, id)
		if err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				err = ErrTimeout
			}
			return model.ScanVerdict{}, &ScanError{Op: OpWait, Target: target, Err: err}
		}
		if analysis.Status == StatusCompleted {
			return toVerdict(id, analysis.Stats), nil
		}
		o.logger.Debug("analysis pending", "report_id", id, "status", analysis.Status)

		select {
		case <-waitCtx.Done():
			err := waitCtx.Err()
			if ctx.Err() == nil {
				err = ErrTimeout
			}
			return model.ScanVerdict{}, &ScanError{Op: OpWait, Target: target, Err: err}
		case <-ticker.C:
		}
	}
}

func toVerdict(id string, s Stats) model.ScanVerdict {
	return model.ScanVerdict{
		ReportID:   id,
		Malicious:  s.Malicious,
		Suspicious: s.Suspicious,
		Harmless:   s.Harmless,
		Undetected: s.Undetected,
	}
}

func (o *Orchestrator) fail(span trace.Span, kind string, err error) (model.ScanVerdict, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "scan failed")
	o.metrics.ObserveScan(kind, "error")
	o.logger.Warn("scan failed", "kind", kind, "error", err)
	return model.ScanVerdict{}, err
}

func (o *Orchestrator) succeed(span trace.Span, kind string, v model.ScanVerdict) {
	outcome := "clean"
	if v.Dangerous() {
		outcome = "dangerous"
	}
	span.SetAttributes(
		attribute.String("report_id", v.ReportID),
		attribute.Int("malicious", v.Malicious),
		attribute.Int("suspicious", v.Suspicious),
	)
	o.metrics.ObserveScan(kind, outcome)
	o.logger.Info("scan completed", "kind", kind, "report_id", v.ReportID, "outcome", outcome)
}
