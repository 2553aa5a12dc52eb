package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/session"
)

// Job is the unit of work passed through the steps.
type Job struct {
	// Snapshot holds the collected messages, if the job came from a session.
	Snapshot session.Snapshot

	// Transcript is the text sent to the classifier.
	Transcript string

	// Truncated is set when Transcript was shortened.
	Truncated bool

	// Balance is the quota read before classification.
	Balance float64

	// Result is set by the classify step.
	Result model.AnalysisResult

	// PerformedSteps lists the steps that completed.
	PerformedSteps []string
}

// Step is one stage of a Pipeline. A step that returns an error ends the
// run; the error is turned into a degraded result.
type Step interface {
	// Do executes the step on job.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in sequence.
type Pipeline struct {
	steps   []Step
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates an empty Pipeline. Steps are added with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  make([]Step, 0),
		tracer: otel.Tracer("scamguard/internal/pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Discard()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and returns the first error.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "messages", job.Snapshot.Len())
		if err := step.Do(ctx, job); err != nil {
			p.logger.Warn("step failed", "step", step.Name(), "error", err)
			return err
		}
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}
	return nil
}

// Analyze classifies the messages of snapshot. It never fails: every
// error, including a panic inside a step, becomes a degraded result.
func (p *Pipeline) Analyze(ctx context.Context, snapshot session.Snapshot) model.AnalysisResult {
	return p.run(ctx, &Job{Snapshot: snapshot})
}

// AnalyzeText classifies a ready transcript.
func (p *Pipeline) AnalyzeText(ctx context.Context, text string) model.AnalysisResult {
	return p.run(ctx, &Job{Transcript: text})
}

func (p *Pipeline) run(ctx context.Context, job *Job) (result model.AnalysisResult) {
	ctx, span := p.tracer.Start(ctx, "pipeline.analyze",
		trace.WithAttributes(attribute.Int("messages", job.Snapshot.Len())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("analysis panicked", "panic", r)
			result = Degrade(fmt.Errorf("panic: %v", r))
		}
		if result.Degraded() {
			span.SetStatus(codes.Error, result.Status.String())
		}
		span.SetAttributes(
			attribute.String("status", result.Status.String()),
			attribute.Int("risk_score", result.RiskScore),
		)
		p.metrics.ObserveAnalysis(result.Status.String(), result.Tier().String())
	}()

	if err := p.Execute(ctx, job); err != nil {
		span.RecordError(err)
		return Degrade(err)
	}
	if job.Result.Indicators == nil {
		job.Result.Indicators = []string{}
	}
	p.logger.Info("analysis completed",
		"risk_score", job.Result.RiskScore,
		"tier", job.Result.Tier().String(),
		"truncated", job.Truncated,
	)
	return job.Result
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
