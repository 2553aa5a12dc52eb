package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/scamguard/internal/classifier"
	"github.com/nao1215/scamguard/internal/config"
	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/model"
)

// QuotaGate reports the remaining balance of the classifier account.
type QuotaGate interface {
	Balance(ctx context.Context) (float64, error)
}

// Completer sends a system and a user message to a chat model and returns
// the answer.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// RenderStep renders the snapshot into a transcript. A job that already
// carries a transcript is left as is.
type RenderStep struct{}

// NewRenderStep creates a new RenderStep.
func NewRenderStep() *RenderStep {
	return &RenderStep{}
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render"
}

// Do executes the step.
func (s *RenderStep) Do(_ context.Context, job *Job) error {
	if job.Transcript == "" {
		job.Transcript = RenderTranscript(job.Snapshot)
	}
	if job.Transcript == "" {
		return ErrEmptyTranscript
	}
	return nil
}

// TruncateStep bounds the transcript length.
type TruncateStep struct {
	limit int
}

// NewTruncateStep creates a step that keeps at most limit runes.
func NewTruncateStep(limit int) *TruncateStep {
	return &TruncateStep{limit: limit}
}

// Name returns the step name.
func (s *TruncateStep) Name() string {
	return "truncate"
}

// Do executes the step.
func (s *TruncateStep) Do(_ context.Context, job *Job) error {
	job.Transcript, job.Truncated = Truncate(job.Transcript, s.limit)
	return nil
}

// QuotaStep stops the run when the classifier balance is below a minimum.
type QuotaStep struct {
	gate       QuotaGate
	minBalance float64
	logger     *slog.Logger
}

// NewQuotaStep creates a quota check against gate. A nil gate disables
// the check.
func NewQuotaStep(gate QuotaGate, minBalance float64, logger *slog.Logger) *QuotaStep {
	if logger == nil {
		logger = log.Discard()
	}
	return &QuotaStep{gate: gate, minBalance: minBalance, logger: logger}
}

// Name returns the step name.
func (s *QuotaStep) Name() string {
	return "quota"
}

// Do executes the step.
func (s *QuotaStep) Do(ctx context.Context, job *Job) error {
	if s.gate == nil {
		return nil
	}
	balance, err := s.gate.Balance(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQuotaUnavailable, err)
	}
	job.Balance = balance
	if balance < s.minBalance {
		s.logger.Warn("classifier balance too low", "balance", balance, "minimum", s.minBalance)
		return ErrInsufficientBalance
	}
	s.logger.Debug("classifier balance", "balance", balance)
	return nil
}

// ClassifyStep sends the transcript to the classifier once.
type ClassifyStep struct {
	completer Completer
}

// NewClassifyStep creates a classification step. A nil completer makes
// the step fail with ErrNotConfigured.
func NewClassifyStep(completer Completer) *ClassifyStep {
	return &ClassifyStep{completer: completer}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the step.
func (s *ClassifyStep) Do(ctx context.Context, job *Job) error {
	if s.completer == nil {
		return ErrNotConfigured
	}
	content, err := s.completer.Complete(ctx, classifier.SystemPrompt, job.Transcript)
	if err != nil {
		return err
	}
	verdict, err := classifier.ParseVerdict(content)
	if err != nil {
		return err
	}
	job.Result = model.AnalysisResult{
		RiskScore:  verdict.RiskScore,
		Indicators: verdict.Indicators,
		Analysis:   verdict.Analysis,
		Confidence: verdict.Confidence,
		Status:     model.AnalysisOK,
	}
	return nil
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*defaultPipelineConfig)

type defaultPipelineConfig struct {
	maxTranscriptRunes int
	minBalance         float64
}

// WithMaxTranscriptRunes sets the truncation limit.
func WithMaxTranscriptRunes(n int) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		if n > 0 {
			c.maxTranscriptRunes = n
		}
	}
}

// WithMinBalance sets the quota threshold.
func WithMinBalance(balance float64) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		if balance >= 0 {
			c.minBalance = balance
		}
	}
}

// DefaultPipeline creates the standard render, truncate, quota and
// classify pipeline. A nil completer yields "not configured" results; a
// nil gate skips the quota check.
func DefaultPipeline(completer Completer, gate QuotaGate, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &defaultPipelineConfig{
		maxTranscriptRunes: config.DefaultMaxTranscriptRunes,
		minBalance:         config.DefaultMinBalance,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p := New(pipelineOpts...)
	if completer == nil {
		gate = nil
	}
	p.AddSteps(
		NewRenderStep(),
		NewTruncateStep(cfg.maxTranscriptRunes),
		NewQuotaStep(gate, cfg.minBalance, p.logger),
		NewClassifyStep(completer),
	)
	return p
}
