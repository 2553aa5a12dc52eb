package leaks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/scamguard/internal/classify"
	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/model"
)

// Aggregator fans a CheckItem out to the providers that apply to its kind
// and merges their records:
//
//	Credential -> password range + generic lookup
//	Email      -> e-mail breach + generic lookup
//	Phone      -> generic lookup
//
// Provider calls run concurrently and are all awaited. Any provider error
// (or panic) is logged and counted, and that provider contributes nothing.
type Aggregator struct {
	passwordRange Provider
	emailBreach   Provider
	genericLookup Provider

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithTracer sets the tracer. The global otel tracer is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(a *Aggregator) {
		a.tracer = t
	}
}

// NewAggregator creates an Aggregator. A nil provider is skipped.
func NewAggregator(passwordRange, emailBreach, genericLookup Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		passwordRange: passwordRange,
		emailBreach:   emailBreach,
		genericLookup: genericLookup,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Discard()
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer("scamguard/internal/leaks")
	}
	return a
}

// SearchRaw classifies raw and searches it.
func (a *Aggregator) SearchRaw(ctx context.Context, raw string) (model.CheckItem, []model.LeakRecord) {
	item := classify.Classify(raw)
	return item, a.Search(ctx, item)
}

// Search returns every record found for item. It never fails: an empty
// result means either "no leaks" or "every applicable provider failed".
// Records keep provider order (kind-specific provider first, generic
// lookup second) and are not deduplicated.
func (a *Aggregator) Search(ctx context.Context, item model.CheckItem) []model.LeakRecord {
	providers := a.route(item.Kind)
	if len(providers) == 0 {
		return []model.LeakRecord{}
	}

	ctx, span := a.tracer.Start(ctx, "leaks.search",
		trace.WithAttributes(attribute.String("item.kind", item.Kind.String())))
	defer span.End()

	a.logger.Debug("leak search started",
		"fingerprint", log.Fingerprint(item.Value),
		"kind", item.Kind.String(),
		"providers", len(providers),
	)

	// Each slot is written by exactly one goroutine.
	results := make([][]model.LeakRecord, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			results[i] = a.call(ctx, p, item)
			// Never return an error: one provider must not cancel the others.
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines always return nil

	merged := make([]model.LeakRecord, 0)
	for _, r := range results {
		merged = append(merged, r...)
	}

	span.SetAttributes(attribute.Int("leaks.records", len(merged)))
	a.logger.Debug("leak search finished",
		"fingerprint", log.Fingerprint(item.Value),
		"records", len(merged),
	)
	return merged
}

// route returns the providers for a kind in merge order.
func (a *Aggregator) route(kind model.ItemKind) []Provider {
	var candidates []Provider
	switch kind {
	case model.ItemCredential:
		candidates = []Provider{a.passwordRange, a.genericLookup}
	case model.ItemEmail:
		candidates = []Provider{a.emailBreach, a.genericLookup}
	case model.ItemPhone:
		candidates = []Provider{a.genericLookup}
	}

	providers := make([]Provider, 0, len(candidates))
	for _, p := range candidates {
		if p != nil {
			providers = append(providers, p)
		}
	}
	return providers
}

// call runs one provider and converts every failure into an empty result.
func (a *Aggregator) call(ctx context.Context, p Provider, item model.CheckItem) (records []model.LeakRecord) {
	ctx, span := a.tracer.Start(ctx, "leaks.provider",
		trace.WithAttributes(attribute.String("provider", p.Name())))
	defer span.End()

	start := time.Now()
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("provider panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			a.logger.Error("leak provider panicked", "provider", p.Name(), "error", err)
			outcome = "panic"
			records = nil
		}
		a.metrics.ObserveProvider(p.Name(), outcome, time.Since(start).Seconds())
		a.metrics.AddLeakRecords(p.Name(), len(records))
	}()

	found, err := p.Search(ctx, item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		a.logger.Warn("leak provider failed",
			"provider", p.Name(),
			"kind", item.Kind.String(),
			"error", err,
		)
		outcome = "error"
		return nil
	}
	return found
}
