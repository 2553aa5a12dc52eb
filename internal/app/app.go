package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/scamguard/internal/classifier"
	"github.com/nao1215/scamguard/internal/config"
	"github.com/nao1215/scamguard/internal/leaks"
	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/pipeline"
	"github.com/nao1215/scamguard/internal/scan"
	"github.com/nao1215/scamguard/internal/session"
	"github.com/nao1215/scamguard/internal/supervisor"
	"github.com/nao1215/scamguard/internal/transport"
)

// virusTotalKeyHeader carries the scan engine API key.
const virusTotalKeyHeader = "x-apikey"

// App holds the wired components of a running scamguard process.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// handles are closed in this order.
	handles []*transport.Client

	leaks    *leaks.Aggregator
	scanner  *scan.Orchestrator
	pipeline *pipeline.Pipeline
	sessions *session.Manager
	tasks    *supervisor.Supervisor

	closeOnce sync.Once
	closeErr  error
}

// New builds every component from cfg. Tasks started through Tasks run
// under ctx until Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.metrics = metrics.New(a.registry)

	if err := a.build(ctx); err != nil {
		a.closeHandles()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg

	pwned, err := a.handle(config.ProviderPwnedPasswords)
	if err != nil {
		return err
	}
	xon, err := a.handle(config.ProviderXposedOrNot)
	if err != nil {
		return err
	}
	bodyLimit := leaks.WithMaxBodySize(cfg.MaxBodySize)

	var generic leaks.Provider
	if cfg.LeakLookupAPIKey != "" {
		lookup, err := a.handle(config.ProviderLeakLookup)
		if err != nil {
			return err
		}
		generic = leaks.NewGenericLookup(lookup, cfg.Endpoint(config.ProviderLeakLookup).BaseURL, cfg.LeakLookupAPIKey, bodyLimit)
	} else {
		a.logger.Debug("generic lookup disabled", "reason", "no API key")
	}
	a.leaks = leaks.NewAggregator(
		leaks.NewPasswordRange(pwned, cfg.Endpoint(config.ProviderPwnedPasswords).BaseURL, bodyLimit),
		leaks.NewEmailBreach(xon, cfg.Endpoint(config.ProviderXposedOrNot).BaseURL, bodyLimit),
		generic,
		leaks.WithLogger(a.logger),
		leaks.WithMetrics(a.metrics),
	)

	vt, err := a.handle(config.ProviderVirusTotal,
		transport.WithHeaders(map[string]string{virusTotalKeyHeader: cfg.VirusTotalAPIKey}))
	if err != nil {
		return err
	}
	a.scanner = scan.NewOrchestrator(
		scan.NewVirusTotal(vt, cfg.Endpoint(config.ProviderVirusTotal).BaseURL),
		scan.WithPollInterval(cfg.ScanPollInterval),
		scan.WithWaitTimeout(cfg.ScanWaitTimeout),
		scan.WithLogger(a.logger),
		scan.WithMetrics(a.metrics),
	)

	if err := a.buildPipeline(); err != nil {
		return err
	}

	a.sessions = session.NewManager(
		session.WithIdleTimeout(cfg.SessionIdleTimeout),
		session.WithLogger(a.logger),
		session.WithMetrics(a.metrics),
	)
	a.tasks = supervisor.New(ctx,
		supervisor.WithLogger(a.logger),
		supervisor.WithMetrics(a.metrics),
	)
	return nil
}

// buildPipeline wires the classifier. Without a credential the pipeline
// answers every request with a "not configured" result.
func (a *App) buildPipeline() error {
	cfg := a.cfg
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(a.metrics),
	}
	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithMaxTranscriptRunes(cfg.MaxTranscriptRunes),
		pipeline.WithMinBalance(cfg.MinBalance),
	}

	if cfg.ClassifierAPIKey == "" {
		a.logger.Debug("risk analysis not configured", "reason", "no API key")
		a.pipeline = pipeline.DefaultPipeline(nil, nil, pipelineOpts, configOpts...)
		return nil
	}

	h, err := a.handle(config.ProviderClassifier, transport.WithBearerToken(cfg.ClassifierAPIKey))
	if err != nil {
		return err
	}
	baseURL := cfg.Endpoint(config.ProviderClassifier).BaseURL
	chat := classifier.NewChat(h, baseURL,
		classifier.WithModel(cfg.ClassifierModel),
		classifier.WithMaxTokens(cfg.ClassifierMaxTokens),
		classifier.WithTemperature(cfg.ClassifierTemperature),
	)
	a.pipeline = pipeline.DefaultPipeline(chat, classifier.NewBalance(h, baseURL), pipelineOpts, configOpts...)
	return nil
}

// handle creates the shared handle for a provider and registers it for Close.
func (a *App) handle(name string, extra ...transport.Option) (*transport.Client, error) {
	ep := a.cfg.Endpoint(name)
	opts := []transport.Option{
		transport.WithTimeout(ep.Timeout),
		transport.WithProxy(a.cfg.ProxyAddress),
		transport.WithUserAgent(a.cfg.UserAgent),
		transport.WithHeaders(ep.Headers),
	}
	c, err := transport.New(name, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s handle: %w", name, err)
	}
	a.handles = append(a.handles, c)
	return c, nil
}

// NewWebhookHandle creates a handle for delivering replies. It is closed
// together with the provider handles.
func (a *App) NewWebhookHandle() (*transport.Client, error) {
	c, err := transport.New("webhook",
		transport.WithTimeout(config.DefaultProviderTimeout),
		transport.WithUserAgent(a.cfg.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook handle: %w", err)
	}
	a.handles = append(a.handles, c)
	return c, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the process logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Leaks returns the leak aggregator.
func (a *App) Leaks() *leaks.Aggregator { return a.leaks }

// Scanner returns the scan orchestrator.
func (a *App) Scanner() *scan.Orchestrator { return a.scanner }

// Pipeline returns the risk analysis pipeline.
func (a *App) Pipeline() *pipeline.Pipeline { return a.pipeline }

// Sessions returns the conversation session manager.
func (a *App) Sessions() *session.Manager { return a.sessions }

// Tasks returns the background task supervisor.
func (a *App) Tasks() *supervisor.Supervisor { return a.tasks }

// Metrics returns the metrics sink.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Gatherer returns the registry holding the App's metrics.
func (a *App) Gatherer() prometheus.Gatherer { return a.registry }

// Close shuts the supervisor down, waiting for running tasks until ctx is
// done, then closes every handle. Only the first call has an effect.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.tasks != nil {
			if err := a.tasks.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := a.closeHandles(); err != nil {
			errs = append(errs, err)
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

func (a *App) closeHandles() error {
	var errs []error
	for _, h := range a.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s handle: %w", h.Name(), err))
		}
	}
	return errors.Join(errs...)
}
