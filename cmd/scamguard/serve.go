package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nao1215/scamguard/internal/app"
	"github.com/nao1215/scamguard/internal/config"
	"github.com/nao1215/scamguard/internal/httpapi"
	"github.com/nao1215/scamguard/internal/router"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat event API",
		Long: `Serve accepts decoded chat events as JSON on POST /v1/events and drives
leak checks, scans and conversation analyses as background tasks. Every
event is acknowledged at once; results are delivered to the reply webhook
when one is configured, and logged otherwise.

GET /healthz reports liveness and GET /metrics exposes Prometheus metrics.

Requires VIRUSTOTAL_API_TOKEN and LEAKLOOKUP_PUBLIC_KEY.

Examples:
  scamguard serve
  scamguard serve --listen :8080 --webhook http://adapter:9000/replies --json-logs`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Listen address (default "+config.DefaultListenAddress+")")
	cmd.Flags().StringP("webhook", "w", "",
		"URL that receives replies as JSON")
	cmd.Flags().Bool("json-logs", false,
		"Write logs as JSON")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.ListenAddress = v
	}
	if v, _ := cmd.Flags().GetString("webhook"); v != "" {
		cfg.ReplyWebhookURL = v
	}
	if v, _ := cmd.Flags().GetBool("json-logs"); v {
		cfg.JSONLogs = true
	}

	ctx, a, cleanup, err := startApp(cfg, config.CredentialVirusTotal, config.CredentialLeakLookup)
	if err != nil {
		return err
	}
	defer cleanup()

	replier, err := newReplier(a)
	if err != nil {
		return err
	}
	dispatcher := router.New(router.Config{
		Leaks:    a.Leaks(),
		Scanner:  a.Scanner(),
		Sessions: a.Sessions(),
		Analyzer: a.Pipeline(),
		Tasks:    a.Tasks(),
		Replier:  replier,
	}, router.WithLogger(a.Logger()), router.WithMetrics(a.Metrics()))

	if cfg.SessionIdleTimeout > 0 {
		if _, err := a.Tasks().Go("session-sweep", sweepSessions(a, max(cfg.SessionIdleTimeout/2, time.Second))); err != nil {
			return err
		}
	}

	srv := httpapi.New(dispatcher,
		httpapi.WithLogger(a.Logger()),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(a.Gatherer(), promhttp.HandlerOpts{})),
		httpapi.WithStats(func() map[string]int {
			return map[string]int{
				"active_sessions": a.Sessions().Active(),
				"tasks":           a.Tasks().Active(),
			}
		}),
	)
	return srv.Run(ctx, cfg.ListenAddress, cfg.ShutdownTimeout)
}

// newReplier returns the webhook replier, or a logging replier when no
// webhook is configured.
func newReplier(a *app.App) (router.Replier, error) {
	url := a.Config().ReplyWebhookURL
	if url == "" {
		a.Logger().Warn("no reply webhook configured, replies are only logged")
		return router.NewLogReplier(a.Logger()), nil
	}
	h, err := a.NewWebhookHandle()
	if err != nil {
		return nil, err
	}
	return httpapi.NewWebhookReplier(h, url), nil
}

// sweepSessions periodically expires sessions that stopped receiving messages.
func sweepSessions(a *app.App, every time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if n := a.Sessions().Sweep(); n > 0 {
					a.Logger().Debug("sessions swept", "removed", n)
				}
			}
		}
	}
}
