package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/router"
)

// maxEventSize bounds a decoded event body.
const maxEventSize = 1 << 20

// Dispatcher handles decoded events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev router.Event) error
}

// Server serves the event API.
type Server struct {
	dispatcher Dispatcher
	metrics    http.Handler
	stats      func() map[string]int
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithStats adds the counters returned by fn to /healthz.
func WithStats(fn func() map[string]int) Option {
	return func(s *Server) {
		s.stats = fn
	}
}

// New creates a Server.
func New(dispatcher Dispatcher, opts ...Option) *Server {
	s := &Server{dispatcher: dispatcher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", s.postEvent)
	})
	return r
}

// Run serves on addr until ctx is done, then shuts down within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.stats != nil {
		for k, v := range s.stats() {
			body[k] = v
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var ev router.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventSize))
	if err := dec.Decode(&ev); err != nil {
		s.logger.Debug("failed to decode event", "error", err)
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}
	if ev.Type == "" {
		writeError(w, http.StatusBadRequest, "missing event type")
		return
	}

	if err := s.dispatcher.Dispatch(r.Context(), ev); err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("event failed", "type", ev.Type, "chat_id", ev.ChatID, "error", err)
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func isClientError(err error) bool {
	return errors.Is(err, router.ErrUnknownEvent) ||
		errors.Is(err, router.ErrUnknownAction) ||
		errors.Is(err, router.ErrMissingMessage) ||
		errors.Is(err, router.ErrMissingFile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
