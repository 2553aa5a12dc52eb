package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/nao1215/scamguard/internal/classify"
	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/report"
	"github.com/nao1215/scamguard/internal/session"
	"github.com/nao1215/scamguard/internal/supervisor"
)

// Texts sent as immediate acknowledgements.
const (
	textAskLeakInput  = "Send an e-mail address, phone number or password to check. It is not stored."
	textSearching     = "Searching leak databases..."
	textScanningLink  = "Checking the link. This can take a few minutes."
	textScanningFile  = "Checking the file. This can take a few minutes."
	textNotALink      = "This does not look like a link. Send a link or a file to scan, or start a conversation check."
	textStarted       = "Forward or paste the messages you want to check, then press Complete."
	textNeedTarget    = "Reply to the message you want to check to start."
	textNoSession     = "There is no active check. Start one first."
	textBusy          = "The analysis is already running. Please wait for the result."
	textNoMessages    = "No messages collected yet. Add some before completing."
	textUnavailable   = "The service is shutting down. Please try again later."
	textAnalyzingFmt  = "Analyzing %d message(s)..."
	textAddedFmt      = "Message added (%d in total)."
	textCancelledFmt  = "Check cancelled, %d message(s) discarded."
	textGroupStartFmt = "Collecting messages starting from %s's message. Reply with more messages, then press Complete."
)

// LeakSearcher searches leak providers for a raw user value.
type LeakSearcher interface {
	SearchRaw(ctx context.Context, raw string) (model.CheckItem, []model.LeakRecord)
}

// Scanner submits links and files to the scan engine.
type Scanner interface {
	ScanLink(ctx context.Context, link string) (model.ScanVerdict, error)
	ScanFile(ctx context.Context, path string) (model.ScanVerdict, error)
}

// Launcher runs background tasks.
type Launcher interface {
	Go(name string, fn supervisor.Task) (string, error)
}

// Config holds the components a Dispatcher drives.
type Config struct {
	Leaks    LeakSearcher
	Scanner  Scanner
	Sessions *session.Manager
	Analyzer session.Analyzer
	Tasks    Launcher
	Replier  Replier
}

// Dispatcher routes events to components.
type Dispatcher struct {
	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	startedAt time.Time

	mu       sync.Mutex
	awaiting map[session.Key]struct{}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithClock replaces time.Now. The dispatcher's start time is read from it.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a Dispatcher. Events timestamped before New returns are ignored.
func New(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		now:      time.Now,
		awaiting: make(map[session.Key]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.Discard()
	}
	d.startedAt = d.now().Truncate(time.Second)
	return d
}

// Dispatch handles one event. It returns once the event is acknowledged;
// long work continues in the background.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if !ev.Timestamp.IsZero() && ev.Timestamp.Before(d.startedAt) {
		d.logger.Debug("stale event ignored", "type", ev.Type, "chat_id", ev.ChatID)
		return nil
	}
	d.metrics.ObserveEvent(string(ev.Type))

	switch ev.Type {
	case EventLeakCheck:
		d.setAwaiting(ev.key())
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textAskLeakInput})
	case EventText:
		if ev.Message == nil {
			return ErrMissingMessage
		}
		if ev.Group {
			return d.groupText(ctx, ev)
		}
		return d.privateText(ctx, ev)
	case EventFile:
		return d.scanFile(ctx, ev)
	case EventAction:
		return d.action(ctx, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func (d *Dispatcher) privateText(ctx context.Context, ev Event) error {
	key := ev.key()
	if d.takeAwaiting(key) {
		return d.searchLeaks(ctx, ev.ChatID, ev.text())
	}

	switch d.cfg.Sessions.State(key) {
	case session.StateCollecting:
		if ack, ok := d.cfg.Sessions.Append(key, ev.SenderID, ev.sessionEvent()); ok {
			return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: fmt.Sprintf(textAddedFmt, ack.Count), Actions: ack.Actions})
		}
	case session.StateTerminal:
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textBusy})
	}

	link, ok := classify.NormalizeLink(ev.text())
	if !ok {
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textNotALink})
	}
	return d.scanLink(ctx, ev.ChatID, link)
}

// groupText extends the sender's own session. Messages from anyone else
// are ignored without a reply.
func (d *Dispatcher) groupText(ctx context.Context, ev Event) error {
	ack, ok := d.cfg.Sessions.Append(ev.key(), ev.SenderID, ev.sessionEvent())
	if !ok {
		return nil
	}
	return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: fmt.Sprintf(textAddedFmt, ack.Count), Actions: ack.Actions})
}

func (d *Dispatcher) searchLeaks(ctx context.Context, chatID int64, raw string) error {
	d.logger.Debug("leak check requested", "chat_id", chatID, "value", log.Fingerprint(raw))
	if err := d.reply(ctx, Reply{ChatID: chatID, Text: textSearching}); err != nil {
		return err
	}
	return d.launch(ctx, chatID, "leak-check", func(ctx context.Context) error {
		item, records := d.cfg.Leaks.SearchRaw(ctx, raw)
		text := render(func(w report.Writer) (int, error) {
			return w.WriteLeaks(report.NewLeakReport(item, records))
		})
		return d.reply(ctx, Reply{ChatID: chatID, Text: text})
	})
}

func (d *Dispatcher) scanLink(ctx context.Context, chatID int64, link string) error {
	d.logger.Debug("link scan requested", "chat_id", chatID, "domain", classify.RegistrableDomain(link))
	if err := d.reply(ctx, Reply{ChatID: chatID, Text: textScanningLink}); err != nil {
		return err
	}
	return d.launch(ctx, chatID, "scan-link", func(ctx context.Context) error {
		verdict, err := d.cfg.Scanner.ScanLink(ctx, link)
		return d.replyScan(ctx, chatID, report.NewScanReport("link", link, verdict, err))
	})
}

func (d *Dispatcher) scanFile(ctx context.Context, ev Event) error {
	if ev.FilePath == "" {
		return ErrMissingFile
	}
	if err := d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textScanningFile}); err != nil {
		return err
	}
	path := ev.FilePath
	return d.launch(ctx, ev.ChatID, "scan-file", func(ctx context.Context) error {
		verdict, err := d.cfg.Scanner.ScanFile(ctx, path)
		return d.replyScan(ctx, ev.ChatID, report.NewScanReport("file", filepath.Base(path), verdict, err))
	})
}

func (d *Dispatcher) replyScan(ctx context.Context, chatID int64, rep *report.ScanReport) error {
	text := render(func(w report.Writer) (int, error) {
		return w.WriteScan(rep)
	})
	return d.reply(ctx, Reply{ChatID: chatID, Text: text, Links: []string{rep.ReportURL}})
}

func (d *Dispatcher) action(ctx context.Context, ev Event) error {
	switch ev.Action {
	case ActionStart:
		return d.start(ctx, ev)
	case ActionComplete:
		return d.complete(ctx, ev)
	case ActionCancel:
		return d.cancel(ctx, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
}

func (d *Dispatcher) start(ctx context.Context, ev Event) error {
	key := ev.key()
	d.takeAwaiting(key)

	var initial *session.Event
	text := textStarted
	if ev.Group {
		if ev.Target == nil || ev.Target.Message == nil {
			return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textNeedTarget})
		}
		target := ev.Target.sessionEvent()
		initial = &target
		text = fmt.Sprintf(textGroupStartFmt, ev.Target.SenderName)
	}

	ack, err := d.cfg.Sessions.Start(key, initial)
	if errors.Is(err, session.ErrBusy) {
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textBusy})
	}
	if err != nil {
		return err
	}
	return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: text, Actions: ack.Actions})
}

func (d *Dispatcher) complete(ctx context.Context, ev Event) error {
	key := ev.key()
	switch d.cfg.Sessions.State(key) {
	case session.StateIdle:
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textNoSession})
	case session.StateTerminal:
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textBusy})
	}
	n := d.cfg.Sessions.Count(key)
	if n == 0 {
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: textNoMessages, Actions: []session.Action{session.ActionCancel}})
	}

	if err := d.reply(ctx, Reply{ChatID: ev.ChatID, Text: fmt.Sprintf(textAnalyzingFmt, n)}); err != nil {
		return err
	}
	return d.launch(ctx, ev.ChatID, "analyze", func(ctx context.Context) error {
		out, err := d.cfg.Sessions.Complete(ctx, key, d.cfg.Analyzer)
		if err != nil {
			return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: sessionErrorText(err)})
		}
		text := render(func(w report.Writer) (int, error) {
			return w.WriteAnalysis(report.NewAnalysisReport(key.Scope, out.Snapshot.Messages, out.Result))
		})
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: text})
	})
}

func (d *Dispatcher) cancel(ctx context.Context, ev Event) error {
	n, err := d.cfg.Sessions.Cancel(ev.key())
	if err != nil {
		return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: sessionErrorText(err)})
	}
	return d.reply(ctx, Reply{ChatID: ev.ChatID, Text: fmt.Sprintf(textCancelledFmt, n)})
}

// launch runs task in the background. When the supervisor refuses the
// task the user is told the service is unavailable.
func (d *Dispatcher) launch(ctx context.Context, chatID int64, name string, task supervisor.Task) error {
	if _, err := d.cfg.Tasks.Go(name, task); err != nil {
		if rerr := d.reply(ctx, Reply{ChatID: chatID, Text: textUnavailable}); rerr != nil {
			d.logger.Warn("failed to deliver reply", "chat_id", chatID, "error", rerr)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

func (d *Dispatcher) reply(ctx context.Context, r Reply) error {
	if err := d.cfg.Replier.Reply(ctx, r); err != nil {
		return fmt.Errorf("failed to deliver reply: %w", err)
	}
	return nil
}

func (d *Dispatcher) setAwaiting(key session.Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.awaiting[key] = struct{}{}
}

// takeAwaiting clears and reports the awaiting-leak-input flag for key.
func (d *Dispatcher) takeAwaiting(key session.Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.awaiting[key]
	delete(d.awaiting, key)
	return ok
}

func sessionErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrBusy):
		return textBusy
	case errors.Is(err, session.ErrNoMessages):
		return textNoMessages
	default:
		return textNoSession
	}
}

// render writes a report as chat text.
func render(write func(report.Writer) (int, error)) string {
	var buf bytes.Buffer
	_, _ = write(report.NewSimpleWriter(&buf))
	return buf.String()
}
