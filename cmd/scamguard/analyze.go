package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/nao1215/scamguard/internal/app"
	"github.com/nao1215/scamguard/internal/config"
	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/pipeline"
	"github.com/nao1215/scamguard/internal/report"
	"github.com/nao1215/scamguard/internal/session"
)

const (
	// cliUser owns every session started from the command line.
	cliUser model.UserID = 0

	// maxSpeakerRunes bounds the "Name:" prefix recognized as a speaker.
	maxSpeakerRunes = 32

	// quotePrefix marks a line quoted by the next message.
	quotePrefix = "> "

	// maxLineSize bounds one transcript line.
	maxLineSize = 1 << 20
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze a conversation for scam risk",
		Long: `Analyze reads a conversation, one message per line, and asks the
language model how likely it is to be a scam. The result is a risk score
from 0 to 100 with the indicators found.

A line of the form "Name: text" is attributed to Name. A line starting
with "> " is quoted by the next message, which is then treated as a reply.
Blank lines are ignored. With no file the conversation is read from
standard input.

Several files are analyzed concurrently, one report per file.

When the classifier is not configured, or its balance is too low, the
result is marked inconclusive instead of failing.

Requires AI_TUNNEL_TOKEN for a real assessment.

Examples:
  scamguard analyze chat.txt
  scamguard analyze --group group-chat.txt
  pbpaste | scamguard analyze
  scamguard analyze --batch 8 chats/*.txt --json`,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().BoolP("group", "g", false,
		"Treat the conversation as a group chat")
	cmd.Flags().IntP("batch", "b", 4,
		"Number of concurrent analyses when several files are given")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	group, err := cmd.Flags().GetBool("group")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}
	scope := model.ScopePrivate
	if group {
		scope = model.ScopeGroup
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, a, cleanup, err := startApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.ClassifierAPIKey == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: AI_TUNNEL_TOKEN is not set, the result will be inconclusive.")
	}

	if len(args) > 1 {
		return runBatchAnalyze(ctx, cmd, cfg, a, scope, args, concurrency)
	}

	var input io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0]) //nolint:gosec // User-provided transcript path is intentional
		if err != nil {
			return fmt.Errorf("failed to open conversation: %w", err)
		}
		defer f.Close()
		input = f
	}
	events, err := parseConversation(input)
	if err != nil {
		return err
	}

	out, err := analyzeConversation(ctx, a.Sessions(), a.Pipeline(), scope, events)
	if err != nil {
		return err
	}
	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteAnalysis(report.NewAnalysisReport(scope, out.Snapshot.Messages, out.Result))
		return err
	})
}

// analyzeConversation collects events in a session and completes it.
func analyzeConversation(ctx context.Context, m *session.Manager, analyzer session.Analyzer, scope model.Scope, events []session.Event) (session.Outcome, error) {
	if len(events) == 0 {
		return session.Outcome{}, session.ErrNoMessages
	}
	key := session.Key{Scope: scope, OwnerID: cliUser}
	if _, err := m.Start(key, &events[0]); err != nil {
		return session.Outcome{}, err
	}
	for _, ev := range events[1:] {
		if _, ok := m.Append(key, cliUser, ev); !ok {
			return session.Outcome{}, fmt.Errorf("session %s stopped collecting", key)
		}
	}
	return m.Complete(ctx, key, analyzer)
}

// runBatchAnalyze analyzes each file as its own conversation.
func runBatchAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, a *app.App, scope model.Scope, paths []string, concurrency int) error {
	snapshots := make([]session.Snapshot, len(paths))
	for i, path := range paths {
		messages, err := readConversationFile(path, scope)
		if err != nil {
			return err
		}
		key := session.Key{Scope: scope, ChatID: int64(i + 1), OwnerID: cliUser}
		snapshots[i] = session.NewSnapshot(key, messages)
	}

	out, closeOut, err := openOutput(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	w := newReportWriter(cfg, out)

	bp := pipeline.NewBatchProcessor(a.Pipeline(),
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(a.Logger()),
	)

	fmt.Fprintf(cmd.ErrOrStderr(), "Analyzing %d conversations (concurrency: %d)...\n\n", len(paths), concurrency)
	start := time.Now()

	var mu sync.Mutex
	var writeErr error
	batchErr := bp.ProcessBatchWithCallback(ctx, snapshots, func(result model.AnalysisResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", index+1, len(paths), paths[index])
		rep := report.NewAnalysisReport(scope, snapshots[index].Messages, result)
		if _, err := w.WriteAnalysis(rep); err != nil && writeErr == nil {
			writeErr = err
		}
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "\nBatch analysis completed in %s\n", time.Since(start).Round(time.Millisecond))
	return errors.Join(batchErr, writeErr, closeOut())
}

// readConversationFile parses a transcript file into stored messages.
func readConversationFile(path string, scope model.Scope) ([]model.Message, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided transcript path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}
	defer f.Close()

	events, err := parseConversation(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%s: %w", path, session.ErrNoMessages)
	}
	messages := make([]model.Message, len(events))
	for i, ev := range events {
		messages[i] = ev.Message(scope)
	}
	return messages, nil
}

// parseConversation reads one message per non-blank line.
func parseConversation(r io.Reader) ([]session.Event, error) {
	var (
		events  []session.Event
		ids     = make(map[string]model.UserID)
		pending string
		now     = time.Now()
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quoted, ok := strings.CutPrefix(line, quotePrefix); ok {
			pending = strings.TrimSpace(quoted)
			continue
		}

		name, text := splitSpeaker(line)
		id, ok := ids[name]
		if !ok {
			id = model.UserID(len(ids) + 1)
			ids[name] = id
		}

		var body session.Inbound = session.Text{Body: text}
		if pending != "" {
			body = session.Reply{Text: text, Quoted: pending}
			pending = ""
		}
		events = append(events, session.Event{
			SenderID:   id,
			SenderName: name,
			Timestamp:  now,
			Body:       body,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	return events, nil
}

// splitSpeaker splits "Name: text". Lines without a plausible name are
// attributed to "unknown".
func splitSpeaker(line string) (string, string) {
	name, text, ok := strings.Cut(line, ": ")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.Contains(name, "://") || utf8.RuneCountInString(name) > maxSpeakerRunes {
		return "unknown", line
	}
	return name, strings.TrimSpace(text)
}
