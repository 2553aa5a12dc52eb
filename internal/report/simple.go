package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/scamguard/internal/model"
)

// SimpleWriter outputs plain text reports suitable for a terminal or a
// chat message.
type SimpleWriter struct {
	baseWriter

	// verbose adds the tier recommendation and report links.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteLeaks outputs a leak check result.
func (w *SimpleWriter) WriteLeaks(report *LeakReport) (int, error) {
	var sb strings.Builder

	if !report.Found() {
		sb.WriteString("Good news! Your data was NOT found in public leak databases.\n\n")
		sb.WriteString("Keep up your digital hygiene.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "WARNING! Found %d leak(s) involving your data.\n\n", len(report.Records))
	sb.WriteString("Your data was compromised in the following cases:\n")
	for _, r := range report.Records {
		fmt.Fprintf(&sb, "  [!] Service: %s  Date: %s\n", r.SiteOrUnknown(), breachDate(r))
	}
	sb.WriteString("\nWhat to do now:\n")
	sb.WriteString("  1. Change every password you used on the listed sites.\n")
	sb.WriteString("  2. Turn on two-factor authentication (2FA) wherever possible.\n")
	return w.output.Write([]byte(sb.String()))
}

// WriteScan outputs a scan verdict or failure.
func (w *SimpleWriter) WriteScan(report *ScanReport) (int, error) {
	var sb strings.Builder

	if report.Failed() {
		sb.WriteString("Scan failed! Your link or file could not be checked.\n\n")
		if report.Timeout {
			sb.WriteString("The analysis did not finish in time.\n")
		}
		sb.WriteString("Please try again, or check it manually:\n")
		fmt.Fprintf(&sb, "  %s\n", report.ReportURL)
		return w.output.Write([]byte(sb.String()))
	}

	v := report.Verdict
	sb.WriteString("Scan results (VirusTotal):\n\n")
	fmt.Fprintf(&sb, "  Malicious:  %d\n", v.Malicious)
	fmt.Fprintf(&sb, "  Suspicious: %d\n", v.Suspicious)
	fmt.Fprintf(&sb, "  Harmless:   %d\n", v.Harmless)
	fmt.Fprintf(&sb, "  Undetected: %d\n\n", v.Undetected)
	if v.Dangerous() {
		sb.WriteString("Verdict: DANGEROUS. Do NOT open this file or link!\n")
	} else {
		sb.WriteString("Verdict: no engine flagged it. If Malicious or Suspicious were above zero, you should not open it.\n")
	}
	fmt.Fprintf(&sb, "\nFull report: %s\n", report.ReportURL)
	return w.output.Write([]byte(sb.String()))
}

// WriteAnalysis outputs a conversation analysis.
func (w *SimpleWriter) WriteAnalysis(report *AnalysisReport) (int, error) {
	var sb strings.Builder
	res := report.Result

	if report.SingleMessage() {
		fmt.Fprintf(&sb, "MESSAGE ANALYSIS from %s\n\n", report.Sender)
		fmt.Fprintf(&sb, "Text: %q\n\n", report.Preview)
	} else {
		chat := "CONVERSATION"
		if report.Scope == model.ScopeGroup {
			chat = "GROUP CHAT"
		}
		fmt.Fprintf(&sb, "%s ANALYSIS RESULT (%d messages)\n\n", chat, report.MessageCount)
	}

	fmt.Fprintf(&sb, "Risk level: %d%% (%s)\n", res.RiskScore, report.TierLabel)
	if res.Degraded() {
		sb.WriteString("The result is inconclusive: the analysis could not be completed.\n")
	}

	sb.WriteString("\nIndicators found:\n")
	if len(res.Indicators) == 0 {
		sb.WriteString("  - No indicators found\n")
	}
	for _, ind := range res.Indicators {
		fmt.Fprintf(&sb, "  - %s\n", ind)
	}

	sb.WriteString("\nAnalysis:\n")
	sb.WriteString(res.Analysis)
	sb.WriteString("\n")

	if w.verbose && !res.Degraded() {
		fmt.Fprintf(&sb, "\nConfidence: %.0f%%\n", res.Confidence*100)
		fmt.Fprintf(&sb, "Recommendation: %s\n", model.GetTierInfo(res.Tier()).Recommendation)
	}
	sb.WriteString("\nThis is an automatic analysis. Always double-check the information!\n")
	return w.output.Write([]byte(sb.String()))
}
