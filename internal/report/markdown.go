package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/scamguard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteLeaks outputs a leak check result.
func (w *MarkdownWriter) WriteLeaks(report *LeakReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Leak Check Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Checked As", report.Kind.String()},
			{"Check Date", report.CheckedAt.Format("2006-01-02 15:04:05 MST")},
			{"Leaks Found", strconv.Itoa(len(report.Records))},
		},
	})
	md.PlainText("")

	if !report.Found() {
		md.Tip("Your data was not found in public leak databases.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	md.Cautionf("Your data was found in %d leak(s). Change the affected passwords and enable 2FA.", len(report.Records))
	md.PlainText("")

	md.H2("Leaks")
	md.PlainText("")
	rows := make([][]string, len(report.Records))
	for i, r := range report.Records {
		rows[i] = []string{r.SiteOrUnknown(), breachDate(r), r.Source}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Service", "Date", "Source"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteScan outputs a scan verdict or failure.
func (w *MarkdownWriter) WriteScan(report *ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Threat Scan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Kind", report.Kind},
			{"Target", "`" + truncateString(report.Target, 80) + "`"},
			{"Status", scanStatus(report)},
		},
	})
	md.PlainText("")

	if report.Failed() {
		md.Warningf("The scan could not be completed: %s", report.Error)
		md.PlainText("")
		md.PlainTextf("Check it manually at %s", report.ReportURL)
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	v := report.Verdict
	md.H2("Engine Verdicts")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Engines"},
		Rows: [][]string{
			{"Malicious", strconv.Itoa(v.Malicious)},
			{"Suspicious", strconv.Itoa(v.Suspicious)},
			{"Harmless", strconv.Itoa(v.Harmless)},
			{"Undetected", strconv.Itoa(v.Undetected)},
		},
	})
	md.PlainText("")

	if v.Total() > 0 {
		w.writePieChart(md, v)
	}

	if v.Dangerous() {
		md.Cautionf("%d engine(s) flagged this %s. Do not open it.", v.Malicious+v.Suspicious, report.Kind)
	} else {
		md.Tip("No engine flagged this artifact.")
	}
	md.PlainText("")
	md.PlainTextf("Full report: %s", report.ReportURL)
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of engine outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, v *model.ScanVerdict) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Engine Outcomes"),
		piechart.WithShowData(true),
	)
	outcomes := []struct {
		label string
		count int
	}{
		{"Malicious", v.Malicious},
		{"Suspicious", v.Suspicious},
		{"Harmless", v.Harmless},
		{"Undetected", v.Undetected},
	}
	for _, o := range outcomes {
		if o.count > 0 {
			chart.LabelAndIntValue(o.label, uint64(o.count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteAnalysis outputs a conversation analysis.
func (w *MarkdownWriter) WriteAnalysis(report *AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	res := report.Result

	md.H1("Conversation Risk Report")
	md.PlainText("")

	rows := [][]string{
		{"Chat", report.ScopeName},
		{"Messages", strconv.Itoa(report.MessageCount)},
		{"Risk Score", strconv.Itoa(res.RiskScore) + "%"},
		{"Tier", report.Tier + " (" + report.TierLabel + ")"},
		{"Confidence", strconv.FormatFloat(res.Confidence, 'f', 2, 64)},
		{"Status", res.Status.String()},
	}
	if report.SingleMessage() {
		rows = append(rows, []string{"Sender", report.Sender})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	w.writeAlert(md, res)

	if report.SingleMessage() {
		md.Details("Message from "+report.Sender, report.Preview)
		md.PlainText("")
	}

	md.H2("Indicators")
	md.PlainText("")
	if len(res.Indicators) == 0 {
		md.PlainText("No indicators found.")
	} else {
		md.BulletList(res.Indicators...)
	}
	md.PlainText("")

	md.H2("Analysis")
	md.PlainText("")
	md.PlainText(res.Analysis)
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeAlert writes an alert matching the result's tier.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, res model.AnalysisResult) {
	info := model.GetTierInfo(res.Tier())
	switch {
	case res.Degraded():
		md.Importantf("The analysis is inconclusive (%s). This is not a confirmation of safety.", res.Status)
	case res.Tier() == model.TierCritical:
		md.Cautionf("%s", info.Recommendation)
	case res.Tier() >= model.TierModerate:
		md.Warningf("%s", info.Recommendation)
	case res.Tier() == model.TierLow:
		md.Note(info.Recommendation)
	default:
		md.Tip(info.Recommendation)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*This is an automatic analysis. Always double-check the information!*")
}

func scanStatus(report *ScanReport) string {
	switch {
	case report.Failed() && report.Timeout:
		return "⚠️ Timed Out"
	case report.Failed():
		return "❌ Failed"
	case report.Verdict.Dangerous():
		return "🔴 Dangerous"
	default:
		return "✅ Clean"
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
