package report

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/nao1215/scamguard/internal/model"
	"github.com/nao1215/scamguard/internal/scan"
)

// previewRunes is how much of a single group message an analysis report quotes.
const previewRunes = 200

// LeakReport is the outcome of one leak check.
type LeakReport struct {
	Kind      model.ItemKind     `json:"kind"`
	Records   []model.LeakRecord `json:"records"`
	CheckedAt time.Time          `json:"checked_at"`
}

// NewLeakReport creates a LeakReport. The checked value is not kept.
func NewLeakReport(item model.CheckItem, records []model.LeakRecord) *LeakReport {
	if records == nil {
		records = []model.LeakRecord{}
	}
	return &LeakReport{Kind: item.Kind, Records: records, CheckedAt: time.Now()}
}

// Found reports whether any leak was found.
func (r *LeakReport) Found() bool {
	return len(r.Records) > 0
}

// ScanReport is the outcome of one link or file scan. A failed scan has
// Error set and points at the manual check page.
type ScanReport struct {
	Kind      string             `json:"kind"`
	Target    string             `json:"target"`
	Verdict   *model.ScanVerdict `json:"verdict,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timeout   bool               `json:"timeout,omitempty"`
	ReportURL string             `json:"report_url"`
}

// NewScanReport creates a ScanReport from the orchestrator's answer.
func NewScanReport(kind, target string, verdict model.ScanVerdict, err error) *ScanReport {
	r := &ScanReport{Kind: kind, Target: target}
	if err != nil {
		r.Error = err.Error()
		r.Timeout = errors.Is(err, scan.ErrTimeout)
		r.ReportURL = scan.ManualCheckURL
		return r
	}
	r.Verdict = &verdict
	r.ReportURL = scan.ReportURL(verdict.ReportID)
	return r
}

// Failed reports whether the scan produced no verdict.
func (r *ScanReport) Failed() bool {
	return r.Verdict == nil
}

// AnalysisReport is the outcome of a conversation analysis.
type AnalysisReport struct {
	Scope        model.Scope          `json:"-"`
	ScopeName    string               `json:"scope"`
	MessageCount int                  `json:"message_count"`
	Result       model.AnalysisResult `json:"result"`
	Tier         string               `json:"tier"`
	TierLabel    string               `json:"tier_label"`

	// Sender and Preview are set for a group analysis of a single message.
	Sender  string `json:"sender,omitempty"`
	Preview string `json:"preview,omitempty"`
}

// NewAnalysisReport creates an AnalysisReport for the analyzed messages.
func NewAnalysisReport(scope model.Scope, messages []model.Message, result model.AnalysisResult) *AnalysisReport {
	tier := result.Tier()
	r := &AnalysisReport{
		Scope:        scope,
		ScopeName:    scope.String(),
		MessageCount: len(messages),
		Result:       result,
		Tier:         tier.String(),
		TierLabel:    model.GetTierInfo(tier).Label,
	}
	if r.Result.Indicators == nil {
		r.Result.Indicators = []string{}
	}
	if scope == model.ScopeGroup && len(messages) == 1 {
		r.Sender = messages[0].SenderName
		r.Preview = preview(messages[0].Text, previewRunes)
	}
	return r
}

// SingleMessage reports whether the report describes one group message.
func (r *AnalysisReport) SingleMessage() bool {
	return r.Scope == model.ScopeGroup && r.MessageCount == 1
}

// preview returns the first n runes of s, marking a cut with "...".
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
