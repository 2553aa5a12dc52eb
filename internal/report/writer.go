package report

import (
	"io"

	"github.com/nao1215/scamguard/internal/model"
)

// Writer defines the interface for report output.
// Each method returns the number of bytes written.
type Writer interface {
	// WriteLeaks outputs a leak check result.
	WriteLeaks(report *LeakReport) (int, error)

	// WriteScan outputs a scan verdict or failure.
	WriteScan(report *ScanReport) (int, error)

	// WriteAnalysis outputs a conversation analysis.
	WriteAnalysis(report *AnalysisReport) (int, error)
}

// MultiWriter writes to multiple Writers. It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteLeaks outputs the report to all configured Writers.
func (m *MultiWriter) WriteLeaks(report *LeakReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteLeaks(report) })
}

// WriteScan outputs the report to all configured Writers.
func (m *MultiWriter) WriteScan(report *ScanReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteScan(report) })
}

// WriteAnalysis outputs the report to all configured Writers.
func (m *MultiWriter) WriteAnalysis(report *AnalysisReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteAnalysis(report) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// breachDate formats an optional breach date.
func breachDate(r model.LeakRecord) string {
	if r.BreachDate == nil {
		return "unknown"
	}
	return r.BreachDate.Format("2006-01-02")
}
