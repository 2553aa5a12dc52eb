package report

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is stamped into every envelope.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithVersion records the tool version in every envelope.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Envelope wraps every JSON report with its type and the tool version.
type Envelope struct {
	Type    string `json:"type"`
	Version string `json:"version,omitempty"`
	Report  any    `json:"report"`
}

// WriteLeaks outputs a leak check result.
func (w *JSONWriter) WriteLeaks(report *LeakReport) (int, error) {
	return w.writeJSON(Envelope{Type: "leaks", Version: w.version, Report: report})
}

// WriteScan outputs a scan verdict or failure.
func (w *JSONWriter) WriteScan(report *ScanReport) (int, error) {
	return w.writeJSON(Envelope{Type: "scan", Version: w.version, Report: report})
}

// WriteAnalysis outputs a conversation analysis.
func (w *JSONWriter) WriteAnalysis(report *AnalysisReport) (int, error) {
	return w.writeJSON(Envelope{Type: "analysis", Version: w.version, Report: report})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
