package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/streamplot/pkg/analyzer"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Summary is the quiet-mode JSON document.
type Summary struct {
	RunID string         `json:"run_id"`
	Mode  analyzer.Mode  `json:"mode"`
	Stats analyzer.Stats `json:"stats"`
	Error string         `json:"error,omitempty"`
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		s := Summary{RunID: report.RunID, Mode: report.Metadata.Mode, Error: report.Error}
		if report.Dataset != nil {
			s.Stats = report.Dataset.Stats
		}
		return encoder.Encode(s)
	}

	return encoder.Encode(report)
}
