// Package output provides formatting and output generation for plot datasets.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/streamplot/pkg/analyzer"
)

// Report is the complete output of one pipeline.
type Report struct {
	// RunID identifies the invocation; both pipelines of a run share it.
	RunID string `json:"run_id"`

	// Dataset is nil when the pipeline failed.
	Dataset *analyzer.Dataset `json:"dataset,omitempty"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`

	// Error is the failure message, if any.
	Error string `json:"error,omitempty"`
}

// Metadata provides context about a pipeline run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Mode is the pipeline that produced the report.
	Mode analyzer.Mode `json:"mode"`

	// Sources lists the stream files that were read.
	Sources []string `json:"sources"`

	// TimeRange is the start-time window that was applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty"`

	// Output is the path of the rendered file, if one was written.
	Output string `json:"output,omitempty"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Duration is how long the pipeline took.
	Duration time.Duration `json:"duration"`
}

// TimeRange represents a time window for filtering.
type TimeRange struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewReport creates a Report for a finished dataset.
func NewReport(runID string, ds *analyzer.Dataset, configFile string, started time.Time) *Report {
	now := time.Now()
	return &Report{
		RunID:   runID,
		Dataset: ds,
		Metadata: Metadata{
			ConfigFile:  configFile,
			Mode:        ds.Mode,
			Sources:     ds.Sources,
			GeneratedAt: now,
			Duration:    now.Sub(started),
		},
	}
}

// NewFailedReport creates a Report for a pipeline that produced no dataset.
func NewFailedReport(runID string, mode analyzer.Mode, sources []string, err error, configFile string, started time.Time) *Report {
	now := time.Now()
	return &Report{
		RunID: runID,
		Metadata: Metadata{
			ConfigFile:  configFile,
			Mode:        mode,
			Sources:     sources,
			GeneratedAt: now,
			Duration:    now.Sub(started),
		},
		Error: err.Error(),
	}
}

// WithTimeRange records the start-time window on the report.
func (r *Report) WithTimeRange(start, end time.Time) *Report {
	if !start.IsZero() || !end.IsZero() {
		r.Metadata.TimeRange = &TimeRange{Start: start, End: end}
	}
	return r
}

// Failed returns true if the pipeline did not produce a dataset.
func (r *Report) Failed() bool {
	return r.Error != "" || r.Dataset == nil
}

// WindowTitle returns the viewer window title for a mode.
func WindowTitle(mode analyzer.Mode) string {
	if mode == analyzer.ModeActivity {
		return "Output data"
	}
	return "Input data"
}
