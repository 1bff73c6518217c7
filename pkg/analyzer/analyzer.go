package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// Analyzer drives one engine over a record source.
type Analyzer struct {
	engine Engine

	// Options
	timeRange *TimeRange
	logger    *slog.Logger
}

// TimeRange is a window on record start times. A zero bound is open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (r *TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTimeRange limits analysis to records starting within the window.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if start.IsZero() && end.IsZero() {
			return
		}
		a.timeRange = &TimeRange{Start: start, End: end}
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewEngine creates the engine for mode. The tag only applies to ModeActivity.
func NewEngine(mode Mode, tag string) (Engine, error) {
	switch mode {
	case ModeInput:
		return NewInputEngine(), nil
	case ModeActivity:
		return NewActivityEngine(tag), nil
	default:
		return nil, fmt.Errorf("unknown mode %q (must be input or activity)", mode)
	}
}

// NewAnalyzer creates an analyzer around engine.
func NewAnalyzer(engine Engine, opts ...AnalyzerOption) (*Analyzer, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}

	a := &Analyzer{
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze reads every record from source and returns the finished dataset.
// Any read or parse error aborts the run; no partial dataset is returned.
func (a *Analyzer) Analyze(ctx context.Context, source parser.RecordSource) (*Dataset, error) {
	a.engine.Reset()

	var (
		sources    []string
		seen       = make(map[string]bool)
		read       int
		outOfRange int
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading records: %w", err)
		}
		read++

		if !seen[rec.Source] {
			seen[rec.Source] = true
			sources = append(sources, rec.Source)
			a.logger.Debug("reading stream", "source", rec.Source)
		}

		if a.timeRange != nil && !a.timeRange.Contains(rec.Start) {
			outOfRange++
			continue
		}

		if err := a.engine.Process(ctx, rec); err != nil {
			return nil, fmt.Errorf("processing %s:%d: %w", rec.Source, rec.LineNum, err)
		}
	}

	if read == 0 {
		return nil, &EmptyDatasetError{Mode: a.engine.Mode()}
	}

	ds, err := a.engine.Finalize(ctx)
	if err != nil {
		return nil, err
	}

	ds.Sources = sources
	ds.Stats.RecordsRead = read
	ds.Stats.RecordsOutOfRange = outOfRange

	a.logger.Info("dataset ready",
		"mode", ds.Mode,
		"records", read,
		"rows", ds.Stats.Rows,
	)

	return ds, nil
}
