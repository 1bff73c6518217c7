package analyzer

import (
	"context"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// Engine accumulates records and builds a dataset from them.
// ModeInput and ModeActivity each have an implementation.
type Engine interface {
	// Mode returns the analysis mode.
	Mode() Mode

	// Process handles a single record, updating internal state.
	Process(ctx context.Context, rec *parser.Record) error

	// Finalize builds the dataset from everything processed.
	// Returns *EmptyDatasetError when there is nothing to plot.
	Finalize(ctx context.Context) (*Dataset, error)

	// Reset clears internal state for reuse.
	Reset()
}
