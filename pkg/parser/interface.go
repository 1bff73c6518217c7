package parser

import (
	"context"
)

// RecordSource provides an iterator over extracted records.
// Implementations must be safe for sequential access (not concurrent).
type RecordSource interface {
	// Next returns the next record.
	// Returns io.EOF when no more records are available.
	// Blank and comment lines are skipped; malformed lines return a *ParseError.
	Next(ctx context.Context) (*Record, error)

	// Close releases any resources held by the source.
	Close() error
}
