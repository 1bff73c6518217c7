package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (svg, text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including every record.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// Width and Height are the SVG canvas size in pixels.
	Width  int
	Height int

	// Palette overrides DefaultPalette.
	Palette Palette

	// TickInterval is the x tick spacing for low-level plots.
	TickInterval time.Duration

	// Renderer styles text output. Nil binds one to the writer given to
	// Format, which finds no colour support in a buffer or a file.
	Renderer *lipgloss.Renderer
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "svg":
		return NewSVGFormatter(opts), nil
	case "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown format %q (must be svg, text, or json)", name)
	}
}

// Extension returns the file extension used for a format's output files.
func Extension(name string) string {
	switch name {
	case "text":
		return ".txt"
	case "json":
		return ".json"
	default:
		return ".svg"
	}
}
