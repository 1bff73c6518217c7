package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/streamplot/pkg/analyzer"
	"github.com/ccollicutt/streamplot/pkg/parser"
)

// TextFormatter formats reports as a human-readable terminal summary.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

type textStyles struct {
	header lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	failed lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	return textStyles{
		header: r.NewStyle().Bold(true).Underline(true),
		label:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Faint(true),
		failed: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff0000")),
	}
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	r := f.opts.Renderer
	if r == nil {
		r = lipgloss.NewRenderer(w)
	}
	st := newTextStyles(r)

	if report.Failed() {
		fmt.Fprintf(w, "%s %s pipeline failed: %s\n",
			st.failed.Render("FAILED"), report.Metadata.Mode, report.Error)
		return nil
	}

	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w, st)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	stats := report.Dataset.Stats
	fmt.Fprintf(w, "streamplot: %s mode, %d records read, %d used, %d rows\n",
		report.Dataset.Mode, stats.RecordsRead, stats.RecordsUsed, stats.Rows)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer, st textStyles) error {
	ds := report.Dataset

	fmt.Fprintln(w, st.header.Render("=== "+ds.Title+" ==="))
	for _, src := range ds.Sources {
		fmt.Fprintln(w, st.muted.Render("Source: "+src))
	}
	fmt.Fprintln(w)

	switch {
	case ds.Inputs != nil:
		f.formatInputs(ds.Inputs, w, st)
	case ds.Activities != nil:
		f.formatActivities(ds.Activities, w, st)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d records read, %d used, %d rows\n",
		ds.Stats.RecordsRead, ds.Stats.RecordsUsed, ds.Stats.Rows)
	if ds.Stats.Representatives > 0 {
		fmt.Fprintf(w, "Representatives: %d\n", ds.Stats.Representatives)
	}
	if ds.Stats.RecordsOutOfRange > 0 {
		fmt.Fprintf(w, "Outside time range: %d\n", ds.Stats.RecordsOutOfRange)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run: %s\n", report.RunID)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return nil
}

func (f *TextFormatter) formatInputs(tl *analyzer.InputTimeline, w io.Writer, st textStyles) {
	fmt.Fprintf(w, "Origin: %s  Span: %ss\n\n", tl.Origin.Format(time.RFC3339), seconds(tl.Span()))

	for i, lane := range tl.Lanes {
		dot := st.label.Foreground(lipgloss.Color(f.opts.Palette.Color(i))).Render("●")
		fmt.Fprintf(w, "%s %s  %d event(s)\n", dot, st.label.Render(lane.Label), len(lane.Records))
		if f.opts.Verbose {
			for _, rec := range lane.Records {
				fmt.Fprintf(w, "    at %ss%s\n", seconds(tl.Offset(rec.Start)), describe(rec))
			}
		}
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatActivities(tl *analyzer.ActivityTimeline, w io.Writer, st textStyles) {
	fmt.Fprintf(w, "Origin: %s\n\n", tl.Origin.Format(time.RFC3339))

	for _, g := range tl.Groups {
		fmt.Fprintf(w, "%s  %d instance(s)\n", st.label.Render(g.Label), len(g.Instances))
		for j, inst := range g.Instances {
			bar := st.label.Foreground(lipgloss.Color(f.opts.Palette.InstanceColor(j))).Render("━━")
			fmt.Fprintf(w, "  %s %ss to %ss (%s)", bar,
				seconds(tl.Offset(inst.Start)), seconds(tl.Offset(inst.End)), inst.Duration())
			if f.opts.Verbose {
				fmt.Fprint(w, describe(inst))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

func describe(rec parser.Record) string {
	return fmt.Sprintf("  [%s:%d confidence=%g]", rec.Source, rec.LineNum, rec.Confidence)
}
