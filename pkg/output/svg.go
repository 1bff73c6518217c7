package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ccollicutt/streamplot/pkg/analyzer"
)

// Default canvas geometry.
const (
	DefaultWidth        = 1200
	DefaultHeight       = 800
	DefaultTickInterval = 10 * time.Second

	// maxTicks bounds the x ticks of a low-level plot.
	maxTicks = 200

	marginLeft   = 220
	marginRight  = 30
	marginTop    = 50
	marginBottom = 90

	fontFamily = "sans-serif"
)

// SVGFormatter draws a dataset as a standalone SVG document.
type SVGFormatter struct {
	opts FormatOptions
}

// NewSVGFormatter creates a new SVG formatter with the given options.
func NewSVGFormatter(opts FormatOptions) *SVGFormatter {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}
	return &SVGFormatter{opts: opts}
}

// Name returns the format name.
func (f *SVGFormatter) Name() string {
	return "svg"
}

// Format renders the report's dataset as SVG.
func (f *SVGFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if report.Failed() {
		return fmt.Errorf("cannot draw a failed %s pipeline: %s", report.Metadata.Mode, report.Error)
	}

	ds := report.Dataset
	var (
		svg string
		err error
	)
	switch {
	case ds.Mode == analyzer.ModeInput && ds.Inputs != nil:
		svg, err = f.renderInputs(ds)
	case ds.Mode == analyzer.ModeActivity && ds.Activities != nil:
		svg, err = f.renderActivities(ds)
	default:
		return fmt.Errorf("dataset has no %s timeline", ds.Mode)
	}
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, svg)
	return err
}

// plotArea maps data coordinates onto the canvas.
type plotArea struct {
	left, top, width, height float64
	xmin, xmax, ymin, ymax   float64
}

func (f *SVGFormatter) newPlotArea(xmin, xmax, ymin, ymax float64) (plotArea, error) {
	p := plotArea{
		left:   marginLeft,
		top:    marginTop,
		width:  float64(f.opts.Width - marginLeft - marginRight),
		height: float64(f.opts.Height - marginTop - marginBottom),
		xmin:   xmin,
		xmax:   xmax,
		ymin:   ymin,
		ymax:   ymax,
	}
	if p.width <= 0 || p.height <= 0 {
		return p, errors.New("canvas too small for plot margins")
	}
	return p, nil
}

func (p plotArea) x(v float64) float64 {
	return p.left + (v-p.xmin)/(p.xmax-p.xmin)*p.width
}

func (p plotArea) y(v float64) float64 {
	return p.top + p.height - (v-p.ymin)/(p.ymax-p.ymin)*p.height
}

func (p plotArea) bottom() float64 {
	return p.top + p.height
}

func (f *SVGFormatter) renderInputs(ds *analyzer.Dataset) (string, error) {
	tl := ds.Inputs
	span := tl.Span()
	delta := padding(0, span)

	p, err := f.newPlotArea(-delta, span+delta, 0, 1)
	if err != nil {
		return "", err
	}

	var svg strings.Builder
	f.writeHeader(&svg, ds)
	writeFrame(&svg, p)

	step := tickStep(f.opts.TickInterval.Seconds(), span)
	ticks := []float64{0}
	for v := step; v < span; v += step {
		ticks = append(ticks, v)
	}
	writeXTicks(&svg, p, ticks, false)

	for i, lane := range tl.Lanes {
		y := p.y(lane.Position)
		writeYLabel(&svg, p, y, lane.Label)
		color := f.opts.Palette.Color(i)
		for _, rec := range lane.Records {
			svg.WriteString(fmt.Sprintf(`<circle cx="%s" cy="%s" r="3" fill="%s"/>`,
				num(p.x(tl.Offset(rec.Start))), num(y), escapeXML(color)))
			svg.WriteString("\n")
		}
	}

	svg.WriteString("</svg>\n")
	return svg.String(), nil
}

func (f *SVGFormatter) renderActivities(ds *analyzer.Dataset) (string, error) {
	tl := ds.Activities

	var ticks []float64
	for _, g := range tl.Groups {
		for _, inst := range g.Instances {
			ticks = append(ticks, tl.Offset(inst.Start), tl.Offset(inst.End))
		}
	}
	if len(ticks) == 0 {
		return "", &analyzer.EmptyDatasetError{Mode: ds.Mode}
	}
	slices.Sort(ticks)
	ticks = slices.Compact(ticks)

	first, last := ticks[0], ticks[len(ticks)-1]
	delta := padding(first, last)
	rows := float64(len(tl.Groups))

	p, err := f.newPlotArea(first-delta, last+delta, 0, rows+1)
	if err != nil {
		return "", err
	}

	var svg strings.Builder
	f.writeHeader(&svg, ds)
	writeFrame(&svg, p)
	writeXTicks(&svg, p, ticks, true)

	for i, g := range tl.Groups {
		y := p.y(float64(i + 1))
		writeYLabel(&svg, p, y, g.Label)
		for j, inst := range g.Instances {
			svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="3"/>`,
				num(p.x(tl.Offset(inst.Start))), num(y),
				num(p.x(tl.Offset(inst.End))), num(y),
				escapeXML(f.opts.Palette.InstanceColor(j))))
			svg.WriteString("\n")
		}
	}

	svg.WriteString("</svg>\n")
	return svg.String(), nil
}

func (f *SVGFormatter) writeHeader(svg *strings.Builder, ds *analyzer.Dataset) {
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" font-family="%s" font-size="12">
<title>%s</title>
<rect width="100%%" height="100%%" fill="#ffffff"/>
<text x="%d" y="%d" text-anchor="middle" font-size="16" font-weight="bold">%s</text>
<text x="%d" y="%d" text-anchor="middle">Time</text>
`, f.opts.Width, f.opts.Height, fontFamily,
		escapeXML(WindowTitle(ds.Mode)),
		marginLeft+(f.opts.Width-marginLeft-marginRight)/2, marginTop/2+6, escapeXML(ds.Title),
		marginLeft+(f.opts.Width-marginLeft-marginRight)/2, f.opts.Height-12))
}

func writeFrame(svg *strings.Builder, p plotArea) {
	svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#000000"/>`,
		num(p.left), num(p.top), num(p.width), num(p.height)))
	svg.WriteString("\n")
}

func writeXTicks(svg *strings.Builder, p plotArea, ticks []float64, rotate bool) {
	base := p.bottom()
	for _, v := range ticks {
		x := p.x(v)
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#000000"/>`,
			num(x), num(base), num(x), num(base+5)))
		if rotate {
			svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="end" transform="rotate(-90 %s %s)">%s</text>`,
				num(x+4), num(base+8), num(x+4), num(base+8), seconds(v)))
		} else {
			svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle">%s</text>`,
				num(x), num(base+18), seconds(v)))
		}
		svg.WriteString("\n")
	}
}

func writeYLabel(svg *strings.Builder, p plotArea, y float64, label string) {
	svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#000000"/>`,
		num(p.left-5), num(y), num(p.left), num(y)))
	svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="end" dominant-baseline="middle">%s</text>`,
		num(p.left-8), num(y), escapeXML(label)))
	svg.WriteString("\n")
}

// tickStep widens step by a whole factor until span holds at most maxTicks.
func tickStep(step, span float64) float64 {
	if n := span / step; n > maxTicks {
		step *= math.Ceil(n / maxTicks)
	}
	return step
}

// padding returns 5% of the span on each side, or one second for a zero span.
func padding(first, last float64) float64 {
	if d := (last - first) / 20; d > 0 {
		return d
	}
	return 1
}

// num formats a canvas coordinate.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// seconds formats a tick value, rounded to microseconds.
func seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
