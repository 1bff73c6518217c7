package output

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/streamplot/pkg/analyzer"
)

func TestTextFormatter_Name(t *testing.T) {
	assert.Equal(t, "text", NewTextFormatter(FormatOptions{}).Name())
}

func TestTextFormatter_Activities(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{}).Format(context.Background(), activityReport(t), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "=== High Level Activities ===")
	assert.Contains(t, out, "Source: test.stream")
	assert.Contains(t, out, "hla(alice, cooking)  2 instance(s)")
	assert.Contains(t, out, "0s to 3600s (1h0m0s)")
	assert.Contains(t, out, "7200s to 9000s (30m0s)")
	assert.Contains(t, out, "hla(bob, reading)  1 instance(s)")
	assert.Contains(t, out, "Summary: 3 records read, 3 used, 2 rows")
	assert.Contains(t, out, "Representatives: 3")
	assert.NotContains(t, out, "Run:")
}

func TestTextFormatter_Inputs(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{}).Format(context.Background(), inputReport(t), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "=== Position & Low Level Activities ===")
	assert.Contains(t, out, "Span: 26s")
	assert.Contains(t, out, "POS(hall)  1 event(s)")
	assert.Contains(t, out, "POS(kitchen)  3 event(s)")
}

func TestTextFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{Verbose: true}).Format(context.Background(), inputReport(t), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "at 25s  [test.stream:1 confidence=0.9]")
	assert.Contains(t, out, "Run: run-1")
}

func TestTextFormatter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{Quiet: true}).Format(context.Background(), activityReport(t), &buf)
	require.NoError(t, err)

	assert.Equal(t, "streamplot: activity mode, 3 records read, 3 used, 2 rows\n", buf.String())
}

func TestTextFormatter_Failed(t *testing.T) {
	report := NewFailedReport("r", analyzer.ModeActivity, nil, errors.New("boom"), "", t0)

	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{}).Format(context.Background(), report, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "FAILED")
	assert.Contains(t, buf.String(), "activity pipeline failed: boom")
}

func TestTextFormatter_RendererColours(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI256)

	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{Renderer: r}).Format(context.Background(), activityReport(t), &buf)
	require.NoError(t, err)

	out := buf.String()
	// first instance wraps to black, the second takes blue
	assert.Contains(t, out, "38;5;16m━━")
	assert.Contains(t, out, "38;5;21m━━")
}

func TestTextFormatter_BufferHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{}).Format(context.Background(), activityReport(t), &buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "\x1b[")
}
