// Package parser turns event-stream log lines into typed records.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a single event extracted from a stream line.
type Record struct {
	InputType  string  `json:"input_type"`
	User       string  `json:"user"`
	InputValue string  `json:"input_value"`
	LastUpdate string  `json:"last_update"`
	Confidence float64 `json:"confidence"`

	// Start and End are already shifted by the extractor's time offset.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Source is the file path this record came from.
	Source string `json:"source"`

	// LineNum is the 1-based line number in the source file.
	LineNum int `json:"line"`
}

// StartUnix returns the start time as Unix seconds with microsecond precision.
func (r Record) StartUnix() float64 {
	return unixSeconds(r.Start)
}

// EndUnix returns the end time as Unix seconds with microsecond precision.
func (r Record) EndUnix() float64 {
	return unixSeconds(r.End)
}

// Duration returns End - Start.
func (r Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Fields returns the seven output columns in row order.
func (r Record) Fields() []string {
	return []string{
		r.InputType,
		r.User,
		r.InputValue,
		r.LastUpdate,
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		strconv.FormatFloat(r.StartUnix(), 'f', -1, 64),
		strconv.FormatFloat(r.EndUnix(), 'f', -1, 64),
	}
}

// FormatRow renders the record as a comma-joined, newline-terminated row.
func FormatRow(r Record) string {
	return strings.Join(r.Fields(), ",") + "\n"
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// ParseError reports a line that could not be turned into a record.
type ParseError struct {
	// Source is the file the line came from, if known.
	Source string

	// LineNum is the 1-based line number, zero if unknown.
	LineNum int

	// Field names the record field being extracted, if any.
	Field string

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("parse error")
	if e.Source != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Source)
		if e.LineNum > 0 {
			sb.WriteString(fmt.Sprintf(":%d", e.LineNum))
		}
	} else if e.LineNum > 0 {
		sb.WriteString(fmt.Sprintf(" at line %d", e.LineNum))
	}
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" (field %s)", e.Field))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}
