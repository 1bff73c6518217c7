// Package analyzer turns extracted records into the timelines handed to the
// rendering layer.
package analyzer

import (
	"strings"
	"time"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// Mode selects how a stream is analyzed.
type Mode string

const (
	// ModeInput plots every low-level input event on a lane per (type, value).
	ModeInput Mode = "input"

	// ModeActivity plots deduplicated high-level activity intervals.
	ModeActivity Mode = "activity"
)

// DefaultActivityTag is the input type carried by high-level activity records.
const DefaultActivityTag = "hla"

// Title returns the plot title for the mode.
func (m Mode) Title() string {
	switch m {
	case ModeInput:
		return "Position & Low Level Activities"
	case ModeActivity:
		return "High Level Activities"
	default:
		return string(m)
	}
}

// Dataset is everything the rendering layer needs for one plot.
// Exactly one of Inputs and Activities is set, matching Mode.
type Dataset struct {
	Mode       Mode              `json:"mode"`
	Title      string            `json:"title"`
	Sources    []string          `json:"sources"`
	Inputs     *InputTimeline    `json:"inputs,omitempty"`
	Activities *ActivityTimeline `json:"activities,omitempty"`
	Stats      Stats             `json:"stats"`
}

// Stats provides counts gathered while building a dataset.
type Stats struct {
	// RecordsRead is the number of records returned by the source.
	RecordsRead int `json:"records_read"`

	// RecordsOutOfRange were dropped by the time window.
	RecordsOutOfRange int `json:"records_out_of_range,omitempty"`

	// RecordsUsed were accepted by the engine.
	RecordsUsed int `json:"records_used"`

	// Representatives is the number of intervals kept after deduplication
	// (activity mode only).
	Representatives int `json:"representatives,omitempty"`

	// Rows is the number of lanes or activity groups plotted.
	Rows int `json:"rows"`
}

// InputKey identifies a low-level lane.
type InputKey struct {
	InputType  string `json:"input_type"`
	InputValue string `json:"input_value"`
}

// Label returns the lane label, e.g. POS(kitchen).
func (k InputKey) Label() string {
	return strings.ToUpper(k.InputType) + "(" + k.InputValue + ")"
}

// InputLane holds every record for one (type, value) pair.
type InputLane struct {
	Key   InputKey `json:"key"`
	Label string   `json:"label"`

	// Position is the lane's vertical position in (0, 1).
	Position float64 `json:"position"`

	// Records are in source order.
	Records []parser.Record `json:"records"`
}

// InputTimeline is the low-level dataset.
type InputTimeline struct {
	Lanes []InputLane `json:"lanes"`

	// Origin is the earliest start over all records.
	Origin time.Time `json:"origin"`

	// End is the latest end over all records.
	End time.Time `json:"end"`
}

// Span returns End - Origin in seconds.
func (t *InputTimeline) Span() float64 {
	return t.End.Sub(t.Origin).Seconds()
}

// ActivityKey identifies a logical activity independent of when it started.
type ActivityKey struct {
	InputType  string `json:"input_type"`
	User       string `json:"user"`
	InputValue string `json:"input_value"`
}

// Label returns the row label, e.g. hla(alice, cooking).
func (k ActivityKey) Label() string {
	return k.InputType + "(" + k.User + ", " + k.InputValue + ")"
}

func (k ActivityKey) less(o ActivityKey) bool {
	if k.InputType != o.InputType {
		return k.InputType < o.InputType
	}
	if k.User != o.User {
		return k.User < o.User
	}
	return k.InputValue < o.InputValue
}

// ActivityGroup holds the representative intervals of one activity.
type ActivityGroup struct {
	Key   ActivityKey `json:"key"`
	Label string      `json:"label"`

	// Instances are sorted by start time.
	Instances []parser.Record `json:"instances"`
}

// ActivityTimeline is the high-level dataset.
type ActivityTimeline struct {
	// Groups are ordered by key.
	Groups []ActivityGroup `json:"groups"`

	// Origin is the earliest start over the representatives.
	Origin time.Time `json:"origin"`
}

// Offset returns t relative to the timeline origin, in seconds.
func (t *ActivityTimeline) Offset(at time.Time) float64 {
	return at.Sub(t.Origin).Seconds()
}

// Offset returns t relative to the timeline origin, in seconds.
func (t *InputTimeline) Offset(at time.Time) float64 {
	return at.Sub(t.Origin).Seconds()
}
