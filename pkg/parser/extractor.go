package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeOffset is added to every parsed datime. The streams are written
// three hours behind the wall clock of the deployment they come from.
const DefaultTimeOffset = 3 * time.Hour

// DefaultCommentPrefix marks a line as a comment.
const DefaultCommentPrefix = "%"

// tokenSeparators splits a line on the stream's structural characters.
var tokenSeparators = regexp.MustCompile(`[(),\[\]]`)

// NoLabel as FieldLayout.Label marks lines that have no leading label token.
const NoLabel = -1

// FieldLayout maps record fields to token positions.
// Positions are 0-based indices into the tokenized line, datime tuples excluded.
type FieldLayout struct {
	Label      int
	InputType  int
	User       int
	InputValue int
	LastUpdate int
	Confidence int

	// Labels restricts the leading label token (e.g. "input", "output").
	// Empty accepts any label.
	Labels []string
}

// DefaultFieldLayout returns the layout written by the recognizer:
// label(type, user, value, _, last_update, confidence, datime(...), datime(...)).
func DefaultFieldLayout() FieldLayout {
	return FieldLayout{
		Label:      0,
		InputType:  1,
		User:       2,
		InputValue: 3,
		LastUpdate: 5,
		Confidence: 6,
	}
}

type layoutField struct {
	name string
	pos  int
}

// fields returns the layout as name/position pairs in record order.
// The label is left out under NoLabel.
func (l FieldLayout) fields() []layoutField {
	var fs []layoutField
	if l.Label != NoLabel {
		fs = append(fs, layoutField{"label", l.Label})
	}
	return append(fs, []layoutField{
		{"input_type", l.InputType},
		{"user", l.User},
		{"input_value", l.InputValue},
		{"last_update", l.LastUpdate},
		{"confidence", l.Confidence},
	}...)
}

// Validate checks that every position is non-negative and distinct.
// Label may also be NoLabel.
func (l FieldLayout) Validate() error {
	seen := make(map[int]string)
	for _, f := range l.fields() {
		if f.pos < 0 {
			return fmt.Errorf("%s: position %d must be >= 0", f.name, f.pos)
		}
		if other, ok := seen[f.pos]; ok {
			return fmt.Errorf("%s: position %d already used by %s", f.name, f.pos, other)
		}
		seen[f.pos] = f.name
	}
	return nil
}

// Extractor converts raw stream lines into records.
type Extractor struct {
	commentPrefix string
	offset        time.Duration
	location      *time.Location
	layout        FieldLayout
	labels        map[string]bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithCommentPrefix sets the comment marker. An empty prefix disables comments.
func WithCommentPrefix(prefix string) ExtractorOption {
	return func(e *Extractor) {
		e.commentPrefix = prefix
	}
}

// WithTimeOffset sets the shift applied to both datimes.
func WithTimeOffset(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.offset = d
	}
}

// WithLocation sets the zone datime tuples are interpreted in.
func WithLocation(loc *time.Location) ExtractorOption {
	return func(e *Extractor) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithFieldLayout replaces the default token layout.
func WithFieldLayout(layout FieldLayout) ExtractorOption {
	return func(e *Extractor) {
		e.layout = layout
	}
}

// NewExtractor creates an extractor with the default layout, a "%" comment
// prefix, a three hour offset and UTC.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		commentPrefix: DefaultCommentPrefix,
		offset:        DefaultTimeOffset,
		location:      time.UTC,
		layout:        DefaultFieldLayout(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.layout.Labels) > 0 {
		e.labels = make(map[string]bool, len(e.layout.Labels))
		for _, l := range e.layout.Labels {
			e.labels[l] = true
		}
	}
	return e
}

// Skip reports whether line is blank or a comment.
func (e *Extractor) Skip(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	return e.commentPrefix != "" && strings.HasPrefix(trimmed, e.commentPrefix)
}

// Extract parses a single line. It returns ok=false for lines that are skipped.
// Malformed lines return a *ParseError.
func (e *Extractor) Extract(line string) (rec Record, ok bool, err error) {
	if e.Skip(line) {
		return Record{}, false, nil
	}

	dates := FindDatimes(line)
	if len(dates) < 2 {
		return Record{}, false, &ParseError{
			Err: fmt.Errorf("%w, found %d", ErrTooFewDates, len(dates)),
		}
	}

	start, err := ParseDatime(dates[0], e.location)
	if err != nil {
		return Record{}, false, &ParseError{Field: "start_time", Err: err}
	}
	end, err := ParseDatime(dates[1], e.location)
	if err != nil {
		return Record{}, false, &ParseError{Field: "end_time", Err: err}
	}

	tokens := Tokenize(stripDatimes(line))
	values := make(map[string]string, 6)
	for _, f := range e.layout.fields() {
		if f.pos >= len(tokens) {
			return Record{}, false, &ParseError{
				Field: f.name,
				Err:   fmt.Errorf("needs token %d but line has %d tokens", f.pos, len(tokens)),
			}
		}
		values[f.name] = tokens[f.pos]
	}

	if e.labels != nil && e.layout.Label != NoLabel && !e.labels[values["label"]] {
		return Record{}, false, &ParseError{
			Field: "label",
			Err:   fmt.Errorf("unknown label %q", values["label"]),
		}
	}

	confidence, err := strconv.ParseFloat(values["confidence"], 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return Record{}, false, &ParseError{
			Field: "confidence",
			Err:   fmt.Errorf("%q is not a number: %w", values["confidence"], err),
		}
	}

	return Record{
		InputType:  values["input_type"],
		User:       values["user"],
		InputValue: values["input_value"],
		LastUpdate: values["last_update"],
		Confidence: confidence,
		Start:      start.Add(e.offset),
		End:        end.Add(e.offset),
	}, true, nil
}

// Tokenize splits line on ( ) , [ ] and returns the trimmed, non-empty tokens.
func Tokenize(line string) []string {
	parts := tokenSeparators.Split(strings.TrimSpace(line), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
