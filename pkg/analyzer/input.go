package analyzer

import (
	"context"
	"sort"
	"sync"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// BuildInputTimeline places every record on a lane keyed by (type, value).
// Lanes are sorted by key and spread evenly over (0, 1).
func BuildInputTimeline(records []parser.Record) (*InputTimeline, error) {
	if len(records) == 0 {
		return nil, &EmptyDatasetError{Mode: ModeInput}
	}

	byKey := make(map[InputKey][]parser.Record)
	origin, end := records[0].Start, records[0].End

	for _, r := range records {
		if r.Start.Before(origin) {
			origin = r.Start
		}
		if r.End.After(end) {
			end = r.End
		}
		k := InputKey{InputType: r.InputType, InputValue: r.InputValue}
		byKey[k] = append(byKey[k], r)
	}

	keys := make([]InputKey, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].InputType != keys[j].InputType {
			return keys[i].InputType < keys[j].InputType
		}
		return keys[i].InputValue < keys[j].InputValue
	})

	timeline := &InputTimeline{
		Lanes:  make([]InputLane, len(keys)),
		Origin: origin,
		End:    end,
	}
	for i, k := range keys {
		timeline.Lanes[i] = InputLane{
			Key:      k,
			Label:    k.Label(),
			Position: float64(i+1) / float64(len(keys)+1),
			Records:  byKey[k],
		}
	}

	return timeline, nil
}

// InputEngine implements Engine for low-level input streams.
type InputEngine struct {
	mu      sync.Mutex
	records []parser.Record
}

// NewInputEngine creates a low-level input engine.
func NewInputEngine() *InputEngine {
	return &InputEngine{}
}

// Mode returns ModeInput.
func (e *InputEngine) Mode() Mode {
	return ModeInput
}

// Process handles a single record.
func (e *InputEngine) Process(ctx context.Context, rec *parser.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = append(e.records, *rec)
	return nil
}

// Finalize builds the lane timeline.
func (e *InputEngine) Finalize(ctx context.Context) (*Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	timeline, err := BuildInputTimeline(e.records)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Mode:   ModeInput,
		Title:  ModeInput.Title(),
		Inputs: timeline,
		Stats: Stats{
			RecordsUsed: len(e.records),
			Rows:        len(timeline.Lanes),
		},
	}, nil
}

// Reset clears internal state for reuse.
func (e *InputEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = nil
}
