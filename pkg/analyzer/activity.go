package analyzer

import (
	"context"
	"sort"
	"sync"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// instanceKey identifies one occurrence of an activity.
type instanceKey struct {
	ActivityKey
	startMicros int64
}

func keyOf(r parser.Record) ActivityKey {
	return ActivityKey{InputType: r.InputType, User: r.User, InputValue: r.InputValue}
}

// DedupeByDuration keeps, for every (type, user, value, start) combination, the
// record with the longest duration. Ties go to the record seen first. The
// result preserves the order in which combinations were first seen.
func DedupeByDuration(records []parser.Record) []parser.Record {
	index := make(map[instanceKey]int, len(records))
	reps := make([]parser.Record, 0, len(records))

	for _, r := range records {
		k := instanceKey{ActivityKey: keyOf(r), startMicros: r.Start.UnixMicro()}
		i, ok := index[k]
		if !ok {
			index[k] = len(reps)
			reps = append(reps, r)
			continue
		}
		if r.Duration() > reps[i].Duration() {
			reps[i] = r
		}
	}

	return reps
}

// GroupByIdentity collects representatives by (type, user, value). Every
// representative is kept; instances within a group are sorted by start time
// and groups are ordered by key. The timeline origin is the earliest start
// among the representatives.
func GroupByIdentity(reps []parser.Record) (*ActivityTimeline, error) {
	if len(reps) == 0 {
		return nil, &EmptyDatasetError{Mode: ModeActivity}
	}

	byKey := make(map[ActivityKey]*ActivityGroup)
	var keys []ActivityKey
	origin := reps[0].Start

	for _, r := range reps {
		if r.Start.Before(origin) {
			origin = r.Start
		}
		k := keyOf(r)
		g, ok := byKey[k]
		if !ok {
			g = &ActivityGroup{Key: k, Label: k.Label()}
			byKey[k] = g
			keys = append(keys, k)
		}
		g.Instances = append(g.Instances, r)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	timeline := &ActivityTimeline{
		Groups: make([]ActivityGroup, 0, len(keys)),
		Origin: origin,
	}
	for _, k := range keys {
		g := byKey[k]
		SortByStart(g.Instances)
		timeline.Groups = append(timeline.Groups, *g)
	}

	return timeline, nil
}

// SortByStart sorts records by start time, keeping equal starts in order.
func SortByStart(records []parser.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Start.Before(records[j].Start)
	})
}

// ActivityEngine implements Engine for high-level activity streams.
// Only records whose input type equals the activity tag are used.
type ActivityEngine struct {
	tag string

	mu      sync.Mutex
	records []parser.Record
	seen    int
}

// NewActivityEngine creates an activity engine. An empty tag means
// DefaultActivityTag.
func NewActivityEngine(tag string) *ActivityEngine {
	if tag == "" {
		tag = DefaultActivityTag
	}
	return &ActivityEngine{tag: tag}
}

// Mode returns ModeActivity.
func (e *ActivityEngine) Mode() Mode {
	return ModeActivity
}

// Tag returns the input type the engine keeps.
func (e *ActivityEngine) Tag() string {
	return e.tag
}

// Process handles a single record.
func (e *ActivityEngine) Process(ctx context.Context, rec *parser.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seen++
	if rec.InputType == e.tag {
		e.records = append(e.records, *rec)
	}
	return nil
}

// Finalize deduplicates by duration and groups by identity.
func (e *ActivityEngine) Finalize(ctx context.Context) (*Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.records) == 0 {
		return nil, &EmptyDatasetError{Mode: ModeActivity, Tag: e.tag, RecordsSeen: e.seen}
	}

	reps := DedupeByDuration(e.records)
	timeline, err := GroupByIdentity(reps)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Mode:       ModeActivity,
		Title:      ModeActivity.Title(),
		Activities: timeline,
		Stats: Stats{
			RecordsUsed:     len(e.records),
			Representatives: len(reps),
			Rows:            len(timeline.Groups),
		},
	}, nil
}

// Reset clears internal state for reuse.
func (e *ActivityEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = nil
	e.seen = 0
}
