package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

var baseTime = time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

func rec(typ, user, value string, start, end int) parser.Record {
	return parser.Record{
		InputType:  typ,
		User:       user,
		InputValue: value,
		Start:      baseTime.Add(time.Duration(start) * time.Second),
		End:        baseTime.Add(time.Duration(end) * time.Second),
	}
}

func TestDedupeByDuration_KeepsLongest(t *testing.T) {
	records := []parser.Record{
		rec("hla", "alice", "cooking", 0, 60),
		rec("hla", "alice", "cooking", 0, 300),
		rec("hla", "alice", "cooking", 0, 120),
	}

	reps := DedupeByDuration(records)

	require.Len(t, reps, 1)
	assert.Equal(t, 300*time.Second, reps[0].Duration())
}

func TestDedupeByDuration_TiesKeepFirst(t *testing.T) {
	first := rec("hla", "alice", "cooking", 0, 60)
	first.LastUpdate = "first"
	second := rec("hla", "alice", "cooking", 0, 60)
	second.LastUpdate = "second"

	reps := DedupeByDuration([]parser.Record{first, second})

	require.Len(t, reps, 1)
	assert.Equal(t, "first", reps[0].LastUpdate)
}

func TestDedupeByDuration_DistinctStartsSurvive(t *testing.T) {
	records := []parser.Record{
		rec("hla", "alice", "cooking", 0, 60),
		rec("hla", "alice", "cooking", 600, 700),
		rec("hla", "bob", "cooking", 0, 10),
		rec("hla", "alice", "eating", 0, 10),
	}

	reps := DedupeByDuration(records)

	require.Len(t, reps, 4)
	// first-seen order is preserved
	assert.Equal(t, records, reps)
}

func TestDedupeByDuration_RepresentativeIsMaximal(t *testing.T) {
	records := []parser.Record{
		rec("hla", "alice", "cooking", 0, 30),
		rec("hla", "bob", "reading", 10, 20),
		rec("hla", "alice", "cooking", 0, 90),
		rec("hla", "bob", "reading", 10, 15),
		rec("hla", "alice", "cooking", 0, 45),
	}

	reps := DedupeByDuration(records)

	for _, rep := range reps {
		for _, r := range records {
			if keyOf(r) == keyOf(rep) && r.Start.Equal(rep.Start) {
				assert.GreaterOrEqual(t, rep.Duration(), r.Duration())
			}
		}
	}
}

func TestGroupByIdentity(t *testing.T) {
	reps := []parser.Record{
		rec("hla", "bob", "reading", 500, 600),
		rec("hla", "alice", "cooking", 900, 1000),
		rec("hla", "alice", "cooking", 100, 200),
	}

	timeline, err := GroupByIdentity(reps)
	require.NoError(t, err)

	require.Len(t, timeline.Groups, 2)
	assert.Equal(t, "hla(alice, cooking)", timeline.Groups[0].Label)
	assert.Equal(t, "hla(bob, reading)", timeline.Groups[1].Label)

	alice := timeline.Groups[0].Instances
	require.Len(t, alice, 2)
	assert.True(t, alice[0].Start.Before(alice[1].Start), "instances sorted by start")

	assert.Equal(t, baseTime.Add(100*time.Second), timeline.Origin)
}

func TestGroupByIdentity_Empty(t *testing.T) {
	_, err := GroupByIdentity(nil)

	var empty *EmptyDatasetError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, ModeActivity, empty.Mode)
}

func TestSortByStart_Idempotent(t *testing.T) {
	records := []parser.Record{
		rec("hla", "a", "x", 30, 40),
		rec("hla", "a", "x", 10, 20),
		rec("hla", "a", "y", 10, 15),
	}

	SortByStart(records)
	once := append([]parser.Record(nil), records...)
	SortByStart(records)

	assert.Equal(t, once, records)
	assert.Equal(t, "x", records[0].InputValue, "stable for equal starts")
}

func TestActivityEngine_OriginIgnoresDiscardedCandidates(t *testing.T) {
	engine := NewActivityEngine("")
	ctx := context.Background()

	// The pos record starts earlier but is not an activity.
	for _, r := range []parser.Record{
		rec("pos", "alice", "kitchen", -50, 0),
		rec("hla", "alice", "cooking", 0, 10),
		rec("hla", "alice", "cooking", 0, 100),
		rec("hla", "bob", "reading", 20, 40),
	} {
		require.NoError(t, engine.Process(ctx, &r))
	}

	ds, err := engine.Finalize(ctx)
	require.NoError(t, err)

	assert.Equal(t, ModeActivity, ds.Mode)
	assert.Equal(t, "High Level Activities", ds.Title)
	assert.Equal(t, baseTime, ds.Activities.Origin)
	assert.Equal(t, 3, ds.Stats.RecordsUsed)
	assert.Equal(t, 2, ds.Stats.Representatives)
	assert.Equal(t, 2, ds.Stats.Rows)

	cooking := ds.Activities.Groups[0]
	require.Len(t, cooking.Instances, 1)
	assert.Equal(t, 100*time.Second, cooking.Instances[0].Duration())
}

func TestActivityEngine_NoTaggedRecords(t *testing.T) {
	engine := NewActivityEngine("hla")
	ctx := context.Background()

	r := rec("pos", "alice", "kitchen", 0, 1)
	require.NoError(t, engine.Process(ctx, &r))

	_, err := engine.Finalize(ctx)

	var empty *EmptyDatasetError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "hla", empty.Tag)
	assert.Equal(t, 1, empty.RecordsSeen)
	assert.Contains(t, err.Error(), `"hla"`)
}

func TestActivityEngine_CustomTag(t *testing.T) {
	engine := NewActivityEngine("activity")
	ctx := context.Background()

	r := rec("activity", "alice", "cooking", 0, 1)
	require.NoError(t, engine.Process(ctx, &r))

	ds, err := engine.Finalize(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Activities.Groups, 1)
	assert.Equal(t, "activity", engine.Tag())
}

func TestActivityEngine_Reset(t *testing.T) {
	engine := NewActivityEngine("")
	ctx := context.Background()

	r := rec("hla", "alice", "cooking", 0, 1)
	require.NoError(t, engine.Process(ctx, &r))
	engine.Reset()

	_, err := engine.Finalize(ctx)
	var empty *EmptyDatasetError
	assert.True(t, errors.As(err, &empty))
}
