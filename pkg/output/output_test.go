package output

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/streamplot/pkg/analyzer"
	"github.com/ccollicutt/streamplot/pkg/parser"
)

var t0 = time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

func record(typ, user, value string, start, end int) parser.Record {
	return parser.Record{
		InputType:  typ,
		User:       user,
		InputValue: value,
		LastUpdate: "1",
		Confidence: 0.9,
		Start:      t0.Add(time.Duration(start) * time.Second),
		End:        t0.Add(time.Duration(end) * time.Second),
		Source:     "test.stream",
		LineNum:    1,
	}
}

func datasetFor(t *testing.T, mode analyzer.Mode, recs ...parser.Record) *analyzer.Dataset {
	t.Helper()
	ctx := context.Background()

	engine, err := analyzer.NewEngine(mode, "")
	require.NoError(t, err)
	for i := range recs {
		require.NoError(t, engine.Process(ctx, &recs[i]))
	}
	ds, err := engine.Finalize(ctx)
	require.NoError(t, err)

	ds.Sources = []string{"test.stream"}
	ds.Stats.RecordsRead = len(recs)
	return ds
}

func activityReport(t *testing.T) *Report {
	ds := datasetFor(t, analyzer.ModeActivity,
		record("hla", "alice", "cooking", 0, 3600),
		record("hla", "alice", "cooking", 7200, 9000),
		record("hla", "bob", "reading", 1800, 2700),
	)
	return NewReport("run-1", ds, "", t0)
}

func inputReport(t *testing.T) *Report {
	ds := datasetFor(t, analyzer.ModeInput,
		record("pos", "bob", "kitchen", 0, 1),
		record("pos", "bob", "kitchen", 10, 11),
		record("pos", "bob", "kitchen", 25, 26),
		record("pos", "bob", "hall", 5, 6),
	)
	return NewReport("run-1", ds, "", t0)
}
