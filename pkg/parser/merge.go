package parser

import (
	"container/heap"
	"context"
	"io"
)

// MergedSource combines several RecordSources into a single stream ordered by
// start time (earliest first). Records with equal start times keep the order of
// the sources they came from.
type MergedSource struct {
	sources     []RecordSource
	heap        *recordHeap
	initialized bool
}

// NewMergedSource creates a RecordSource that merges sources by start time.
func NewMergedSource(sources ...RecordSource) *MergedSource {
	return &MergedSource{
		sources: sources,
		heap:    &recordHeap{},
	}
}

// Next returns the next record in start-time order across all sources.
// Returns io.EOF when all sources are exhausted.
func (m *MergedSource) Next(ctx context.Context) (*Record, error) {
	if !m.initialized {
		if err := m.initHeap(ctx); err != nil {
			return nil, err
		}
		m.initialized = true
	}

	if m.heap.Len() == 0 {
		return nil, io.EOF
	}

	item := heap.Pop(m.heap).(*heapItem)

	// Refill from the same source
	next, err := m.sources[item.sourceIdx].Next(ctx)
	switch {
	case err == nil:
		heap.Push(m.heap, &heapItem{record: next, sourceIdx: item.sourceIdx, seq: item.seq + 1})
	case err != io.EOF:
		return nil, err
	}

	return item.record, nil
}

// initHeap reads the first record from each source.
func (m *MergedSource) initHeap(ctx context.Context) error {
	heap.Init(m.heap)

	for i, src := range m.sources {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		heap.Push(m.heap, &heapItem{record: rec, sourceIdx: i})
	}

	return nil
}

// Close releases all source resources.
func (m *MergedSource) Close() error {
	var firstErr error
	for _, src := range m.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type heapItem struct {
	record    *Record
	sourceIdx int
	seq       int
}

// recordHeap implements heap.Interface ordered by (start, source, sequence).
type recordHeap []*heapItem

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if !a.record.Start.Equal(b.record.Start) {
		return a.record.Start.Before(b.record.Start)
	}
	if a.sourceIdx != b.sourceIdx {
		return a.sourceIdx < b.sourceIdx
	}
	return a.seq < b.seq
}

func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *recordHeap) Push(x any) {
	*h = append(*h, x.(*heapItem))
}

func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// OpenSources builds a RecordSource over files: a plain FileSource for a
// single file, a MergedSource ordered by start time otherwise.
func OpenSources(files []string, extractor *Extractor) RecordSource {
	if len(files) == 1 {
		return NewFileSource(files, extractor)
	}
	sources := make([]RecordSource, len(files))
	for i, f := range files {
		sources[i] = NewFileSource([]string{f}, extractor)
	}
	return NewMergedSource(sources...)
}
