// Package aggs implements the prepare/for-segment/merge aggregation
// contract (spec §4.5, §9): each aggregation decomposes into a
// segment-parallel collection phase and an associative reduction, so new
// aggregation types are added by implementing the contract rather than by
// editing a central dispatcher.
//
// The contract is grounded on bleve's own search.Collector shape
// (github.com/blevesearch/bleve/v2/search) — Collect/Results/merge — mapped
// onto a small segment-parallel decomposition so the core's aggregation
// catalogue does not depend on bleve's internal per-segment collector API.
package aggs

import (
	"runtime"
	"sync"
)

// Doc is the minimal shape an aggregation consumes: a search hit's id,
// score, and stored fields.
type Doc struct {
	ID     string
	Score  float64
	Fields map[string]any
}

// Collector accumulates Docs for one segment (chunk) of the result set.
type Collector interface {
	Collect(d Doc)
	Fruit() any
}

// Aggregation is the three-method contract of spec §4.5/§9.
type Aggregation interface {
	// Prepare is called once per query, before any segment runs.
	Prepare()
	// ForSegment returns a fresh Collector for one segment's documents.
	ForSegment() Collector
	// Merge folds one segment's fruit into the running accumulator,
	// which starts as nil before the first call.
	Merge(acc any, fruit any) any
	// Result shapes the final accumulator into the value returned to the
	// caller (e.g. terms: sort by doc count descending, key as tie-break).
	Result(acc any) any
}

// segmentSize is the target number of docs each goroutine collects over;
// small result sets run as a single segment. The segment count is capped at
// GOMAXPROCS, so large result sets get segments bigger than this.
const segmentSize = 256

// Run executes every named aggregation over docs, segment-parallel, and
// returns one shaped result per name.
func Run(specs map[string]Aggregation, docs []Doc) map[string]any {
	out := make(map[string]any, len(specs))
	for name, agg := range specs {
		out[name] = runOne(agg, docs)
	}
	return out
}

func runOne(agg Aggregation, docs []Doc) any {
	agg.Prepare()

	if len(docs) == 0 {
		return agg.Result(agg.Merge(nil, agg.ForSegment().Fruit()))
	}

	numSegments := (len(docs) + segmentSize - 1) / segmentSize
	if max := runtime.GOMAXPROCS(0); numSegments > max {
		numSegments = max
	}
	if numSegments < 1 {
		numSegments = 1
	}
	chunkSize := (len(docs) + numSegments - 1) / numSegments

	fruits := make([]any, numSegments)
	var wg sync.WaitGroup
	for i := 0; i < numSegments; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i, start, end int) {
			defer wg.Done()
			c := agg.ForSegment()
			for _, d := range docs[start:end] {
				c.Collect(d)
			}
			fruits[i] = c.Fruit()
		}(i, start, end)
	}
	wg.Wait()

	var acc any
	for _, f := range fruits {
		if f == nil {
			continue
		}
		acc = agg.Merge(acc, f)
	}
	return agg.Result(acc)
}
