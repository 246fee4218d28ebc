package aggs

import (
	"math"
	"sort"
)

// PercentilesAgg computes nearest-rank percentiles over a numeric field.
// Segment fruits are sorted slices; merge is a k-way sorted merge so the
// final Result never has to re-sort the full dataset.
type PercentilesAgg struct {
	Field   string
	Percent []float64
}

func NewPercentilesAgg(field string, percents []float64) Aggregation {
	return &PercentilesAgg{Field: field, Percent: percents}
}

type percentileCollector struct {
	field  string
	values []float64
}

func (a *PercentilesAgg) Prepare() {}
func (a *PercentilesAgg) ForSegment() Collector {
	return &percentileCollector{field: a.Field}
}
func (c *percentileCollector) Collect(d Doc) {
	if v, ok := numeric(d.Fields[c.field]); ok {
		c.values = append(c.values, v)
	}
}
func (c *percentileCollector) Fruit() any {
	sort.Float64s(c.values)
	return c.values
}

func (a *PercentilesAgg) Merge(acc, fruit any) any {
	f := fruit.([]float64)
	existing, _ := acc.([]float64)
	merged := make([]float64, 0, len(existing)+len(f))
	i, j := 0, 0
	for i < len(existing) && j < len(f) {
		if existing[i] <= f[j] {
			merged = append(merged, existing[i])
			i++
		} else {
			merged = append(merged, f[j])
			j++
		}
	}
	merged = append(merged, existing[i:]...)
	merged = append(merged, f[j:]...)
	return merged
}

func (a *PercentilesAgg) Result(acc any) any {
	values, _ := acc.([]float64)
	out := make(map[float64]float64, len(a.Percent))
	if len(values) == 0 {
		for _, p := range a.Percent {
			out[p] = 0
		}
		return out
	}
	for _, p := range a.Percent {
		idx := int(math.Ceil(p/100*float64(len(values)))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(values) {
			idx = len(values) - 1
		}
		out[p] = values[idx]
	}
	return out
}

// RangeBucket is one numeric-range bucket (from inclusive, to exclusive;
// either bound may be unset via math.Inf).
type RangeBucket struct {
	From  float64
	To    float64
	Count int64
}

// RangeAgg buckets a numeric field into caller-specified [From, To) ranges.
type RangeAgg struct {
	Field  string
	Ranges []RangeBucket
}

func NewRangeAgg(field string, ranges []RangeBucket) Aggregation {
	return &RangeAgg{Field: field, Ranges: ranges}
}

type rangeCollector struct {
	agg    *RangeAgg
	counts []int64
}

func (a *RangeAgg) Prepare() {}
func (a *RangeAgg) ForSegment() Collector {
	return &rangeCollector{agg: a, counts: make([]int64, len(a.Ranges))}
}
func (c *rangeCollector) Collect(d Doc) {
	v, ok := numeric(d.Fields[c.agg.Field])
	if !ok {
		return
	}
	for i, r := range c.agg.Ranges {
		if v >= r.From && v < r.To {
			c.counts[i]++
		}
	}
}
func (c *rangeCollector) Fruit() any { return c.counts }

func (a *RangeAgg) Merge(acc, fruit any) any {
	f := fruit.([]int64)
	sum, _ := acc.([]int64)
	if sum == nil {
		sum = make([]int64, len(f))
	}
	for i := range f {
		sum[i] += f[i]
	}
	return sum
}

func (a *RangeAgg) Result(acc any) any {
	counts, _ := acc.([]int64)
	out := make([]RangeBucket, len(a.Ranges))
	for i, r := range a.Ranges {
		out[i] = r
		if i < len(counts) {
			out[i].Count = counts[i]
		}
	}
	return out
}
