package aggs

import (
	"math"
	"sort"
	"time"
)

// HistogramBucket is one fixed-width numeric histogram bucket.
type HistogramBucket struct {
	Key   float64 // bucket lower bound
	Count int64
}

// HistogramAgg buckets a numeric field into fixed-width intervals.
type HistogramAgg struct {
	Field    string
	Interval float64
}

func NewHistogramAgg(field string, interval float64) Aggregation {
	return &HistogramAgg{Field: field, Interval: interval}
}

type histogramCollector struct {
	field    string
	interval float64
	counts   map[float64]int64
}

func (a *HistogramAgg) Prepare() {}
func (a *HistogramAgg) ForSegment() Collector {
	return &histogramCollector{field: a.Field, interval: a.Interval, counts: make(map[float64]int64)}
}
func (c *histogramCollector) Collect(d Doc) {
	v, ok := numeric(d.Fields[c.field])
	if !ok || c.interval <= 0 {
		return
	}
	bucket := math.Floor(v/c.interval) * c.interval
	c.counts[bucket]++
}
func (c *histogramCollector) Fruit() any { return c.counts }

func (a *HistogramAgg) Merge(acc, fruit any) any {
	f := fruit.(map[float64]int64)
	m, _ := acc.(map[float64]int64)
	if m == nil {
		m = make(map[float64]int64, len(f))
	}
	for k, v := range f {
		m[k] += v
	}
	return m
}

func (a *HistogramAgg) Result(acc any) any {
	m, _ := acc.(map[float64]int64)
	buckets := make([]HistogramBucket, 0, len(m))
	for k, v := range m {
		buckets = append(buckets, HistogramBucket{Key: k, Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// DateHistogramBucket is one calendar-interval bucket.
type DateHistogramBucket struct {
	Key   time.Time
	Count int64
}

// DateHistogramAgg buckets a time field ("2006-01-02T15:04:05Z07:00" RFC
// 3339 strings or time.Time values) by a calendar interval: "hour", "day",
// "week", "month", "year".
type DateHistogramAgg struct {
	Field    string
	Interval string
}

func NewDateHistogramAgg(field, interval string) Aggregation {
	return &DateHistogramAgg{Field: field, Interval: interval}
}

func (a *DateHistogramAgg) truncate(t time.Time) time.Time {
	switch a.Interval {
	case "hour":
		return t.Truncate(time.Hour)
	case "week":
		wd := int(t.Weekday())
		return t.AddDate(0, 0, -wd).Truncate(24 * time.Hour)
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case "year":
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	case "day":
		fallthrough
	default:
		return t.Truncate(24 * time.Hour)
	}
}

type dateHistogramCollector struct {
	agg    *DateHistogramAgg
	counts map[int64]int64 // unix seconds -> count
}

func (a *DateHistogramAgg) Prepare() {}
func (a *DateHistogramAgg) ForSegment() Collector {
	return &dateHistogramCollector{agg: a, counts: make(map[int64]int64)}
}
func (c *dateHistogramCollector) Collect(d Doc) {
	t, ok := toTime(d.Fields[c.agg.Field])
	if !ok {
		return
	}
	bucket := c.agg.truncate(t).Unix()
	c.counts[bucket]++
}
func (c *dateHistogramCollector) Fruit() any { return c.counts }

func (a *DateHistogramAgg) Merge(acc, fruit any) any {
	f := fruit.(map[int64]int64)
	m, _ := acc.(map[int64]int64)
	if m == nil {
		m = make(map[int64]int64, len(f))
	}
	for k, v := range f {
		m[k] += v
	}
	return m
}

func (a *DateHistogramAgg) Result(acc any) any {
	m, _ := acc.(map[int64]int64)
	buckets := make([]DateHistogramBucket, 0, len(m))
	for k, v := range m {
		buckets = append(buckets, DateHistogramBucket{Key: time.Unix(k, 0).UTC(), Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key.Before(buckets[j].Key) })
	return buckets
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
