package aggs

// FilterAgg restricts an inner aggregation to documents matching Predicate.
// Implemented here (rather than as a query-time clause) because the
// aggregation layer already sees the full per-query doc set (spec §4.5).
type FilterAgg struct {
	Predicate func(Doc) bool
	Inner     Aggregation
}

func NewFilterAgg(predicate func(Doc) bool, inner Aggregation) Aggregation {
	return &FilterAgg{Predicate: predicate, Inner: inner}
}

type filterCollector struct {
	agg   *FilterAgg
	inner Collector
}

func (a *FilterAgg) Prepare() { a.Inner.Prepare() }
func (a *FilterAgg) ForSegment() Collector {
	return &filterCollector{agg: a, inner: a.Inner.ForSegment()}
}
func (c *filterCollector) Collect(d Doc) {
	if c.agg.Predicate(d) {
		c.inner.Collect(d)
	}
}
func (c *filterCollector) Fruit() any { return c.inner.Fruit() }

func (a *FilterAgg) Merge(acc, fruit any) any { return a.Inner.Merge(acc, fruit) }
func (a *FilterAgg) Result(acc any) any       { return a.Inner.Result(acc) }

// FiltersAgg runs one named predicate per bucket, each collecting
// independently over the same doc set.
type FiltersAgg struct {
	Buckets map[string]func(Doc) bool
}

func NewFiltersAgg(buckets map[string]func(Doc) bool) Aggregation {
	return &FiltersAgg{Buckets: buckets}
}

type filtersCollector struct {
	agg    *FiltersAgg
	counts map[string]int64
}

func (a *FiltersAgg) Prepare() {}
func (a *FiltersAgg) ForSegment() Collector {
	return &filtersCollector{agg: a, counts: make(map[string]int64, len(a.Buckets))}
}
func (c *filtersCollector) Collect(d Doc) {
	for name, pred := range c.agg.Buckets {
		if pred(d) {
			c.counts[name]++
		}
	}
}
func (c *filtersCollector) Fruit() any { return c.counts }

func (a *FiltersAgg) Merge(acc, fruit any) any {
	f := fruit.(map[string]int64)
	m, _ := acc.(map[string]int64)
	if m == nil {
		m = make(map[string]int64, len(f))
	}
	for k, v := range f {
		m[k] += v
	}
	return m
}

func (a *FiltersAgg) Result(acc any) any {
	m, _ := acc.(map[string]int64)
	out := make(map[string]int64, len(a.Buckets))
	for name := range a.Buckets {
		out[name] = m[name]
	}
	return out
}

// GlobalAgg runs Inner over the entire doc set passed to Run, ignoring any
// filter context — the aggregation layer only ever sees the full per-query
// set already, so this is a pass-through documenting the ES-compatible
// "global" scope by name (spec §4.5's aggregation family list).
type GlobalAgg struct {
	Inner Aggregation
}

func NewGlobalAgg(inner Aggregation) Aggregation { return &GlobalAgg{Inner: inner} }

func (a *GlobalAgg) Prepare()              { a.Inner.Prepare() }
func (a *GlobalAgg) ForSegment() Collector { return a.Inner.ForSegment() }
func (a *GlobalAgg) Merge(acc, fruit any) any { return a.Inner.Merge(acc, fruit) }
func (a *GlobalAgg) Result(acc any) any       { return a.Inner.Result(acc) }
