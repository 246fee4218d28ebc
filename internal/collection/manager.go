package collection

import (
	"context"
	"path"
	"sort"
	"sync"

	"github.com/prismsearch/prism/internal/aggs"
	"github.com/prismsearch/prism/internal/embedcache"
	"github.com/prismsearch/prism/internal/graph"
	"github.com/prismsearch/prism/internal/hybrid"
	"github.com/prismsearch/prism/internal/ingest"
	"github.com/prismsearch/prism/internal/perr"
	"github.com/prismsearch/prism/internal/storage"
)

// Manager is the process-wide registry of live collections (spec §4.11):
// every index/search/admin operation the core exposes resolves a name (or
// glob pattern) through the Manager to one or more *Collection.
type Manager struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	pipelines   *ingest.Registry
	cache       embedcache.Cache
	embedder    Embedder
}

// NewManager constructs an empty Manager. pipelines/cache/embedder may be
// nil; collections that don't need them simply go without.
func NewManager(pipelines *ingest.Registry, cache embedcache.Cache, embedder Embedder) *Manager {
	return &Manager{
		collections: make(map[string]*Collection),
		pipelines:   pipelines,
		cache:       cache,
		embedder:    embedder,
	}
}

// AddCollection validates schema, builds its backends, binds its pipeline
// (by name, resolved through the Manager's ingest.Registry), and registers
// it. Re-adding an existing name is rejected (spec §4.11: schema changes go
// through detach/attach, not silent overwrite).
func (m *Manager) AddCollection(schema Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[schema.Name]; exists {
		return perr.New(perr.KindSchema, "collection already exists: "+schema.Name)
	}

	var pipeline *ingest.Pipeline
	if schema.Pipeline != "" {
		if m.pipelines == nil {
			return perr.New(perr.KindSchema, "collection references a pipeline but no registry is configured")
		}
		p, err := m.pipelines.Get(schema.Pipeline)
		if err != nil {
			return err
		}
		pipeline = p
	}

	c, err := newCollection(schema, pipeline, m.cache, m.embedder)
	if err != nil {
		return err
	}
	m.collections[schema.Name] = c
	return nil
}

// RemoveCollection detaches a collection from the registry. The backing
// segments/storage, if any, are left for the caller to reclaim explicitly;
// RemoveCollection never deletes data (Detach with deleteData does).
func (m *Manager) RemoveCollection(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		return perr.New(perr.KindCollectionNotFound, name)
	}
	delete(m.collections, name)
	return nil
}

// GetSchema returns the named collection's schema.
func (m *Manager) GetSchema(name string) (Schema, error) {
	c, err := m.get(name)
	if err != nil {
		return Schema{}, err
	}
	return c.Schema, nil
}

// ListCollections returns every registered collection name, sorted.
func (m *Manager) ListCollections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpandCollectionPatterns resolves a list of names/glob patterns (`*`,
// `?`) against the registry, per spec §7's multi-collection search surface.
// A pattern matching nothing is reported as a typed not-found error rather
// than silently contributing zero collections.
func (m *Manager) ExpandCollectionPatterns(patterns []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matched := false
		for name := range m.collections {
			ok, err := path.Match(pattern, name)
			if err != nil {
				return nil, perr.Wrap(perr.KindInvalidQuery, "invalid collection pattern: "+pattern, err)
			}
			if !ok {
				continue
			}
			matched = true
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		if !matched {
			return nil, perr.New(perr.KindCollectionNotFound, pattern)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Manager) get(name string) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, perr.New(perr.KindCollectionNotFound, name)
	}
	return c, nil
}

// GraphBackend exposes the named collection's graph backend, for the
// Neighbors/graph-walk surface (spec §4.11).
func (m *Manager) GraphBackend(name string) (*graph.Backend, error) {
	c, err := m.get(name)
	if err != nil {
		return nil, err
	}
	if c.Graph == nil {
		return nil, perr.New(perr.KindSchema, "collection has no graph backend: "+name)
	}
	return c.Graph, nil
}

// Index runs docs through the named collection's pipeline and backends.
func (m *Manager) Index(ctx context.Context, name string, docs []ingest.Document) error {
	c, err := m.get(name)
	if err != nil {
		return err
	}
	return c.Index(ctx, docs)
}

// Get fetches one document by id from the named collection.
func (m *Manager) Get(ctx context.Context, name, id string) (map[string]any, bool, error) {
	c, err := m.get(name)
	if err != nil {
		return nil, false, err
	}
	return c.Get(ctx, id)
}

// Delete removes a document by id from the named collection.
func (m *Manager) Delete(ctx context.Context, name, id string) error {
	c, err := m.get(name)
	if err != nil {
		return err
	}
	return c.Delete(ctx, id)
}

// Search runs a single-collection hybrid search.
func (m *Manager) Search(ctx context.Context, name, query string, vec []float32, limit int, searchCtx map[string]string, hints hybrid.Hints) ([]hybrid.ScoredDoc, error) {
	c, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, query, vec, limit, searchCtx, hints)
}

// SearchWithAggs runs a single-collection text search with aggregations.
func (m *Manager) SearchWithAggs(ctx context.Context, name, query string, limit int, specs map[string]aggs.Aggregation) (map[string]any, []hybrid.ScoredDoc, error) {
	c, err := m.get(name)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.SearchWithAggs(ctx, query, limit, specs)
	if err != nil {
		return nil, nil, err
	}
	hits := make([]hybrid.ScoredDoc, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = hybrid.ScoredDoc{ID: h.ID, Score: h.Score, Fields: h.Fields}
	}
	return res.Aggs, hits, nil
}

// MultiSearchResult pairs one matched collection's hits with its name, or
// an error if that collection's search failed.
type MultiSearchResult struct {
	Collection string
	Hits       []hybrid.ScoredDoc
	Err        error
}

// MultiSearch runs Search against every collection a glob/name list
// expands to (spec §7). A single collection's failure doesn't abort the
// others; it's reported inline on that collection's result.
func (m *Manager) MultiSearch(ctx context.Context, patterns []string, query string, vec []float32, limit int, searchCtx map[string]string, hints hybrid.Hints) ([]MultiSearchResult, error) {
	names, err := m.ExpandCollectionPatterns(patterns)
	if err != nil {
		return nil, err
	}
	out := make([]MultiSearchResult, len(names))
	for i, name := range names {
		hits, err := m.Search(ctx, name, query, vec, limit, searchCtx, hints)
		out[i] = MultiSearchResult{Collection: name, Hits: hits, Err: err}
	}
	return out, nil
}

// DeleteByQuery runs Collection.DeleteByQuery against the named
// collection.
func (m *Manager) DeleteByQuery(ctx context.Context, name, query string, maxDocs int, dryRun bool) (int, []string, error) {
	c, err := m.get(name)
	if err != nil {
		return 0, nil, err
	}
	return c.DeleteByQuery(ctx, query, maxDocs, dryRun)
}

// ImportByQuery copies documents matching query from a local source
// collection into a local target collection. Cross-node import is handled
// by cluster.Server, which fetches the source documents over the wire and
// indexes them with Index; this method never contacts another node.
func (m *Manager) ImportByQuery(ctx context.Context, sourceCollection, targetCollection, query string, batchSize int) (imported, failed int, errs []string) {
	source, err := m.get(sourceCollection)
	if err != nil {
		return 0, 0, []string{err.Error()}
	}
	target, err := m.get(targetCollection)
	if err != nil {
		return 0, 0, []string{err.Error()}
	}
	if batchSize <= 0 {
		batchSize = deleteByQueryScanSize
	}

	hits, err := source.Search(ctx, query, nil, batchSize, nil, hybrid.Hints{})
	if err != nil {
		return 0, 0, []string{err.Error()}
	}

	docs := make([]ingest.Document, len(hits))
	for i, h := range hits {
		docs[i] = ingest.Document{ID: h.ID, Fields: h.Fields}
	}
	if err := target.Index(ctx, docs); err != nil {
		return 0, len(docs), []string{err.Error()}
	}
	return len(docs), 0, nil
}

// Stats reports the named collection's live document count.
func (m *Manager) Stats(ctx context.Context, name string) (uint64, error) {
	c, err := m.get(name)
	if err != nil {
		return 0, err
	}
	return c.Stats(ctx)
}

// LintSchemas re-validates every registered collection's schema and
// returns a name -> error map for any that now fail (spec §4.11: schemas
// can drift invalid relative to a newer Prism version's invariants).
func (m *Manager) LintSchemas() map[string]error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	issues := make(map[string]error)
	for name, c := range m.collections {
		if err := c.Schema.Validate(); err != nil {
			issues[name] = err
		}
	}
	return issues
}

// Detach exports the named collection's metadata manifest, unloads it from
// the registry, and — when deleteData and a store are given — wipes its
// on-disk prefix (spec §4.11). It refuses to detach an empty collection
// ("verify non-empty" in the spec's detach/attach contract), since an empty
// export is almost always a caller mistake rather than an intentional
// backup.
func (m *Manager) Detach(ctx context.Context, name string, store storage.Store, deleteData bool) (Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[name]
	if !ok {
		return Manifest{}, perr.New(perr.KindCollectionNotFound, name)
	}

	docCount, err := c.Stats(ctx)
	if err != nil {
		return Manifest{}, err
	}
	if docCount == 0 {
		return Manifest{}, perr.New(perr.KindSchema, "refusing to detach empty collection: "+name)
	}

	manifest := BuildManifest(name, docCount, 0, "", c.Schema.backendNames())

	delete(m.collections, name)

	if deleteData {
		if store == nil {
			return Manifest{}, perr.New(perr.KindConfig, "delete_data requested but no store configured")
		}
		if err := store.DeletePrefix(ctx, name); err != nil {
			return Manifest{}, err
		}
	}

	return manifest, nil
}

// Attach hot-adds a collection from a detached snapshot's schema and
// manifest. It rejects a name collision with an already-registered
// collection, and refuses to proceed when the snapshot didn't carry a
// schema.yaml (spec §6's export contract: "the core refuses to attach
// without it").
func (m *Manager) Attach(schema Schema, manifest Manifest, hasSchemaYAML bool) error {
	if !hasSchemaYAML {
		return perr.New(perr.KindConfig, "snapshot is missing schema.yaml: "+manifest.Collection)
	}
	if manifest.Collection != "" && manifest.Collection != schema.Name {
		return perr.New(perr.KindSchema, "manifest collection name does not match schema name")
	}

	m.mu.Lock()
	if _, exists := m.collections[schema.Name]; exists {
		m.mu.Unlock()
		return perr.New(perr.KindSchema, "collection already exists: "+schema.Name)
	}
	m.mu.Unlock()

	return m.AddCollection(schema)
}
