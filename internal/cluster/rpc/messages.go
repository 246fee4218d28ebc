package rpc

import (
	"github.com/prismsearch/prism/internal/hybrid"
	"github.com/prismsearch/prism/internal/ingest"
)

// IndexRequest/Response carries a batch of documents to index into a
// collection (spec §4.10).
type IndexRequest struct {
	Collection string
	Documents  []ingest.Document
}

type IndexResponse struct{}

// SearchRequest/Response carries a hybrid search against one collection.
type SearchRequest struct {
	Collection string
	Query      string
	Vector     []float32
	Limit      int
	Context    map[string]string
	Hints      hybrid.Hints
}

type SearchResponse struct {
	Hits []hybrid.ScoredDoc
}

// GetRequest/Response fetches one document by id.
type GetRequest struct {
	Collection string
	ID         string
}

type GetResponse struct {
	Fields map[string]any
	Found  bool
}

// DeleteRequest/Response removes one document by id.
type DeleteRequest struct {
	Collection string
	ID         string
}

type DeleteResponse struct{}

// StatsRequest/Response reports a collection's live document count.
type StatsRequest struct {
	Collection string
}

type StatsResponse struct {
	Count uint64
}

// ListCollectionsRequest/Response enumerates the node's registered
// collections.
type ListCollectionsRequest struct{}

type ListCollectionsResponse struct {
	Names []string
}

// DeleteByQueryRequest/Response matches spec §4.10's
// delete_by_query operation.
type DeleteByQueryRequest struct {
	Collection string
	Query      string
	MaxDocs    int
	DryRun     bool
}

type DeleteByQueryResponse struct {
	DeletedCount int
	DeletedIDs   []string
}

// ImportByQueryRequest/Response matches spec §4.10's
// import_by_query operation, pulling documents matching Query from
// SourceCollection on SourceNode (empty means local) into
// TargetCollection.
type ImportByQueryRequest struct {
	SourceCollection string
	TargetCollection string
	Query            string
	SourceNode       string
	BatchSize        int
}

type ImportByQueryResponse struct {
	ImportedCount int
	FailedCount   int
	Errors        []string
}

// NodeInfoRequest/Response reports this node's identity and health.
type NodeInfoRequest struct{}

type NodeInfoResponse struct {
	NodeID      string
	Version     string
	Collections []string
	UptimeSecs  uint64
	Healthy     bool
}

// PingRequest/Response is the liveness check.
type PingRequest struct{}

type PingResponse struct{}
