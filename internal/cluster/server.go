// Package cluster composes the cluster data plane (spec §4.10): discovery,
// placement, and rebalancing over a node's registered collections, plus the
// Server that exposes a collection.Manager as an rpc.Handler.
package cluster

import (
	"context"
	"time"

	"github.com/prismsearch/prism/internal/collection"
	"github.com/prismsearch/prism/internal/cluster/rpc"
	"github.com/prismsearch/prism/internal/ingest"
	"github.com/prismsearch/prism/internal/perr"
)

// PeerClient is the subset of *rpc.Client a Server needs to pull documents
// from a remote node for cross-node import_by_query.
type PeerClient interface {
	Search(rpc.SearchRequest) (rpc.SearchResponse, error)
}

// PeerDialer resolves a node id to a PeerClient. A Server never dials
// directly; the caller wires whichever discovery-backed dialer (e.g.
// rpc.Dial against the node's discovered address) fits its deployment.
type PeerDialer func(ctx context.Context, nodeID string) (PeerClient, error)

// defaultImportBatch bounds a single import_by_query round when the
// request doesn't specify one.
const defaultImportBatch = 1000

// Server implements rpc.Handler over a node's local collection.Manager
// (spec §4.10: "Operations (mirror the collection manager plus
// cluster-specific)"). Index/Search/Get/Delete/Stats/ListCollections and
// DeleteByQuery delegate straight to the Manager; ImportByQuery additionally
// fans out to a peer node when the request names one.
type Server struct {
	NodeID    string
	Version   string
	StartedAt time.Time
	Manager   *collection.Manager
	Dial      PeerDialer // optional; nil disables cross-node import
}

var _ rpc.Handler = (*Server)(nil)

func (s *Server) Index(ctx context.Context, req rpc.IndexRequest) (rpc.IndexResponse, error) {
	if err := s.Manager.Index(ctx, req.Collection, req.Documents); err != nil {
		return rpc.IndexResponse{}, err
	}
	return rpc.IndexResponse{}, nil
}

func (s *Server) Search(ctx context.Context, req rpc.SearchRequest) (rpc.SearchResponse, error) {
	hits, err := s.Manager.Search(ctx, req.Collection, req.Query, req.Vector, req.Limit, req.Context, req.Hints)
	if err != nil {
		return rpc.SearchResponse{}, err
	}
	return rpc.SearchResponse{Hits: hits}, nil
}

func (s *Server) Get(ctx context.Context, req rpc.GetRequest) (rpc.GetResponse, error) {
	fields, found, err := s.Manager.Get(ctx, req.Collection, req.ID)
	if err != nil {
		return rpc.GetResponse{}, err
	}
	return rpc.GetResponse{Fields: fields, Found: found}, nil
}

func (s *Server) Delete(ctx context.Context, req rpc.DeleteRequest) (rpc.DeleteResponse, error) {
	if err := s.Manager.Delete(ctx, req.Collection, req.ID); err != nil {
		return rpc.DeleteResponse{}, err
	}
	return rpc.DeleteResponse{}, nil
}

func (s *Server) Stats(ctx context.Context, req rpc.StatsRequest) (rpc.StatsResponse, error) {
	count, err := s.Manager.Stats(ctx, req.Collection)
	if err != nil {
		return rpc.StatsResponse{}, err
	}
	return rpc.StatsResponse{Count: count}, nil
}

func (s *Server) ListCollections(ctx context.Context, req rpc.ListCollectionsRequest) (rpc.ListCollectionsResponse, error) {
	return rpc.ListCollectionsResponse{Names: s.Manager.ListCollections()}, nil
}

func (s *Server) DeleteByQuery(ctx context.Context, req rpc.DeleteByQueryRequest) (rpc.DeleteByQueryResponse, error) {
	count, ids, err := s.Manager.DeleteByQuery(ctx, req.Collection, req.Query, req.MaxDocs, req.DryRun)
	if err != nil {
		return rpc.DeleteByQueryResponse{}, err
	}
	return rpc.DeleteByQueryResponse{DeletedCount: count, DeletedIDs: ids}, nil
}

// ImportByQuery runs locally when req.SourceNode is empty. Otherwise it
// dials the named peer, pulls up to one batch of matching documents over
// the wire, and indexes them into the local target collection (spec
// §4.10: "streaming documents cross-cluster in batches of configured
// size" — one round-trip per call; a caller wanting more than one batch
// issues repeated calls, matching the request's own BatchSize knob).
func (s *Server) ImportByQuery(ctx context.Context, req rpc.ImportByQueryRequest) (rpc.ImportByQueryResponse, error) {
	if req.SourceNode == "" {
		imported, failed, errs := s.Manager.ImportByQuery(ctx, req.SourceCollection, req.TargetCollection, req.Query, req.BatchSize)
		return rpc.ImportByQueryResponse{ImportedCount: imported, FailedCount: failed, Errors: errs}, nil
	}

	if s.Dial == nil {
		return rpc.ImportByQueryResponse{}, perr.New(perr.KindNodeUnavailable, "cross-node import requires a peer dialer")
	}
	peer, err := s.Dial(ctx, req.SourceNode)
	if err != nil {
		return rpc.ImportByQueryResponse{}, err
	}

	batch := req.BatchSize
	if batch <= 0 {
		batch = defaultImportBatch
	}
	resp, err := peer.Search(rpc.SearchRequest{Collection: req.SourceCollection, Query: req.Query, Limit: batch})
	if err != nil {
		return rpc.ImportByQueryResponse{}, err
	}

	docs := make([]ingest.Document, len(resp.Hits))
	for i, h := range resp.Hits {
		docs[i] = ingest.Document{ID: h.ID, Fields: h.Fields}
	}
	if err := s.Manager.Index(ctx, req.TargetCollection, docs); err != nil {
		return rpc.ImportByQueryResponse{ImportedCount: 0, FailedCount: len(docs), Errors: []string{err.Error()}}, nil
	}
	return rpc.ImportByQueryResponse{ImportedCount: len(docs)}, nil
}

func (s *Server) NodeInfo(ctx context.Context, req rpc.NodeInfoRequest) (rpc.NodeInfoResponse, error) {
	return rpc.NodeInfoResponse{
		NodeID:      s.NodeID,
		Version:     s.Version,
		Collections: s.Manager.ListCollections(),
		UptimeSecs:  uint64(time.Since(s.StartedAt).Seconds()),
		Healthy:     true,
	}, nil
}

func (s *Server) Ping(ctx context.Context, req rpc.PingRequest) (rpc.PingResponse, error) {
	return rpc.PingResponse{}, nil
}
