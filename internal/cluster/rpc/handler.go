package rpc

import "context"

// Handler is the set of cluster operations a node serves (spec §4.10). A
// transport-agnostic dispatcher (Serve) decodes frames and calls these
// methods; cluster.Server implements Handler over a collection.Manager.
type Handler interface {
	Index(ctx context.Context, req IndexRequest) (IndexResponse, error)
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	Get(ctx context.Context, req GetRequest) (GetResponse, error)
	Delete(ctx context.Context, req DeleteRequest) (DeleteResponse, error)
	Stats(ctx context.Context, req StatsRequest) (StatsResponse, error)
	ListCollections(ctx context.Context, req ListCollectionsRequest) (ListCollectionsResponse, error)
	DeleteByQuery(ctx context.Context, req DeleteByQueryRequest) (DeleteByQueryResponse, error)
	ImportByQuery(ctx context.Context, req ImportByQueryRequest) (ImportByQueryResponse, error)
	NodeInfo(ctx context.Context, req NodeInfoRequest) (NodeInfoResponse, error)
	Ping(ctx context.Context, req PingRequest) (PingResponse, error)
}
