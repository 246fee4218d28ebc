package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismsearch/prism/internal/perr"
)

type fakeHandler struct{}

func (fakeHandler) Index(ctx context.Context, req IndexRequest) (IndexResponse, error) {
	return IndexResponse{}, nil
}
func (fakeHandler) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if req.Collection == "" {
		return SearchResponse{}, perr.New(perr.KindInvalidQuery, "collection required")
	}
	return SearchResponse{Hits: nil}, nil
}
func (fakeHandler) Get(ctx context.Context, req GetRequest) (GetResponse, error) {
	if req.ID == "missing" {
		return GetResponse{Found: false}, nil
	}
	return GetResponse{Fields: map[string]any{"title": "hi"}, Found: true}, nil
}
func (fakeHandler) Delete(ctx context.Context, req DeleteRequest) (DeleteResponse, error) {
	return DeleteResponse{}, nil
}
func (fakeHandler) Stats(ctx context.Context, req StatsRequest) (StatsResponse, error) {
	return StatsResponse{Count: 42}, nil
}
func (fakeHandler) ListCollections(ctx context.Context, req ListCollectionsRequest) (ListCollectionsResponse, error) {
	return ListCollectionsResponse{Names: []string{"docs"}}, nil
}
func (fakeHandler) DeleteByQuery(ctx context.Context, req DeleteByQueryRequest) (DeleteByQueryResponse, error) {
	return DeleteByQueryResponse{}, nil
}
func (fakeHandler) ImportByQuery(ctx context.Context, req ImportByQueryRequest) (ImportByQueryResponse, error) {
	return ImportByQueryResponse{}, nil
}
func (fakeHandler) NodeInfo(ctx context.Context, req NodeInfoRequest) (NodeInfoResponse, error) {
	return NodeInfoResponse{NodeID: "n1", Healthy: true}, nil
}
func (fakeHandler) Ping(ctx context.Context, req PingRequest) (PingResponse, error) {
	return PingResponse{}, nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	go func() { _ = Serve(context.Background(), serverConn, fakeHandler{}) }()

	client, err := NewClient(clientConn)
	require.NoError(t, err)
	return client
}

func TestClientServer_Stats(t *testing.T) {
	c := newTestClient(t)
	resp, err := c.Stats(StatsRequest{Collection: "docs"})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), resp.Count)
}

func TestClientServer_GetFound(t *testing.T) {
	c := newTestClient(t)
	resp, err := c.Get(GetRequest{Collection: "docs", ID: "1"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "hi", resp.Fields["title"])
}

func TestClientServer_ErrorPropagates(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Search(SearchRequest{Collection: ""})
	require.Error(t, err)
	assert.Equal(t, perr.KindInvalidQuery, perr.KindOf(err))
}

func TestClientServer_ListCollections(t *testing.T) {
	c := newTestClient(t)
	resp, err := c.ListCollections(ListCollectionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, resp.Names)
}

func TestFrame_RoundTrip(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		_ = WriteFrame(serverConn, Frame{Op: OpPing, Payload: []byte("hello")})
	}()

	f, err := ReadFrame(clientConn)
	require.NoError(t, err)
	assert.Equal(t, OpPing, f.Op)
	assert.Equal(t, []byte("hello"), f.Payload)
}
