package rpc

import (
	"github.com/prismsearch/prism/internal/perr"
)

// Client drives one rpc.Stream's request/response protocol from the
// caller's side (spec §4.10). One Client wraps one stream; callers open a
// fresh stream (and Client) per concurrent in-flight request, matching
// QUIC's cheap per-request stream model.
type Client struct {
	stream Stream
}

// NewClient performs the version handshake over stream and returns a
// ready Client.
func NewClient(stream Stream) (*Client, error) {
	payload, err := EncodeMessage(Hello{Version: ProtocolVersion})
	if err != nil {
		return nil, err
	}
	if err := WriteFrame(stream, Frame{Op: OpPing, Payload: payload}); err != nil {
		return nil, err
	}

	respFrame, err := ReadFrame(stream)
	if err != nil {
		return nil, err
	}
	var ack HelloAck
	if err := DecodeMessage(respFrame.Payload, &ack); err != nil {
		return nil, err
	}
	if !ack.Accepted {
		return nil, perr.New(perr.KindTransport, "server rejected client protocol version")
	}
	return &Client{stream: stream}, nil
}

func roundTrip[In, Out any](c *Client, op Op, in In) (Out, error) {
	var zero Out
	payload, err := EncodeMessage(in)
	if err != nil {
		return zero, err
	}
	if err := WriteFrame(c.stream, Frame{Op: op, Payload: payload}); err != nil {
		return zero, err
	}

	resp, err := ReadFrame(c.stream)
	if err != nil {
		return zero, err
	}
	if resp.Op == opError {
		var e ErrorPayload
		if decErr := DecodeMessage(resp.Payload, &e); decErr != nil {
			return zero, decErr
		}
		return zero, perr.New(perr.Kind(e.Kind), e.Message)
	}

	var out Out
	if err := DecodeMessage(resp.Payload, &out); err != nil {
		return zero, err
	}
	return out, nil
}

func (c *Client) Index(req IndexRequest) (IndexResponse, error) {
	return roundTrip[IndexRequest, IndexResponse](c, OpIndex, req)
}

func (c *Client) Search(req SearchRequest) (SearchResponse, error) {
	return roundTrip[SearchRequest, SearchResponse](c, OpSearch, req)
}

func (c *Client) Get(req GetRequest) (GetResponse, error) {
	return roundTrip[GetRequest, GetResponse](c, OpGet, req)
}

func (c *Client) Delete(req DeleteRequest) (DeleteResponse, error) {
	return roundTrip[DeleteRequest, DeleteResponse](c, OpDelete, req)
}

func (c *Client) Stats(req StatsRequest) (StatsResponse, error) {
	return roundTrip[StatsRequest, StatsResponse](c, OpStats, req)
}

func (c *Client) ListCollections(req ListCollectionsRequest) (ListCollectionsResponse, error) {
	return roundTrip[ListCollectionsRequest, ListCollectionsResponse](c, OpListCollections, req)
}

func (c *Client) DeleteByQuery(req DeleteByQueryRequest) (DeleteByQueryResponse, error) {
	return roundTrip[DeleteByQueryRequest, DeleteByQueryResponse](c, OpDeleteByQuery, req)
}

func (c *Client) ImportByQuery(req ImportByQueryRequest) (ImportByQueryResponse, error) {
	return roundTrip[ImportByQueryRequest, ImportByQueryResponse](c, OpImportByQuery, req)
}

func (c *Client) NodeInfo(req NodeInfoRequest) (NodeInfoResponse, error) {
	return roundTrip[NodeInfoRequest, NodeInfoResponse](c, OpNodeInfo, req)
}

func (c *Client) Ping(req PingRequest) (PingResponse, error) {
	return roundTrip[PingRequest, PingResponse](c, OpPing, req)
}
