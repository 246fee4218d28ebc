package rpc

import (
	"context"
	"errors"
	"io"

	"github.com/prismsearch/prism/internal/perr"
)

// Stream is the minimal duplex byte stream Serve needs: a QUIC stream, a
// net.Conn, or anything else that reads and writes frames.
type Stream interface {
	io.Reader
	io.Writer
}

// Serve runs the server side of one stream's protocol: negotiate the
// version, then dispatch frames to handler until the stream closes or a
// transport error occurs (spec §4.10).
func Serve(ctx context.Context, stream Stream, handler Handler) error {
	var hello Hello
	frame, err := ReadFrame(stream)
	if err != nil {
		return err
	}
	if err := DecodeMessage(frame.Payload, &hello); err != nil {
		return err
	}

	ack := HelloAck{ServerVersion: ProtocolVersion, MinVersion: MinSupportedVersion}
	ack.Accepted = hello.Version >= MinSupportedVersion
	ackPayload, err := EncodeMessage(ack)
	if err != nil {
		return err
	}
	if err := WriteFrame(stream, Frame{Op: OpPing, Payload: ackPayload}); err != nil {
		return err
	}
	if !ack.Accepted {
		return perr.New(perr.KindTransport, "client protocol version below minimum supported")
	}

	for {
		req, err := ReadFrame(stream)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		resp, respErr := dispatch(ctx, handler, req)
		if respErr != nil {
			resp = errorFrame(respErr)
		}
		if err := WriteFrame(stream, resp); err != nil {
			return err
		}
	}
}

func errorFrame(err error) Frame {
	payload, _ := EncodeMessage(ErrorPayload{Message: err.Error(), Kind: string(perr.KindOf(err))})
	return Frame{Op: opError, Payload: payload}
}

// opError is a sentinel opcode the server uses on the response side only,
// signaling the client to decode an ErrorPayload instead of the op's
// normal response type.
const opError Op = 0xFF

// ErrorPayload is the response body for opError.
type ErrorPayload struct {
	Message string
	Kind    string
}

func dispatch(ctx context.Context, h Handler, req Frame) (Frame, error) {
	switch req.Op {
	case OpIndex:
		return call(ctx, req, h.Index)
	case OpSearch:
		return call(ctx, req, h.Search)
	case OpGet:
		return call(ctx, req, h.Get)
	case OpDelete:
		return call(ctx, req, h.Delete)
	case OpStats:
		return call(ctx, req, h.Stats)
	case OpListCollections:
		return call(ctx, req, h.ListCollections)
	case OpDeleteByQuery:
		return call(ctx, req, h.DeleteByQuery)
	case OpImportByQuery:
		return call(ctx, req, h.ImportByQuery)
	case OpNodeInfo:
		return call(ctx, req, h.NodeInfo)
	case OpPing:
		return call(ctx, req, h.Ping)
	default:
		return Frame{}, perr.New(perr.KindInvalidQuery, "unknown rpc opcode")
	}
}

// call decodes req's payload into a fresh In, invokes fn, and encodes the
// result back into a response Frame tagged with req.Op.
func call[In, Out any](ctx context.Context, req Frame, fn func(context.Context, In) (Out, error)) (Frame, error) {
	var in In
	if err := DecodeMessage(req.Payload, &in); err != nil {
		return Frame{}, err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return Frame{}, err
	}
	payload, err := EncodeMessage(out)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Op: req.Op, Payload: payload}, nil
}
