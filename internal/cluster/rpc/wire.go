// Package rpc implements the cluster wire protocol (spec §4.10, §6):
// length-prefixed binary frames carrying JSON-encoded request/response
// payloads over a QUIC stream, with protocol-version negotiation.
package rpc

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/prismsearch/prism/internal/perr"
)

// ProtocolVersion is this build's wire protocol version.
const ProtocolVersion uint32 = 1

// MinSupportedVersion is the oldest client version this server accepts.
// A client below it is rejected during the handshake (spec §4.10: "client
// sends its version, server rejects below its minimum").
const MinSupportedVersion uint32 = 1

// maxFrameSize bounds a single frame's payload so a malformed or hostile
// peer can't force an unbounded allocation.
const maxFrameSize = 64 << 20 // 64MiB

// Op identifies the operation a frame carries (spec §4.10).
type Op byte

const (
	OpPing Op = iota + 1
	OpIndex
	OpSearch
	OpGet
	OpDelete
	OpStats
	OpListCollections
	OpDeleteByQuery
	OpImportByQuery
	OpNodeInfo
)

// Frame is one length-prefixed wire message: a 1-byte opcode followed by
// its JSON-encoded payload.
type Frame struct {
	Op      Op
	Payload []byte
}

// WriteFrame writes f as [4-byte big-endian length][1-byte op][payload].
// length counts the op byte plus the payload.
func WriteFrame(w io.Writer, f Frame) error {
	length := uint32(len(f.Payload) + 1)
	header := make([]byte, 5)
	binary.BigEndian.PutUint32(header[:4], length)
	header[4] = byte(f.Op)
	if _, err := w.Write(header); err != nil {
		return perr.Wrap(perr.KindTransport, "write frame header", err)
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return perr.Wrap(perr.KindTransport, "write frame payload", err)
		}
	}
	return nil
}

// ReadFrame reads one frame written by WriteFrame.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, perr.Wrap(perr.KindTransport, "read frame header", err)
	}
	length := binary.BigEndian.Uint32(header[:4])
	if length == 0 {
		return Frame{}, perr.New(perr.KindTransport, "frame has zero length (missing opcode)")
	}
	if length > maxFrameSize {
		return Frame{}, perr.New(perr.KindTransport, "frame exceeds max size")
	}

	op := Op(header[4])
	payload := make([]byte, length-1)
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, perr.Wrap(perr.KindTransport, "read frame payload", err)
		}
	}
	return Frame{Op: op, Payload: payload}, nil
}

// EncodeMessage JSON-encodes v for use as a Frame payload.
func EncodeMessage(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, perr.Wrap(perr.KindSerialization, "encode rpc message", err)
	}
	return b, nil
}

// DecodeMessage decodes a Frame payload into v.
func DecodeMessage(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return perr.Wrap(perr.KindSerialization, "decode rpc message", err)
	}
	return nil
}

// Hello is the first frame a client sends on a new stream, negotiating
// the protocol version before any operation frame.
type Hello struct {
	Version uint32
}

// HelloAck is the server's response to Hello: Accepted is false when the
// client's version is below MinSupportedVersion.
type HelloAck struct {
	Accepted       bool
	ServerVersion  uint32
	MinVersion     uint32
}
