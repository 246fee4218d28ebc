package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/prismsearch/prism/internal/perr"
)

// Algorithm names the compression codec CompressedStore uses.
type Algorithm string

const (
	AlgorithmNone Algorithm = "none"
	AlgorithmLZ4  Algorithm = "lz4"
	AlgorithmZstd Algorithm = "zstd" // optionally "zstd:<level>"
)

// CompressedStore wraps any Store, compressing writes above a size
// threshold and transparently decompressing reads (spec §4.1).
type CompressedStore struct {
	inner     Store
	algorithm Algorithm
	level     int
	minSize   int
}

// NewCompressedStore parses algorithm strings like "zstd" or "zstd:7".
func NewCompressedStore(inner Store, algorithm string, minSize int) (*CompressedStore, error) {
	algo, level := Algorithm(algorithm), 0
	if strings.HasPrefix(algorithm, "zstd:") {
		algo = AlgorithmZstd
		lv, err := strconv.Atoi(strings.TrimPrefix(algorithm, "zstd:"))
		if err != nil {
			return nil, perr.Wrap(perr.KindStorageConfig, "invalid zstd level in "+algorithm, err)
		}
		level = lv
	}
	switch algo {
	case AlgorithmNone, AlgorithmLZ4, AlgorithmZstd:
	default:
		return nil, perr.New(perr.KindStorageConfig, "unknown compression algorithm: "+algorithm)
	}
	return &CompressedStore{inner: inner, algorithm: algo, level: level, minSize: minSize}, nil
}

// frame: 1-byte tag (0=raw passthrough, 1=lz4, 2=zstd) + payload. Only
// payloads >= minSize at write time are compressed; everything else is
// stored raw with the passthrough tag so small objects skip the compression
// cost; they still carry the 1-byte tag.
const (
	tagRaw byte = iota
	tagLZ4
	tagZstd
)

func (s *CompressedStore) compress(data []byte) ([]byte, error) {
	if s.algorithm == AlgorithmNone || len(data) < s.minSize {
		return append([]byte{tagRaw}, data...), nil
	}
	switch s.algorithm {
	case AlgorithmLZ4:
		var buf bytes.Buffer
		buf.WriteByte(tagLZ4)
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case AlgorithmZstd:
		var buf bytes.Buffer
		buf.WriteByte(tagZstd)
		opts := []zstd.EOption{}
		if s.level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(s.level)))
		}
		w, err := zstd.NewWriter(&buf, opts...)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return append([]byte{tagRaw}, data...), nil
	}
}

func (s *CompressedStore) decompress(framed []byte) ([]byte, error) {
	if len(framed) == 0 {
		return nil, nil
	}
	tag, payload := framed[0], framed[1:]
	switch tag {
	case tagRaw:
		return payload, nil
	case tagLZ4:
		r := lz4.NewReader(bytes.NewReader(payload))
		return io.ReadAll(r)
	case tagZstd:
		r, err := zstd.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unknown compression frame tag %d", tag)
	}
}

func (s *CompressedStore) Read(ctx context.Context, path Path) ([]byte, error) {
	framed, err := s.inner.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	data, err := s.decompress(framed)
	if err != nil {
		return nil, perr.Wrap(perr.KindStorageBackend, "decompress "+path.String(), err)
	}
	return data, nil
}

func (s *CompressedStore) Write(ctx context.Context, path Path, data []byte) error {
	framed, err := s.compress(data)
	if err != nil {
		return perr.Wrap(perr.KindStorageBackend, "compress "+path.String(), err)
	}
	return s.inner.Write(ctx, path, framed)
}

func (s *CompressedStore) Exists(ctx context.Context, path Path) (bool, error) {
	return s.inner.Exists(ctx, path)
}

func (s *CompressedStore) Delete(ctx context.Context, path Path) error {
	return s.inner.Delete(ctx, path)
}

func (s *CompressedStore) List(ctx context.Context, prefix string) ([]Path, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CompressedStore) Rename(ctx context.Context, from, to Path) error {
	return s.inner.Rename(ctx, from, to)
}

func (s *CompressedStore) Copy(ctx context.Context, from, to Path) error {
	return s.inner.Copy(ctx, from, to)
}

func (s *CompressedStore) Head(ctx context.Context, path Path) (Info, error) {
	return s.inner.Head(ctx, path)
}

func (s *CompressedStore) DeletePrefix(ctx context.Context, prefix string) error {
	return s.inner.DeletePrefix(ctx, prefix)
}

var _ Store = (*CompressedStore)(nil)
