package storage

import (
	"context"

	"github.com/prismsearch/prism/internal/perr"
)

// Info is returned by Head: existence plus size, without reading the body.
type Info struct {
	Path   Path
	Size   int64
	Exists bool
}

// Store is the core's byte-addressable object store contract. Every method
// is a suspension point (spec §5) — implementations must treat ctx
// cancellation as first-class.
type Store interface {
	Read(ctx context.Context, path Path) ([]byte, error)
	Write(ctx context.Context, path Path, data []byte) error
	Exists(ctx context.Context, path Path) (bool, error)
	Delete(ctx context.Context, path Path) error
	List(ctx context.Context, prefix string) ([]Path, error)
	Rename(ctx context.Context, from, to Path) error
	Copy(ctx context.Context, from, to Path) error
	Head(ctx context.Context, path Path) (Info, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

func errNotFound(path Path) error {
	return perr.New(perr.KindStorageNotFound, "path not found: "+path.String())
}

func errInvalidPath(reason string) error {
	return perr.New(perr.KindStorageInvalidPath, reason)
}
