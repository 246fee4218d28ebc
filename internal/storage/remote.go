package storage

import (
	"context"
	"sync"

	"github.com/prismsearch/prism/internal/perr"
)

// RemoteConfig mirrors the §6 remote storage config surface: bucket/region
// object-store coordinates plus optional path-style and credential
// overrides. It is shaped after the teacher's QdrantConfig host/port/
// collection fields (contextd/internal/vectorstore/qdrant.go), generalized
// to an arbitrary object-store endpoint.
type RemoteConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	Credentials    map[string]string
}

// ObjectClient is the minimal transport an object-store SDK must satisfy for
// RemoteStore to drive it. The concrete SDK (S3, GCS, ...) is out of scope
// per spec.md §1; RemoteStore here is the adapter any such SDK plugs into.
type ObjectClient interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
	HeadObject(ctx context.Context, key string) (size int64, exists bool, err error)
	DeleteObject(ctx context.Context, key string) error
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	CopyObject(ctx context.Context, from, to string) error
}

// RemoteStore adapts an ObjectClient to the Store contract.
type RemoteStore struct {
	cfg    RemoteConfig
	client ObjectClient
	mu     sync.Mutex
}

func NewRemoteStore(cfg RemoteConfig, client ObjectClient) *RemoteStore {
	return &RemoteStore{cfg: cfg, client: client}
}

func (s *RemoteStore) Read(ctx context.Context, path Path) ([]byte, error) {
	data, err := s.client.GetObject(ctx, path.String())
	if err != nil {
		return nil, perr.Wrap(perr.KindStorageBackend, "remote read "+path.String(), err)
	}
	if data == nil {
		return nil, errNotFound(path)
	}
	return data, nil
}

func (s *RemoteStore) Write(ctx context.Context, path Path, data []byte) error {
	if err := s.client.PutObject(ctx, path.String(), data); err != nil {
		return perr.Wrap(perr.KindStorageBackend, "remote write "+path.String(), err)
	}
	return nil
}

func (s *RemoteStore) Exists(ctx context.Context, path Path) (bool, error) {
	_, exists, err := s.client.HeadObject(ctx, path.String())
	if err != nil {
		return false, perr.Wrap(perr.KindStorageBackend, "remote head "+path.String(), err)
	}
	return exists, nil
}

func (s *RemoteStore) Delete(ctx context.Context, path Path) error {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return errNotFound(path)
	}
	if err := s.client.DeleteObject(ctx, path.String()); err != nil {
		return perr.Wrap(perr.KindStorageBackend, "remote delete "+path.String(), err)
	}
	return nil
}

func (s *RemoteStore) List(ctx context.Context, prefix string) ([]Path, error) {
	keys, err := s.client.ListObjects(ctx, prefix)
	if err != nil {
		return nil, perr.Wrap(perr.KindStorageBackend, "remote list "+prefix, err)
	}
	out := make([]Path, 0, len(keys))
	for _, k := range keys {
		p, perr2 := ParsePath(k)
		if perr2 != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RemoteStore) Rename(ctx context.Context, from, to Path) error {
	// Most object stores have no atomic rename; copy+delete per §4.1.
	if err := s.Copy(ctx, from, to); err != nil {
		return err
	}
	return s.Delete(ctx, from)
}

func (s *RemoteStore) Copy(ctx context.Context, from, to Path) error {
	if err := s.client.CopyObject(ctx, from.String(), to.String()); err != nil {
		return perr.Wrap(perr.KindStorageBackend, "remote copy "+from.String()+" -> "+to.String(), err)
	}
	return nil
}

func (s *RemoteStore) Head(ctx context.Context, path Path) (Info, error) {
	size, exists, err := s.client.HeadObject(ctx, path.String())
	if err != nil {
		return Info{}, perr.Wrap(perr.KindStorageBackend, "remote head "+path.String(), err)
	}
	return Info{Path: path, Size: size, Exists: exists}, nil
}

func (s *RemoteStore) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := s.client.ListObjects(ctx, prefix)
	if err != nil {
		return perr.Wrap(perr.KindStorageBackend, "remote list for delete_prefix "+prefix, err)
	}
	for _, k := range keys {
		if err := s.client.DeleteObject(ctx, k); err != nil {
			return perr.Wrap(perr.KindStorageBackend, "remote delete_prefix "+k, err)
		}
	}
	return nil
}

var _ Store = (*RemoteStore)(nil)
