package storage

import (
	"github.com/prismsearch/prism/internal/cfg"
	"github.com/prismsearch/prism/internal/perr"
)

// New builds a Store tree from the §6 storage config, following the
// teacher's NewStore factory shape (contextd/internal/vectorstore/factory.go)
// of switching on the configured variant and composing wrappers.
func New(c cfg.StorageConfig, remoteClient ObjectClient) (Store, error) {
	switch {
	case c.Local != nil:
		return NewLocalStore(c.Local.Path), nil
	case c.Remote != nil:
		if remoteClient == nil {
			return nil, perr.New(perr.KindStorageConfig, "remote storage configured without an ObjectClient")
		}
		return NewRemoteStore(RemoteConfig{
			Bucket:         c.Remote.Bucket,
			Region:         c.Remote.Region,
			Endpoint:       c.Remote.Endpoint,
			ForcePathStyle: c.Remote.ForcePathStyle,
			Credentials:    c.Remote.Credentials,
		}, remoteClient), nil
	case c.Cached != nil:
		if c.Cached.L2 == nil {
			return nil, perr.New(perr.KindStorageConfig, "cached storage requires an l2 config")
		}
		l2, err := New(*c.Cached.L2, remoteClient)
		if err != nil {
			return nil, err
		}
		l1 := NewLocalStore(c.Cached.L1Path)
		maxBytes := int64(c.Cached.L1MaxSizeGB * 1024 * 1024 * 1024)
		return NewCachedStore(l1, l2, maxBytes), nil
	case c.Compressed != nil:
		if c.Compressed.Inner == nil {
			return nil, perr.New(perr.KindStorageConfig, "compressed storage requires an inner config")
		}
		inner, err := New(*c.Compressed.Inner, remoteClient)
		if err != nil {
			return nil, err
		}
		return NewCompressedStore(inner, c.Compressed.Algorithm, c.Compressed.MinSize)
	default:
		return nil, perr.New(perr.KindStorageConfig, "no storage variant configured")
	}
}
