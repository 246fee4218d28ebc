package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prismsearch/prism/internal/perr"
)

// LocalStore is the filesystem-backed Store variant (spec §4.1). Writes
// create any missing prefix directories; Rename is atomic (os.Rename lives
// on the same filesystem by construction — Root is a single directory
// tree) so the copy+delete fallback other variants need never triggers
// here.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: filepath.Clean(root)}
}

func (s *LocalStore) abs(relOrPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relOrPath))
}

func (s *LocalStore) Read(_ context.Context, path Path) ([]byte, error) {
	data, err := os.ReadFile(s.abs(path.String()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotFound(path)
		}
		if os.IsPermission(err) {
			return nil, perr.Wrap(perr.KindStoragePermission, "read "+path.String(), err)
		}
		return nil, perr.Wrap(perr.KindStorageBackend, "read "+path.String(), err)
	}
	return data, nil
}

func (s *LocalStore) Write(_ context.Context, path Path, data []byte) error {
	full := s.abs(path.String())
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return perr.Wrap(perr.KindStorageBackend, "mkdir for "+path.String(), err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		if os.IsPermission(err) {
			return perr.Wrap(perr.KindStoragePermission, "write "+path.String(), err)
		}
		return perr.Wrap(perr.KindStorageBackend, "write "+path.String(), err)
	}
	return nil
}

func (s *LocalStore) Exists(_ context.Context, path Path) (bool, error) {
	_, err := os.Stat(s.abs(path.String()))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, perr.Wrap(perr.KindStorageBackend, "stat "+path.String(), err)
}

func (s *LocalStore) Delete(_ context.Context, path Path) error {
	if err := os.Remove(s.abs(path.String())); err != nil {
		if os.IsNotExist(err) {
			return errNotFound(path)
		}
		return perr.Wrap(perr.KindStorageBackend, "delete "+path.String(), err)
	}
	return nil
}

func (s *LocalStore) List(_ context.Context, prefix string) ([]Path, error) {
	base := s.abs(prefix)
	var out []Path
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == base {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(s.root, p)
		if rerr != nil {
			return rerr
		}
		parsed, perr2 := ParsePath(filepath.ToSlash(rel))
		if perr2 != nil {
			return nil // skip non-path files (e.g. stray artifacts)
		}
		out = append(out, parsed)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, perr.Wrap(perr.KindStorageBackend, "list "+prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *LocalStore) Rename(_ context.Context, from, to Path) error {
	dst := s.abs(to.String())
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return perr.Wrap(perr.KindStorageBackend, "mkdir for "+to.String(), err)
	}
	if err := os.Rename(s.abs(from.String()), dst); err != nil {
		if os.IsNotExist(err) {
			return errNotFound(from)
		}
		return perr.Wrap(perr.KindStorageBackend, "rename "+from.String()+" -> "+to.String(), err)
	}
	return nil
}

func (s *LocalStore) Copy(ctx context.Context, from, to Path) error {
	data, err := s.Read(ctx, from)
	if err != nil {
		return err
	}
	return s.Write(ctx, to, data)
}

func (s *LocalStore) Head(_ context.Context, path Path) (Info, error) {
	fi, err := os.Stat(s.abs(path.String()))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{Path: path, Exists: false}, nil
		}
		return Info{}, perr.Wrap(perr.KindStorageBackend, "head "+path.String(), err)
	}
	return Info{Path: path, Size: fi.Size(), Exists: true}, nil
}

func (s *LocalStore) DeletePrefix(_ context.Context, prefix string) error {
	base := s.abs(prefix)
	if !strings.HasPrefix(filepath.Clean(base), filepath.Clean(s.root)) {
		return errInvalidPath("prefix escapes storage root: " + prefix)
	}
	if err := os.RemoveAll(base); err != nil {
		return perr.Wrap(perr.KindStorageBackend, "delete_prefix "+prefix, err)
	}
	return nil
}

var _ Store = (*LocalStore)(nil)
