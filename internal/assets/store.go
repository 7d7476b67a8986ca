package assets

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/zeebo/blake3"
)

// ErrNotFound is returned by Get for paths absent from the store.
var ErrNotFound = errors.New("asset not found")

// Asset is one immutable file of the bundle.
type Asset struct {
	Path     string
	Contents []byte
	// ETag is the quoted BLAKE3-256 digest of Contents.
	ETag string
}

// Store is a read-only map from relative path to Asset. It is built once
// and never mutated, so it is safe for concurrent use without locking.
type Store struct {
	assets map[string]Asset
}

// NewStore builds a store from path/content pairs. Paths must be
// slash-separated, relative and free of "." and ".." elements.
func NewStore(files map[string][]byte) (*Store, error) {
	s := &Store{assets: make(map[string]Asset, len(files))}
	for p, contents := range files {
		if !ValidPath(p) {
			return nil, fmt.Errorf("invalid asset path %q", p)
		}
		sum := blake3.Sum256(contents)
		s.assets[p] = Asset{
			Path:     p,
			Contents: contents,
			ETag:     `"` + hex.EncodeToString(sum[:]) + `"`,
		}
	}
	return s, nil
}

// FromFS loads every regular file of fsys. It is meant for embed.FS
// bundles, usually rooted with fs.Sub.
func FromFS(fsys fs.FS) (*Store, error) {
	files := make(map[string][]byte)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		files[p] = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	return NewStore(files)
}

// ValidPath reports whether p is usable as a store key.
func ValidPath(p string) bool {
	return p != "." && fs.ValidPath(p)
}

// Get returns the asset stored under exactly p.
func (s *Store) Get(p string) (Asset, error) {
	a, ok := s.assets[p]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return a, nil
}

// Len is the number of assets.
func (s *Store) Len() int { return len(s.assets) }

// Paths lists every key in lexical order.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.assets))
	for p := range s.assets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
