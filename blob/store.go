package blob

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

const artifactExt = ".vec"

// Store is a filesystem artifact store. Artifact locations are derived
// deterministically from the full cache key with two levels of hex fan-out;
// the chunking parameters are part of the file name because the same content
// chunked differently produces different vectors:
//
//	<root>/ab/cd/abcdef...-1024-128.vec
type Store struct {
	root   string
	logger *slog.Logger
}

var _ storage.ArtifactStore = (*Store)(nil)

// NewStore creates a filesystem artifact store rooted at root.
// Creates the directory if it doesn't exist.
func NewStore(root string) (storage.ArtifactStore, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact root required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &Store{
		root:   root,
		logger: slog.Default().With("component", "blob-store"),
	}, nil
}

// Path returns the deterministic location for a key.
func (s *Store) Path(key core.CacheKey) string {
	hex := key.ContentHash.String()
	name := fmt.Sprintf("%s-%d-%d%s", hex, key.ChunkSize, key.ChunkOverlap, artifactExt)
	return filepath.Join(s.root, hex[0:2], hex[2:4], name)
}

// Write persists data at the key's location. The write goes to a
// temporary file first and is renamed into place, so readers never observe
// a partial artifact.
func (s *Store) Write(key core.CacheKey, data []byte) (string, error) {
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// Open opens a stored artifact for reading.
func (s *Store) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Exists reports whether the artifact file is present.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Delete removes the artifact file. A missing artifact is not an error.
func (s *Store) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Sweep walks the store and removes artifact files the known predicate does
// not recognize. Used by the orphaned-artifact maintenance operation.
func (s *Store) Sweep(known func(path string) bool) (int, error) {
	removed := 0
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != artifactExt {
			return nil
		}
		if known(path) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove orphaned artifact", "path", path, "err", err)
			return nil
		}
		s.logger.Info("removed orphaned artifact", "path", path)
		removed++
		return nil
	})
	return removed, err
}
