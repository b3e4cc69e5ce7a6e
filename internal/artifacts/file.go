package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lobstat/pkg/contracts/domain"
)

const (
	tableExt = ".csv"
	metaExt  = ".meta.json"
)

// FileStore keeps artifacts below a root directory. Every artifact is a CSV
// file and a JSON sidecar; both are written to temporary files and renamed
// into place, so readers never observe a partial artifact.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

// Path returns the CSV path of key.
func (s *FileStore) Path(key domain.ArtifactKey) string {
	return filepath.Join(s.root, filepath.FromSlash(key.Path())+tableExt)
}

// Put implements Store
func (s *FileStore) Put(ctx context.Context, a *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(a.Meta.Key); err != nil {
		return err
	}

	table, meta, err := encode(a)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.Meta.Key, err)
	}

	path := s.Path(a.Meta.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	// table first: a sidecar always points at a complete table
	if err := writeAtomic(path, table); err != nil {
		return err
	}
	return writeAtomic(sidecar(path), meta)
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, key domain.ArtifactKey) (*Artifact, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path := s.Path(key)
	meta, err := os.ReadFile(sidecar(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", sidecar(path), err)
	}
	table, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	a, err := decode(table, meta)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	return a, true, nil
}

// Close implements Store
func (s *FileStore) Close() error {
	return nil
}

func sidecar(tablePath string) string {
	return tablePath[:len(tablePath)-len(tableExt)] + metaExt
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
