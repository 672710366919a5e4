package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/repository"
)

var _ repository.SnapshotStore = (*FileStore)(nil)

// FileStore keeps one JSON document per position under dir, named <key>.json.
// Documents are indented with two spaces, keys sorted, text left unescaped.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key model.PositionKey) string {
	return filepath.Join(s.dir, string(key)+".json")
}

func (s *FileStore) Read(ctx context.Context, key model.PositionKey) ([]model.Listing, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	var listings []model.Listing
	if err := json.Unmarshal(b, &listings); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	for i := range listings {
		listings[i].Category = key
	}
	return listings, nil
}

// Write replaces the snapshot of key. The document is written to a temporary
// file first and renamed, so readers never observe a half-written file.
func (s *FileStore) Write(ctx context.Context, key model.PositionKey, listings []model.Listing) error {
	if listings == nil {
		listings = []model.Listing{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", key, err)
	}
	return nil
}
