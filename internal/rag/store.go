package rag

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store persists a single snapshot. Load reports ok=false when nothing has been saved.
type Store interface {
	Load(ctx context.Context) (snap *Snapshot, ok bool, err error)
	Save(ctx context.Context, snap *Snapshot) error
}

// snapshotFile is the on-disk shape of a FileStore payload.
type snapshotFile struct {
	Texts      []string    `json:"texts"`
	Embeddings [][]float64 `json:"embeddings"`
	Titles     []string    `json:"titles"`
	URLs       []string    `json:"urls"`
	CreatedAt  string      `json:"created_at"`
}

// FileStore keeps the snapshot as a JSON document next to a plain-text timestamp file.
type FileStore struct {
	path          string
	timestampPath string
}

// NewFileStore returns a store writing the payload to path and the "as of" line to timestampPath.
func NewFileStore(path, timestampPath string) *FileStore {
	return &FileStore{path: path, timestampPath: timestampPath}
}

// Path returns the payload location.
func (s *FileStore) Path() string { return s.path }

// Load reads the snapshot. A missing payload file is reported as ok=false.
func (s *FileStore) Load(ctx context.Context) (*Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open embedding cache: %w", err)
	}
	defer file.Close()

	var payload snapshotFile
	decoder := json.NewDecoder(bufio.NewReader(file))
	if err := decoder.Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %w", ErrCacheCorrupt, s.path, err)
	}
	if payload.Texts == nil || payload.Embeddings == nil || payload.Titles == nil || payload.URLs == nil {
		return nil, false, fmt.Errorf("%w: %s is missing one of texts, embeddings, titles, urls", ErrCacheCorrupt, s.path)
	}

	createdAt := payload.CreatedAt
	if createdAt == "" {
		createdAt, err = s.readTimestamp()
		if err != nil {
			return nil, false, err
		}
	}
	if createdAt == "" {
		return nil, false, fmt.Errorf("%w: %s has no created_at and no timestamp file", ErrCacheCorrupt, s.path)
	}

	snap, err := NewSnapshot(payload.Texts, payload.Embeddings, payload.Titles, payload.URLs, createdAt)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCacheCorrupt, s.path, err)
	}
	return snap, true, nil
}

func (s *FileStore) readTimestamp() (string, error) {
	if s.timestampPath == "" {
		return "", nil
	}
	raw, err := os.ReadFile(s.timestampPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read embedding timestamp: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save stages the payload and the timestamp file as temporary siblings before
// publishing either. The timestamp is renamed first and the payload last, so a
// failed save never leaves a new payload in place.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("save embedding cache: snapshot is nil")
	}
	payload := snapshotFile{
		Texts:      snap.texts,
		Embeddings: snap.embeddings,
		Titles:     snap.titles,
		URLs:       snap.urls,
		CreatedAt:  snap.createdAt,
	}
	payloadTmp, err := stageFile(s.path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		return encoder.Encode(payload)
	})
	if err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}

	if s.timestampPath != "" {
		stampTmp, err := stageFile(s.timestampPath, func(w io.Writer) error {
			_, err := io.WriteString(w, snap.createdAt)
			return err
		})
		if err != nil {
			_ = os.Remove(payloadTmp)
			return fmt.Errorf("write embedding timestamp: %w", err)
		}
		if err := os.Rename(stampTmp, s.timestampPath); err != nil {
			_ = os.Remove(stampTmp)
			_ = os.Remove(payloadTmp)
			return fmt.Errorf("write embedding timestamp: %w", err)
		}
	}

	if err := os.Rename(payloadTmp, s.path); err != nil {
		_ = os.Remove(payloadTmp)
		return fmt.Errorf("write embedding cache: %w", err)
	}
	return nil
}

// stageFile writes a synced temporary sibling of path and returns its name.
// The caller renames it into place or removes it.
func stageFile(path string, write func(io.Writer) error) (name string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	writer := bufio.NewWriter(tmp)
	if err = write(writer); err != nil {
		return "", err
	}
	if err = writer.Flush(); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}
