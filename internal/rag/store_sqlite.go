package rag

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	created_at  TEXT    NOT NULL,
	entry_count INTEGER NOT NULL,
	dimensions  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_entries (
	position  INTEGER PRIMARY KEY,
	title     TEXT NOT NULL,
	url       TEXT NOT NULL,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);`

// SQLiteStore keeps the snapshot in a SQLite database. A save replaces every row
// inside one transaction, so concurrent readers see either the old or the new snapshot.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path. An existing
// file that SQLite cannot open as a database is reported as ErrCacheCorrupt.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	info, statErr := os.Stat(path)
	existing := statErr == nil && info.Size() > 0

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		if existing {
			return nil, fmt.Errorf("%w: %s: %w", ErrCacheCorrupt, path, err)
		}
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the snapshot. An empty database is reported as ok=false.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var createdAt string
	var count, dims int
	err = tx.QueryRowContext(ctx, `SELECT created_at, entry_count, dimensions FROM snapshot_meta WHERE id = 1`).
		Scan(&createdAt, &count, &dims)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading snapshot metadata: %w", ErrCacheCorrupt, err)
	}
	if createdAt == "" {
		return nil, false, fmt.Errorf("%w: snapshot metadata has no created_at", ErrCacheCorrupt)
	}

	rows, err := tx.QueryContext(ctx, `SELECT position, title, url, text, embedding FROM snapshot_entries ORDER BY position`)
	if err != nil {
		return nil, false, fmt.Errorf("%w: querying snapshot entries: %w", ErrCacheCorrupt, err)
	}
	defer rows.Close()

	texts := make([]string, 0, count)
	titles := make([]string, 0, count)
	urls := make([]string, 0, count)
	embeddings := make([][]float64, 0, count)
	for rows.Next() {
		var position int
		var title, url, text string
		var blob []byte
		if err := rows.Scan(&position, &title, &url, &text, &blob); err != nil {
			return nil, false, fmt.Errorf("%w: scanning snapshot entry: %w", ErrCacheCorrupt, err)
		}
		if position != len(texts) {
			return nil, false, fmt.Errorf("%w: entry at position %d, expected %d", ErrCacheCorrupt, position, len(texts))
		}
		vec, err := bytesToFloat64Slice(blob)
		if err != nil {
			return nil, false, fmt.Errorf("%w: entry %d: %w", ErrCacheCorrupt, position, err)
		}
		texts = append(texts, text)
		titles = append(titles, title)
		urls = append(urls, url)
		embeddings = append(embeddings, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: reading snapshot entries: %w", ErrCacheCorrupt, err)
	}
	if len(texts) != count {
		return nil, false, fmt.Errorf("%w: metadata lists %d entries, found %d", ErrCacheCorrupt, count, len(texts))
	}

	snap, err := NewSnapshot(texts, embeddings, titles, urls, createdAt)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	if snap.Dimensions() != dims {
		return nil, false, fmt.Errorf("%w: metadata lists %d dimensions, found %d", ErrCacheCorrupt, dims, snap.Dimensions())
	}
	return snap, true, nil
}

// Save replaces the stored snapshot.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("save embedding cache: snapshot is nil")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_entries`); err != nil {
		return fmt.Errorf("clearing snapshot entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_entries (position, title, url, text, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range snap.texts {
		if _, err := stmt.ExecContext(ctx, i, snap.titles[i], snap.urls[i], snap.texts[i], float64SliceToBytes(snap.embeddings[i])); err != nil {
			return fmt.Errorf("saving snapshot entry %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, created_at, entry_count, dimensions) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			entry_count = excluded.entry_count,
			dimensions = excluded.dimensions
	`, snap.createdAt, snap.Len(), snap.Dimensions())
	if err != nil {
		return fmt.Errorf("saving snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// float64SliceToBytes encodes a vector losslessly as little-endian IEEE 754 values.
func float64SliceToBytes(floats []float64) []byte {
	buf := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func bytesToFloat64Slice(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes, not a multiple of 8", len(data))
	}
	floats := make([]float64, len(data)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return floats, nil
}
