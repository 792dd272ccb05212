package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLite is a Store persisted to a SQLite database, so a cache survives
// process restarts. Use "file::memory:?cache=shared" for an in-memory
// database.
type SQLite struct {
	db           *sql.DB
	writeMutex   sync.Mutex
	maxSize      int64
	maxEntrySize int64
}

// NewSQLite opens (and if needed initializes) the given database file.
func NewSQLite(filename string, maxSize, maxEntrySize int64) (*SQLite, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS cache (key TEXT PRIMARY KEY, expires INTEGER, entry BLOB)",
		"CREATE INDEX IF NOT EXISTS expires_idx ON cache (expires)",
		"PRAGMA journal_mode=WAL",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, err
		}
	}
	return &SQLite{db: db, maxSize: maxSize, maxEntrySize: maxEntrySize}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (Entry, bool, error) {
	var expires int64
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT expires, entry FROM cache WHERE key = ?", key).
		Scan(&expires, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	if time.Now().After(time.Unix(expires, 0)) {
		_ = s.Remove(ctx, key)
		return Entry{}, false, nil
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s *SQLite) Put(ctx context.Context, entry Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if s.maxEntrySize > 0 && int64(len(data)) > s.maxEntrySize {
		return nil
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	expires := entry.StoredAt.Add(entry.Lifetime).Unix()
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (key, expires, entry) VALUES (?, ?, ?)",
		entry.Key, expires, data)
	if err != nil {
		return err
	}
	return s.trim(ctx)
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
	return err
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// trim deletes expired rows, then the soonest-expiring rows until the
// total size is under budget. Callers must hold the write mutex.
func (s *SQLite) trim(ctx context.Context) error {
	if s.maxSize <= 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache WHERE expires < ?", time.Now().Unix()); err != nil {
		return err
	}
	for {
		var total sql.NullInt64
		if err := s.db.QueryRowContext(ctx, "SELECT SUM(LENGTH(entry)) FROM cache").Scan(&total); err != nil {
			return err
		}
		if !total.Valid || total.Int64 <= s.maxSize {
			return nil
		}
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM cache WHERE key IN (SELECT key FROM cache ORDER BY expires ASC LIMIT 1)"); err != nil {
			return err
		}
	}
}
