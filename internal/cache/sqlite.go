package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	_ "modernc.org/sqlite"
)

// busyPragma gives every connection a 5s busy timeout.
const busyPragma = "_pragma=busy_timeout(5000)"

// SQLite keeps cache entries in a local database file so they survive
// between CLI invocations.
type SQLite struct {
	readDB  *sql.DB
	writeDB *sql.DB
	clock   clock.Clock
}

func OpenSQLite(dbPath string, c clock.Clock) (*SQLite, error) {
	if c == nil {
		c = clock.Real()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath+"?"+busyPragma)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro&"+busyPragma)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &SQLite{readDB: readDB, writeDB: writeDB, clock: c}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	// WAL lets the read handle run alongside the single writer.
	if _, err := s.writeDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := s.writeDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

func (s *SQLite) Get(ctx context.Context, key string) ([]alert.Alert, bool, error) {
	var (
		raw       string
		expiresAt int64
	)
	err := s.readDB.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	if s.clock.Now().UnixNano() >= expiresAt {
		if _, err := s.writeDB.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE key = ? AND expires_at = ?", key, expiresAt,
		); err != nil {
			return nil, false, fmt.Errorf("expiring cache entry %s: %w", key, err)
		}
		return nil, false, nil
	}

	var value []alert.Alert
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []alert.Alert, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	_, err = s.writeDB.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, string(data), s.clock.Now().Add(ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Prune deletes every expired entry and returns how many were removed.
func (s *SQLite) Prune(ctx context.Context) (int64, error) {
	res, err := s.writeDB.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at <= ?", s.clock.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the number of stored entries and the on-disk size of the
// database including its write-ahead log.
func (s *SQLite) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM cache_entries").Scan(&count); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	size := info.Size()
	if wal, err := os.Stat(dbPath + "-wal"); err == nil {
		size += wal.Size()
	}
	return count, size, nil
}

// LastGather returns when the last gather cycle finished.
func (s *SQLite) LastGather() (time.Time, error) {
	var value string
	if err := s.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_gather'").Scan(&value); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

func (s *SQLite) SetLastGather(t time.Time) error {
	return s.setMeta("last_gather", t.UTC().Format(time.RFC3339))
}

func (s *SQLite) setMeta(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
