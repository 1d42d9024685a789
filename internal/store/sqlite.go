package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex // serializes writes to prevent SQLITE_BUSY
	now func() time.Time
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS participant_sessions (
		session_id TEXT PRIMARY KEY,
		data_json TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_participant_sessions_expires ON participant_sessions(expires_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load retrieves a session. Expired rows are deleted and reported as absent.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*domain.Participant, error) {
	query := `SELECT data_json, expires_at FROM participant_sessions WHERE session_id = ?`

	var data string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant session: %w", err)
	}

	if !s.now().Before(time.Unix(expiresAt, 0)) {
		if err := s.Clear(ctx, id); err != nil {
			slog.Warn("failed to delete expired participant session", "session_id", id, "error", err)
		}
		return nil, nil
	}

	return decodeParticipant([]byte(data))
}

// Save creates or replaces a session.
func (s *SQLiteStore) Save(ctx context.Context, id string, p *domain.Participant) error {
	data, err := encodeParticipant(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO participant_sessions (session_id, data_json, expires_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		data_json = excluded.data_json,
		expires_at = excluded.expires_at,
		updated_at = excluded.updated_at`

	now := s.now()
	_, err = s.db.ExecContext(ctx, query,
		id, string(data), p.ExpiresAt.Unix(),
		p.CreatedAt.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert participant session: %w", err)
	}
	return nil
}

// Clear removes a session.
// Retries with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) Clear(ctx context.Context, id string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.clearOnce(ctx, id)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("Clear failed with SQLITE_BUSY, retrying",
				"session_id", id,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("failed to clear participant session %s after %d attempts: %w", id, i+1, err)
	}

	return nil
}

func (s *SQLiteStore) clearOnce(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM participant_sessions WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete participant session: %w", err)
	}
	return nil
}

// PurgeExpired removes every session whose lifetime has elapsed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM participant_sessions WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
