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

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	auditMu sync.Mutex // Serializes audit writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS training_modules (
		id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		content_kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		outcome TEXT NOT NULL,
		remote_ip TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_auth_events_created ON auth_events(created_at);
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

// ListModules returns the training catalog ordered by position.
func (s *SQLiteStore) ListModules(ctx context.Context) ([]domain.TrainingModule, error) {
	query := `
		SELECT id, title, category, progress, status, content_kind
		FROM training_modules ORDER BY position, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query training modules: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close training module rows", "error", closeErr)
		}
	}()

	var modules []domain.TrainingModule
	for rows.Next() {
		var m domain.TrainingModule
		var status, kind string
		if err := rows.Scan(&m.ID, &m.Title, &m.Category, &m.Progress, &status, &kind); err != nil {
			return nil, fmt.Errorf("scan training module row: %w", err)
		}
		m.Status = domain.ModuleStatus(status)
		m.ContentKind = domain.ContentKind(kind)
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training modules: %w", err)
	}
	return modules, nil
}

// SeedModules inserts modules only when the catalog table is empty.
func (s *SQLiteStore) SeedModules(ctx context.Context, modules []domain.TrainingModule) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Warn("failed to roll back seed transaction", "error", rbErr)
		}
	}()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_modules`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count training modules: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	query := `
	INSERT INTO training_modules (id, position, title, category, progress, status, content_kind)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	for i, m := range modules {
		if _, err := tx.ExecContext(ctx, query,
			m.ID, i, m.Title, m.Category, m.Progress, string(m.Status), string(m.ContentKind),
		); err != nil {
			return 0, fmt.Errorf("insert training module %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}
	return len(modules), nil
}

// RecordAuthEvent appends a login attempt. SQLITE_BUSY errors are retried
// with exponential backoff.
func (s *SQLiteStore) RecordAuthEvent(ctx context.Context, event domain.AuthEvent) error {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO auth_events (email, outcome, remote_ip, created_at) VALUES (?, ?, ?, ?)`
	err := shared.RetryOnConflict(ctx, 3, 50*time.Millisecond, func() error {
		_, err := s.db.ExecContext(ctx, query,
			event.Email, string(event.Outcome), event.RemoteIP, createdAt.UnixMilli(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// RecentAuthEvents returns the latest audit entries, newest first.
func (s *SQLiteStore) RecentAuthEvents(ctx context.Context, limit int) ([]domain.AuthEvent, error) {
	query := `
		SELECT email, outcome, COALESCE(remote_ip, ''), created_at
		FROM auth_events ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query auth events: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close auth event rows", "error", closeErr)
		}
	}()

	var events []domain.AuthEvent
	for rows.Next() {
		var e domain.AuthEvent
		var outcome string
		var createdAt int64
		if err := rows.Scan(&e.Email, &outcome, &e.RemoteIP, &createdAt); err != nil {
			return nil, fmt.Errorf("scan auth event row: %w", err)
		}
		e.Outcome = domain.AuthOutcome(outcome)
		e.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth events: %w", err)
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
