// Package history records generation runs in a local SQLite database so
// users can see what was generated, when, and from which source.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Run is one recorded generation run.
type Run struct {
	ID                 string
	CreatedAt          time.Time
	Description        string
	NeedsPopup         bool
	NeedsContentScript bool
	NeedsBackground    bool
	NeedsCSS           bool
	Permissions        []string
	Features           []string
	Source             string // "local" or "remote"
	OutputDir          string
	Files              []string
}

// Store persists runs in SQLite. Callers treat store failures as
// best-effort: a generation run never fails because its history row
// could not be written.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	logger *zap.Logger
}

// Open initializes the SQLite database at the given path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logger.Debug("failed to set sqlite synchronous=NORMAL", zap.Error(err))
	}

	store := &Store{db: db, dbPath: path, logger: logger}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		description TEXT NOT NULL,
		needs_popup INTEGER NOT NULL DEFAULT 0,
		needs_content_script INTEGER NOT NULL DEFAULT 0,
		needs_background INTEGER NOT NULL DEFAULT 0,
		needs_css INTEGER NOT NULL DEFAULT 0,
		permissions TEXT,
		features TEXT,
		source TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		files TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run. A missing ID gets a fresh UUID and a zero
// CreatedAt gets the current time, so callers only fill what they know.
func (s *Store) Record(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	perms, err := marshalList(run.Permissions)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}
	features, err := marshalList(run.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}
	files, err := marshalList(run.Files)
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (
			id, created_at, description,
			needs_popup, needs_content_script, needs_background, needs_css,
			permissions, features, source, output_dir, files
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Description,
		run.NeedsPopup, run.NeedsContentScript, run.NeedsBackground, run.NeedsCSS,
		perms, features, run.Source, run.OutputDir, files,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	s.logger.Debug("recorded run",
		zap.String("id", run.ID),
		zap.String("source", run.Source),
		zap.Int("files", len(run.Files)))
	return nil
}

// List returns the most recent runs, newest first. A non-positive limit
// falls back to 20.
func (s *Store) List(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, created_at, description,
			needs_popup, needs_content_script, needs_background, needs_css,
			permissions, features, source, output_dir, files
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var perms, features, files sql.NullString
		if err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.Description,
			&run.NeedsPopup, &run.NeedsContentScript, &run.NeedsBackground, &run.NeedsCSS,
			&perms, &features, &run.Source, &run.OutputDir, &files,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Permissions = unmarshalList(perms)
		run.Features = unmarshalList(features)
		run.Files = unmarshalList(files)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Count returns the number of recorded runs.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

func marshalList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalList(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil
	}
	return items
}
