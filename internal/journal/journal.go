// ABOUTME: SQLite usage journal built on modernc.org/sqlite
// ABOUTME: Creates its schema on open and records one row per telemetry entry

package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Journal is a usage journal backed by SQLite.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the journal at path. Parent directories are created if needed.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "journal")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// Enable WAL mode so a reporting CLI can read while a watcher writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	j := &Journal{db: db, logger: logger}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("usage journal opened", "path", path)
	return j, nil
}

func (j *Journal) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS token_usage (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			agent_id TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			cost_usd REAL NOT NULL DEFAULT 0,
			recorded_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_token_usage_task ON token_usage(task_id);
		CREATE INDEX IF NOT EXISTS idx_token_usage_recorded ON token_usage(recorded_at);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	j.logger.Info("closing usage journal")
	return j.db.Close()
}
