package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded for each excluded locale unit
const (
	ActionDelete = "DELETE"
	ActionDryRun = "DRY_RUN"
	ActionError  = "ERROR"
)

// PruneDB manages the SQLite database holding prune history
type PruneDB struct {
	db *sql.DB
}

// Record is one excluded locale unit handled during a run
type Record struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Platform     string    `json:"platform"`
	Arch         string    `json:"arch"`
	ResourceDir  string    `json:"resource_dir"`
	Entry        string    `json:"entry"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// NewPruneDB opens (creating if needed) the history database at dbPath
func NewPruneDB(dbPath string) (*PruneDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Exec rather than Ping so the file is created on first use
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	pdb := &PruneDB{db: db}
	if err = pdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return pdb, nil
}

func (d *PruneDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		platform TEXT NOT NULL,
		arch TEXT,
		resource_dir TEXT NOT NULL,
		entry TEXT NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_removals_timestamp ON removals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_removals_run ON removals(run_id);
	CREATE INDEX IF NOT EXISTS idx_removals_entry ON removals(entry);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordRemoval inserts one history row. A zero Timestamp is set to now.
func (d *PruneDB) RecordRemoval(r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	_, err := d.db.Exec(`
	INSERT INTO removals (
		run_id, timestamp, action, platform, arch, resource_dir, entry, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.Timestamp,
		r.Action,
		r.Platform,
		r.Arch,
		r.ResourceDir,
		r.Entry,
		r.ErrorMessage,
	)
	return err
}

// Close closes the database connection
func (d *PruneDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *PruneDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
