package services

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/renbkna/yt-dlp-ui/types"
)

// History archives terminal tasks to SQLite so finished downloads
// survive a restart. The in-memory registry stays the store of record
// for live tasks; this is a write-behind log of outcomes.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database under dataDir.
func OpenHistory(dataDir string) (*History, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		url TEXT,
		status TEXT,
		progress REAL,
		filename TEXT,
		error TEXT,
		created_time DATETIME,
		finished_time DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_finished ON tasks(finished_time);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}
	return &History{db: db}, nil
}

// Record upserts a terminal task snapshot.
func (h *History) Record(t types.Task) error {
	var finished any
	if t.FinishedAt != nil {
		finished = t.FinishedAt.UTC()
	}
	query := `INSERT OR REPLACE INTO tasks (id, url, status, progress, filename, error, created_time, finished_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := h.db.Exec(query, t.ID, t.URL, string(t.Status), t.Progress, t.Filename, t.Error, t.CreatedAt.UTC(), finished)
	return err
}

// Recent returns up to limit archived tasks, newest first.
func (h *History) Recent(limit int) ([]types.Task, error) {
	query := `SELECT id, url, status, progress, filename, error, created_time, finished_time
		FROM tasks ORDER BY created_time DESC LIMIT ?`
	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		var t types.Task
		var status string
		var finished sql.NullTime
		if err := rows.Scan(&t.ID, &t.URL, &status, &t.Progress, &t.Filename, &t.Error, &t.CreatedAt, &finished); err != nil {
			return nil, err
		}
		t.Status = types.TaskStatus(status)
		if finished.Valid {
			ft := finished.Time
			t.FinishedAt = &ft
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
