// Package store provides a SQLite-backed history of analysis runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/gemaudit/internal/config"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded pipeline execution.
type Run struct {
	ID              string
	Project         string
	Root            string
	Model           string
	ContentChars    int64
	EstimatedTokens int64
	EstimatedCost   float64
	OverBudget      bool
	OutputPath      string
	ArchivePath     string
	Stage           string
	Status          string
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// History records analysis runs.
type History struct {
	db *sql.DB
}

// DefaultPath returns the history database location next to the config.
func DefaultPath() string {
	return filepath.Join(config.Dir(), "history.db")
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// Record stores a run, assigning an ID if it has none, and returns the ID.
func (h *History) Record(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	overBudget := 0
	if r.OverBudget {
		overBudget = 1
	}

	_, err := h.db.Exec(`INSERT OR REPLACE INTO runs
		(run_id, project, root, model, content_chars, estimated_tokens, estimated_cost,
		 over_budget, output_path, archive_path, stage, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.Root, r.Model, r.ContentChars, r.EstimatedTokens, r.EstimatedCost,
		overBudget, r.OutputPath, r.ArchivePath, r.Stage, r.Status, r.Error,
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return r.ID, nil
}

// Recent returns up to limit runs, newest first. A limit below 1 returns all.
func (h *History) Recent(limit int) ([]Run, error) {
	if limit < 1 {
		limit = -1
	}

	rows, err := h.db.Query(`SELECT
		run_id, project, root, model, content_chars, estimated_tokens, estimated_cost,
		over_budget, output_path, archive_path, stage, status, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var root, model, outputPath, archivePath, errText, finished sql.NullString
		var started string
		var overBudget int

		err := rows.Scan(
			&r.ID, &r.Project, &root, &model, &r.ContentChars, &r.EstimatedTokens, &r.EstimatedCost,
			&overBudget, &outputPath, &archivePath, &r.Stage, &r.Status, &errText, &started, &finished,
		)
		if err != nil {
			return nil, err
		}

		r.Root = root.String
		r.Model = model.String
		r.OutputPath = outputPath.String
		r.ArchivePath = archivePath.String
		r.Error = errText.String
		r.OverBudget = overBudget != 0
		r.StartedAt, _ = time.Parse(timeLayout, started)
		if finished.Valid && finished.String != "" {
			r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TotalEstimatedCost sums the estimates of completed runs since the given time.
func (h *History) TotalEstimatedCost(since time.Time) (float64, error) {
	var total sql.NullFloat64
	err := h.db.QueryRow(`SELECT SUM(estimated_cost) FROM runs
		WHERE status != 'failed' AND started_at >= ?`, formatTime(since)).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
