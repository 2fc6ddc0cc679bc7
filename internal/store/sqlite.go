// Package store keeps a local log of harvest and enrichment runs in SQLite,
// so operators can audit what was fetched and enriched, and when.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run is one logged harvest or enrichment invocation.
type Run struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"` // "harvest_github", "harvest_hf", "enrich"
	Input        string         `json:"input"`
	Output       string         `json:"output"`
	Records      int            `json:"records"`
	Distinct     int            `json:"distinct"`
	LiveLookups  int            `json:"live_lookups"`
	CacheHits    int            `json:"cache_hits"`
	StatusCounts map[string]int `json:"status_counts,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RunLog records runs in a SQLite database via modernc.org/sqlite.
type RunLog struct {
	db *sql.DB
}

// Open opens (or creates) the run log at path and configures WAL mode.
func Open(path string) (*RunLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &RunLog{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	input         TEXT NOT NULL DEFAULT '',
	output        TEXT NOT NULL DEFAULT '',
	records       INTEGER NOT NULL DEFAULT 0,
	distinct_n    INTEGER NOT NULL DEFAULT 0,
	live_lookups  INTEGER NOT NULL DEFAULT 0,
	cache_hits    INTEGER NOT NULL DEFAULT 0,
	status_counts TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Migrate creates the schema if it does not exist.
func (l *RunLog) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (l *RunLog) Close() error {
	return l.db.Close()
}

// Record inserts a run and returns it with ID and CreatedAt assigned.
func (l *RunLog) Record(ctx context.Context, run Run) (Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	var counts any
	if run.StatusCounts != nil {
		data, err := json.Marshal(run.StatusCounts)
		if err != nil {
			return Run{}, eris.Wrap(err, "store: marshal status counts")
		}
		counts = string(data)
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, input, output, records, distinct_n, live_lookups, cache_hits, status_counts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Input, run.Output,
		run.Records, run.Distinct, run.LiveLookups, run.CacheHits,
		counts, run.CreatedAt,
	)
	if err != nil {
		return Run{}, eris.Wrap(err, "store: insert run")
	}
	return run, nil
}

// List returns the most recent runs, newest first, up to limit.
func (l *RunLog) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, kind, input, output, records, distinct_n, live_lookups, cache_hits, status_counts, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var out []Run
	for rows.Next() {
		var r Run
		var counts sql.NullString
		if err := rows.Scan(&r.ID, &r.Kind, &r.Input, &r.Output,
			&r.Records, &r.Distinct, &r.LiveLookups, &r.CacheHits,
			&counts, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		if counts.Valid && counts.String != "" {
			if err := json.Unmarshal([]byte(counts.String), &r.StatusCounts); err != nil {
				return nil, eris.Wrapf(err, "store: decode status counts for run %s", r.ID)
			}
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate runs")
}
