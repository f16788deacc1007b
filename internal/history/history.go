// Package history records dated snapshots of repository lists in SQLite so
// growth can be tracked across preloads.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stahnma/gh-shelf/internal/model"
)

// DateLayout is the snapshot date format. It sorts lexically.
const DateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS totals (
    identity TEXT NOT NULL,
    date     TEXT NOT NULL,
    repos    INTEGER NOT NULL,
    starred  INTEGER NOT NULL,
    stars    INTEGER NOT NULL,
    PRIMARY KEY (identity, date)
);
CREATE TABLE IF NOT EXISTS repositories (
    identity   TEXT NOT NULL,
    repository TEXT NOT NULL,
    first_seen TEXT NOT NULL,
    last_seen  TEXT NOT NULL,
    stars      INTEGER NOT NULL,
    PRIMARY KEY (identity, repository)
);
`

// DB is a snapshot database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history tables: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (h *DB) Close() error {
	return h.db.Close()
}

// Snapshot is one identity's lists on one date.
type Snapshot struct {
	Identity string             `json:"identity"`
	Date     string             `json:"date"`
	Repos    []model.Repository `json:"repos"`
	Starred  []model.Repository `json:"starred"`
}

// Record stores s. Recording the same identity and date twice keeps the
// later totals; repositories keep their earliest first-seen date.
func (h *DB) Record(ctx context.Context, s Snapshot) error {
	if s.Identity == "" {
		return fmt.Errorf("snapshot has no identity")
	}
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return fmt.Errorf("snapshot date %q: %w", s.Date, err)
	}

	stars := 0
	for _, r := range s.Repos {
		stars += r.StargazersCount
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO totals (identity, date, repos, starred, stars) VALUES (?, ?, ?, ?, ?)",
		s.Identity, s.Date, len(s.Repos), len(s.Starred), stars)
	if err != nil {
		return fmt.Errorf("recording totals: %w", err)
	}

	for _, r := range s.Repos {
		_, err = tx.ExecContext(ctx, `
INSERT INTO repositories (identity, repository, first_seen, last_seen, stars) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(identity, repository) DO UPDATE SET
    first_seen = MIN(first_seen, excluded.first_seen),
    stars      = CASE WHEN excluded.last_seen >= last_seen THEN excluded.stars ELSE stars END,
    last_seen  = MAX(last_seen, excluded.last_seen)`,
			s.Identity, r.FullName, s.Date, s.Date, r.StargazersCount)
		if err != nil {
			return fmt.Errorf("recording %s: %w", r.FullName, err)
		}
	}
	return tx.Commit()
}

// Total is one row of the totals table.
type Total struct {
	Date    string
	Repos   int
	Starred int
	Stars   int
}

// Totals returns identity's snapshot totals, oldest first.
func (h *DB) Totals(ctx context.Context, identity string) ([]Total, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT date, repos, starred, stars FROM totals WHERE identity = ? ORDER BY date", identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.Date, &t.Repos, &t.Starred, &t.Stars); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Seen is one repository's first and last appearance.
type Seen struct {
	Repository string
	FirstSeen  string
	LastSeen   string
	Stars      int
}

// Repositories returns every repository recorded for identity, in the order
// they first appeared.
func (h *DB) Repositories(ctx context.Context, identity string) ([]Seen, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT repository, first_seen, last_seen, stars FROM repositories WHERE identity = ? ORDER BY first_seen, repository", identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Seen
	for rows.Next() {
		var s Seen
		if err := rows.Scan(&s.Repository, &s.FirstSeen, &s.LastSeen, &s.Stars); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ImportDir records every *.json export document under dir. A document
// without a date takes it from its file name. The number of imported files is
// returned; files that are not snapshots are skipped.
func (h *DB) ImportDir(ctx context.Context, dir string) (int, error) {
	imported := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil || s.Identity == "" {
			return nil
		}
		if s.Date == "" {
			s.Date = strings.TrimSuffix(d.Name(), ".json")
		}
		if err := h.Record(ctx, s); err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		imported++
		return nil
	})
	return imported, err
}
