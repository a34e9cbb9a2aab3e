// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// DefaultDBPath is the SQLite catalog file used when none is configured.
const DefaultDBPath = "catalog.db"

// SQLite is a catalog table stored in a SQLite file. Names are stored with
// their folded form so lookups match exactly what the in-memory catalog
// matches, including non-ASCII case folding that SQLite's LIKE lacks.
type SQLite struct {
	db   *sql.DB
	opts Options
}

// OpenSQLite opens or creates the catalog database at path and creates the
// schema if it does not exist.
func OpenSQLite(path string, opts Options) (*SQLite, error) {
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &SQLite{db: db, opts: opts}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			folded TEXT NOT NULL,
			kind TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_folded ON candidates(folded)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from a catalog import.
type ImportSummary struct {
	Imported int
	Skipped  int
}

// Import replaces the stored table with entries, keeping their order.
// Entries whose ID repeats an earlier one are skipped.
func (s *SQLite) Import(ctx context.Context, entries []types.Candidate) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates`); err != nil {
		return summary, fmt.Errorf("clearing candidates: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO candidates (position, id, name, folded, kind) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range entries {
		res, err := stmt.ExecContext(ctx, i, c.ID, c.Name, names.Fold(c.Name), string(c.Kind))
		if err != nil {
			return summary, fmt.Errorf("inserting candidate %s: %w", c.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			summary.Skipped++
			continue
		}
		summary.Imported++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// Count returns the number of stored candidates.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM candidates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting candidates: %w", err)
	}
	return n, nil
}

// Name returns the catalog identifier.
func (s *SQLite) Name() string { return "sqlite" }

// Lookup returns stored candidates matching query in table order.
func (s *SQLite) Lookup(ctx context.Context, query string) ([]types.Candidate, error) {
	if err := sleep(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	pattern := escapeLike(names.Fold(query)) + "%"
	if s.opts.Mode == types.MatchSubstring {
		pattern = "%" + pattern
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind FROM candidates WHERE folded LIKE ? ESCAPE '\' ORDER BY position`,
		pattern)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var id, name, kind string
		if err := rows.Scan(&id, &name, &kind); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		out = append(out, types.NewCandidate(id, name, types.Kind(kind)))
	}
	return out, rows.Err()
}

// Find returns the first stored candidate named name, ignoring case.
func (s *SQLite) Find(ctx context.Context, name string) (types.Candidate, error) {
	var id, display, kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, kind FROM candidates WHERE folded = ? ORDER BY position LIMIT 1`,
		names.Fold(name),
	).Scan(&id, &display, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Candidate{}, ErrNotFound
	}
	if err != nil {
		return types.Candidate{}, fmt.Errorf("finding candidate: %w", err)
	}
	return types.NewCandidate(id, display, types.Kind(kind)), nil
}

// escapeLike escapes the LIKE wildcards in s for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
