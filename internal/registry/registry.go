// Package registry keeps the audit history in SQLite: one row per run and
// one per audited page, so runs can be listed, reopened and diffed.
package registry

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrRunNotFound = errors.New("run not found")

type Registry struct {
	db     *sql.DB
	owned  bool
	logger logging.Logger
}

// Open opens (or creates) the history database at path.
func Open(path string, logger logging.Logger) (*Registry, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	reg, err := NewRegistry(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	reg.owned = true
	return reg, nil
}

// NewRegistry applies the schema to db and returns a Registry using it.
// The caller keeps ownership of db.
func NewRegistry(db *sql.DB, logger logging.Logger) (*Registry, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := applySchema(db); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)
	return &Registry{db: db, logger: logger.With(logging.Field{Key: "component", Value: "registry"})}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database when the Registry opened it.
func (r *Registry) Close() error {
	if r.owned {
		return r.db.Close()
	}
	return nil
}

// CreateRun starts a new, empty run.
func (r *Registry) CreateRun(ctx context.Context, target string, mode model.Mode) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Target:    target,
		Mode:      mode,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, target, mode, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Target, string(run.Mode), run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	r.logger.Debug("run created", logging.Field{Key: "run_id", Value: run.ID}, logging.Field{Key: "target", Value: target})
	return run, nil
}

// AddPageResults appends pages to a run after the pages already stored.
func (r *Registry) AddPageResults(ctx context.Context, runID string, pages []model.PageResult) error {
	if len(pages) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0), (SELECT COUNT(*) FROM runs WHERE id = ?) FROM page_results WHERE run_id = ?`, runID, runID)
	var exists int
	if err := row.Scan(&next, &exists); err != nil {
		return fmt.Errorf("read run position: %w", err)
	}
	if exists == 0 {
		return ErrRunNotFound
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO page_results (run_id, position, url, violation_count, result_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	violations := 0
	for i, p := range pages {
		if p.Result == nil {
			p.Result = model.NewRuleResultMap()
		}
		data, err := json.Marshal(p.Result)
		if err != nil {
			return fmt.Errorf("encode result for %s: %w", p.URL, err)
		}
		count := p.Result.Count()
		if _, err := stmt.ExecContext(ctx, runID, next+i, p.URL, count, string(data)); err != nil {
			return fmt.Errorf("insert page %s: %w", p.URL, err)
		}
		violations += count
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET page_count = page_count + ?, violation_count = violation_count + ? WHERE id = ?`,
		len(pages), violations, runID); err != nil {
		return fmt.Errorf("update run totals: %w", err)
	}
	return tx.Commit()
}

// Committer returns a writer appending pages to runID, usable as a batch
// sink for the fetcher.
func (r *Registry) Committer(runID string) *RunWriter {
	return &RunWriter{reg: r, runID: runID}
}

// RunWriter appends page batches to one run.
type RunWriter struct {
	reg   *Registry
	runID string
}

func (w *RunWriter) CommitPages(ctx context.Context, pages []model.PageResult) error {
	return w.reg.AddPageResults(ctx, w.runID, pages)
}

// GetRun returns a run and its pages.
func (r *Registry) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, target, mode, created_at, page_count, violation_count FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT url, result_json FROM page_results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	detail := &RunDetail{Run: *run, Pages: []model.PageResult{}}
	for rows.Next() {
		var url, data string
		if err := rows.Scan(&url, &data); err != nil {
			return nil, err
		}
		result := model.NewRuleResultMap()
		if err := json.Unmarshal([]byte(data), result); err != nil {
			return nil, fmt.Errorf("decode result for %s: %w", url, err)
		}
		detail.Pages = append(detail.Pages, model.PageResult{URL: url, Result: result})
	}
	return detail, rows.Err()
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
// A non-empty target restricts the list to runs of that target.
func (r *Registry) ListRuns(ctx context.Context, target string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, target, mode, created_at, page_count, violation_count
         FROM runs
         WHERE (? = '' OR target = ?)
         ORDER BY created_at DESC, rowid DESC
         LIMIT ?`,
		target, target, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its pages.
func (r *Registry) DeleteRun(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var mode string
	var created int64
	if err := s.Scan(&run.ID, &run.Target, &mode, &created, &run.PageCount, &run.ViolationCount); err != nil {
		return nil, err
	}
	run.Mode = model.Mode(mode)
	run.CreatedAt = time.UnixMilli(created).UTC()
	return &run, nil
}
