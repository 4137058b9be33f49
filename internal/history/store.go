// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite journal of successful explain runs.
// The journal is write-only from the pipeline's point of view: it is never
// consulted to skip or replace a generation request.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/explainer/pkg/types"
)

const (
	dbFile = "history.db"

	defaultDir        = ".explainer"
	defaultMaxResults = 20

	// timeLayout is fixed-width so created_at sorts correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        dir,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			topic TEXT NOT NULL,
			context TEXT,
			folder TEXT NOT NULL,
			model TEXT,
			image_model TEXT,
			explanation TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_topic ON runs(topic)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run. An empty ID is filled with a new UUID and a zero
// CreatedAt with the current time; both are written back to run.
func (s *Store) Record(ctx context.Context, run *types.Run) error {
	if run == nil {
		return fmt.Errorf("recording run: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, topic, context, folder, model, image_model, explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Topic, run.Context, run.Folder, run.Model, run.ImageModel,
		run.Explanation, run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Topic matches runs whose topic contains this substring, case-insensitively.
	Topic string

	// MaxResults limits result count. Zero uses the store default; a
	// negative value means no limit.
	MaxResults int
}

// List returns runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Run, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, topic, context, folder, model, image_model, explanation, created_at
		FROM runs WHERE 1=1`)

	if opts.Topic != "" {
		qb.WriteString(` AND lower(topic) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(opts.Topic))+"%")
	}

	qb.WriteString(` ORDER BY created_at DESC, rowid DESC`)

	limit := opts.MaxResults
	if limit == 0 {
		limit = s.maxResults
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []types.Run{}
	for rows.Next() {
		var (
			r                         types.Run
			runCtx, model, imageModel sql.NullString
			createdAt                 string
		)
		if err := rows.Scan(&r.ID, &r.Topic, &runCtx, &r.Folder, &model, &imageModel, &r.Explanation, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Context = runCtx.String
		r.Model = model.String
		r.ImageModel = imageModel.String
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// escapeLike escapes LIKE wildcards so the topic filter matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
