// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a SQLite log of the digests that were sent.
// The log is write-only from the notifier's point of view: nothing read
// from it changes what a later run fetches or sends.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// Run is one sent digest.
type Run struct {
	SentAt     time.Time
	Subject    string
	Recipients []string
	Sections   []types.KeywordDigest
}

// RunSummary is a row of the run log.
type RunSummary struct {
	ID         int64     `json:"id" yaml:"id"`
	SentAt     time.Time `json:"sent_at" yaml:"sent_at"`
	Subject    string    `json:"subject" yaml:"subject"`
	Recipients []string  `json:"recipients" yaml:"recipients"`
	Articles   int       `json:"articles" yaml:"articles"`
}

// Store is the archive database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sent_at TEXT NOT NULL,
			subject TEXT NOT NULL,
			recipients TEXT NOT NULL,
			article_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			keyword TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT,
			link TEXT,
			abstract TEXT,
			updated TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_run_id ON articles(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and returns its ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	recipientsJSON, err := json.Marshal(run.Recipients)
	if err != nil {
		return 0, fmt.Errorf("encoding recipients: %w", err)
	}
	count := 0
	for _, sec := range run.Sections {
		count += len(sec.Articles)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (sent_at, subject, recipients, article_count) VALUES (?, ?, ?, ?)`,
		run.SentAt.UTC().Format(time.RFC3339Nano), run.Subject, string(recipientsJSON), count,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (run_id, keyword, position, title, link, abstract, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sec := range run.Sections {
		for i, a := range sec.Articles {
			_, err := stmt.ExecContext(ctx,
				runID, sec.Keyword, i, a.Title, a.Link, a.Abstract,
				a.Updated.UTC().Format(time.RFC3339),
			)
			if err != nil {
				return 0, fmt.Errorf("inserting article %s: %w", a.Link, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sent_at, subject, recipients, article_count FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r             RunSummary
			sentAt, rcpts string
		)
		if err := rows.Scan(&r.ID, &sentAt, &r.Subject, &rcpts, &r.Articles); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := decodeRun(&r, sentAt, rcpts); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the summary of run id.
func (s *Store) Get(ctx context.Context, id int64) (RunSummary, error) {
	var (
		r             RunSummary
		sentAt, rcpts string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sent_at, subject, recipients, article_count FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &sentAt, &r.Subject, &rcpts, &r.Articles)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("run %d not found in archive", id)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("querying run %d: %w", id, err)
	}
	if err := decodeRun(&r, sentAt, rcpts); err != nil {
		return RunSummary{}, err
	}
	return r, nil
}

// decodeRun fills the columns of r that are stored as text.
func decodeRun(r *RunSummary, sentAt, recipients string) error {
	t, err := time.Parse(time.RFC3339Nano, sentAt)
	if err != nil {
		return fmt.Errorf("run %d: parsing sent_at: %w", r.ID, err)
	}
	r.SentAt = t
	if err := json.Unmarshal([]byte(recipients), &r.Recipients); err != nil {
		return fmt.Errorf("run %d: decoding recipients: %w", r.ID, err)
	}
	return nil
}

// Sections returns the archived articles of a run grouped by keyword, in
// the order they were sent.
func (s *Store) Sections(ctx context.Context, runID int64) ([]types.KeywordDigest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, title, link, abstract, updated FROM articles
		 WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var out []types.KeywordDigest
	for rows.Next() {
		var (
			keyword, updated string
			a                types.Article
		)
		if err := rows.Scan(&keyword, &a.Title, &a.Link, &a.Abstract, &updated); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		t, err := time.Parse(time.RFC3339, updated)
		if err != nil {
			return nil, fmt.Errorf("article %q: parsing updated: %w", a.Link, err)
		}
		a.Updated = t
		if n := len(out); n == 0 || out[n-1].Keyword != keyword {
			out = append(out, types.KeywordDigest{Keyword: keyword})
		}
		out[len(out)-1].Articles = append(out[len(out)-1].Articles, a)
	}
	return out, rows.Err()
}
