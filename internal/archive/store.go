// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a SQLite record of completed proposal runs. The
// archive is written after a run and read only by the history commands; it
// is never consulted while generating.
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

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

const defaultListLimit = 20

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one archived proposal run.
type Run struct {
	ID        string              `json:"id" yaml:"id"`
	CreatedAt time.Time           `json:"created_at" yaml:"created_at"`
	Title     string              `json:"title" yaml:"title"`
	Details   string              `json:"details" yaml:"details"`
	Level     types.AcademicLevel `json:"academic_level" yaml:"academic_level"`
	Country   types.Country       `json:"country" yaml:"country"`

	Result types.ProposalResult `json:"result" yaml:"result"`
}

// Summary is the list view of a run.
type Summary struct {
	ID            string    `json:"id" yaml:"id"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	Title         string    `json:"title" yaml:"title"`
	ResearchCount int       `json:"research_count" yaml:"research_count"`
	PaperCount    int       `json:"paper_count" yaml:"paper_count"`
}

// Store is the run archive.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			title TEXT,
			details TEXT,
			academic_level TEXT,
			country TEXT,
			proposal TEXT,
			experiment_design TEXT,
			keywords TEXT,
			paper_keywords TEXT,
			research TEXT,
			papers TEXT,
			research_count INTEGER NOT NULL DEFAULT 0,
			paper_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a finished run and returns its new ID.
func (s *Store) Record(ctx context.Context, req types.ProposalRequest, res types.ProposalResult) (string, error) {
	id := uuid.NewString()

	blobs := make([]string, 4)
	for i, v := range []any{res.Keywords, res.PaperKeywords, res.Research, res.Papers} {
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encoding run: %w", err)
		}
		blobs[i] = string(b)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, title, details, academic_level, country,
			proposal, experiment_design, keywords, paper_keywords, research, papers,
			research_count, paper_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UTC().Format(timeLayout), req.Title, req.Details,
		string(req.AcademicLevel), string(req.Country),
		res.Proposal, res.ExperimentDesign,
		blobs[0], blobs[1], blobs[2], blobs[3],
		len(res.Research), len(res.Papers))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs first. limit <= 0 selects 20.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, title, research_count, paper_count
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created string
		if err := rows.Scan(&sum.ID, &created, &sum.Title, &sum.ResearchCount, &sum.PaperCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get loads one run in full.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	var (
		run                                       Run
		created, level, country                   string
		keywords, paperKeywords, research, papers string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, title, details, academic_level, country,
			proposal, experiment_design, keywords, paper_keywords, research, papers
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &created, &run.Title, &run.Details, &level, &country,
		&run.Result.Proposal, &run.Result.ExperimentDesign,
		&keywords, &paperKeywords, &research, &papers)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", id, err)
	}

	run.CreatedAt, _ = time.Parse(timeLayout, created)
	run.Level = types.AcademicLevel(level)
	run.Country = types.Country(country)

	for _, f := range []struct {
		raw string
		dst any
	}{
		{keywords, &run.Result.Keywords},
		{paperKeywords, &run.Result.PaperKeywords},
		{research, &run.Result.Research},
		{papers, &run.Result.Papers},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return Run{}, fmt.Errorf("decoding run %s: %w", id, err)
		}
	}
	return run, nil
}
