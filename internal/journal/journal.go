// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal records sync runs and per-card outcomes in a local SQLite
// database. The journal is write-only from the pipeline's point of view: it
// never decides whether a card is submitted.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ankisync/pkg/types"
)

const (
	dbFile       = "journal.db"
	timeLayout   = "2006-01-02T15:04:05.000000000Z07:00"
	defaultLimit = 10
)

// Journal manages the journal database.
type Journal struct {
	db *sql.DB
}

// Open opens or creates stateDir/journal.db and its schema.
func Open(stateDir string) (*Journal, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			dry_run INTEGER NOT NULL DEFAULT 0,
			files INTEGER NOT NULL DEFAULT 0,
			added INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			media INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			deck TEXT NOT NULL,
			front TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			note_id INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is an open journal entry for one sync run.
type Run struct {
	j       *Journal
	id      string
	started time.Time
	dryRun  bool
}

// Begin inserts a new run row and returns a handle for recording outcomes.
func (j *Journal) Begin(dryRun bool) (*Run, error) {
	r := &Run{j: j, id: uuid.NewString(), started: time.Now().UTC(), dryRun: dryRun}
	_, err := j.db.Exec(`INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)`,
		r.id, r.started.Format(timeLayout), dryRun)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return r, nil
}

// ID returns the run's identifier.
func (r *Run) ID() string {
	return r.id
}

// Record stores one card outcome.
func (r *Run) Record(o types.Outcome) error {
	_, err := r.j.db.Exec(
		`INSERT INTO outcomes (run_id, source, deck, front, status, message, note_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.id, o.Source, o.Deck, o.Front, string(o.Status), o.Message, o.NoteID,
	)
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// Finish stamps the run with its end time and totals.
func (r *Run) Finish(files, added, failed, skipped, media int) error {
	_, err := r.j.db.Exec(
		`UPDATE runs SET finished_at = ?, files = ?, added = ?, failed = ?, skipped = ?, media = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), files, added, failed, skipped, media, r.id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first. limit <= 0 means 10.
func (j *Journal) Recent(limit int) ([]types.RunSummary, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := j.db.Query(
		`SELECT id, started_at, COALESCE(finished_at, ''), dry_run, files, added, failed, skipped, media
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunSummary
	for rows.Next() {
		var (
			s                 types.RunSummary
			started, finished string
		)
		if err := rows.Scan(&s.ID, &started, &finished, &s.DryRun,
			&s.Files, &s.Added, &s.Failed, &s.Skipped, &s.Media); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		s.StartedAt, _ = time.Parse(timeLayout, started)
		if finished != "" {
			s.FinishedAt, _ = time.Parse(timeLayout, finished)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// Outcomes returns the outcomes of the run whose id starts with prefix.
// An ambiguous or unknown prefix is an error.
func (j *Journal) Outcomes(prefix string) (string, []types.Outcome, error) {
	id, err := j.resolveID(prefix)
	if err != nil {
		return "", nil, err
	}

	rows, err := j.db.Query(
		`SELECT source, deck, front, status, COALESCE(message, ''), COALESCE(note_id, 0)
		 FROM outcomes WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return "", nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []types.Outcome
	for rows.Next() {
		var (
			o      types.Outcome
			status string
		)
		if err := rows.Scan(&o.Source, &o.Deck, &o.Front, &status, &o.Message, &o.NoteID); err != nil {
			return "", nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = types.OutcomeStatus(status)
		out = append(out, o)
	}
	return id, out, rows.Err()
}

func (j *Journal) resolveID(prefix string) (string, error) {
	rows, err := j.db.Query(`SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", fmt.Errorf("looking up run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no run matches %q", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run id %q is ambiguous", prefix)
	}
}
