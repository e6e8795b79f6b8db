// File: internal/journal/journal.go

// Package journal persists run lifecycle events into a local SQLite
// database. It records decisions and outcomes only; snapshot payloads
// never reach it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	goal       TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at   TIMESTAMP,
	outcome    TEXT,
	summary    TEXT,
	step_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS steps (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	ordinal    INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	thought    TEXT,
	params     TEXT,
	outcome    TEXT,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, ordinal)
);

CREATE TABLE IF NOT EXISTS gate_events (
	run_id             TEXT NOT NULL REFERENCES runs(id),
	at                 TIMESTAMP NOT NULL,
	allowed            INTEGER NOT NULL,
	reason             TEXT,
	needs_confirmation INTEGER NOT NULL,
	confirm_reason     TEXT
);
`

// Journal is a durable EventSink backed by SQLite.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the journal database at path, applying the
// schema if needed.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	// SQLite serializes writers; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying journal schema: %w", err)
	}

	return &Journal{
		db:     db,
		logger: logger.Named("journal"),
	}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Publish records one lifecycle event. It is called synchronously from
// the run loop, so failures are logged rather than propagated: a broken
// journal must not break the run.
func (j *Journal) Publish(ev schemas.Event) {
	var err error
	switch ev.Type {
	case schemas.EventStart:
		_, err = j.db.Exec(
			`INSERT INTO runs (id, goal, started_at) VALUES (?, ?, ?)`,
			ev.RunID, ev.Goal, ev.At.UTC())
	case schemas.EventStep:
		err = j.insertStep(ev)
	case schemas.EventGate:
		err = j.insertGate(ev)
	case schemas.EventDone, schemas.EventError, schemas.EventStopped:
		_, err = j.db.Exec(
			`UPDATE runs SET ended_at = ?, outcome = ?, summary = ?, step_count = ? WHERE id = ?`,
			ev.At.UTC(), string(ev.Type), ev.Summary, ev.StepCount, ev.RunID)
	default:
		j.logger.Warn("Unknown event type", zap.String("type", string(ev.Type)))
		return
	}
	if err != nil {
		j.logger.Error("Failed to journal event",
			zap.String("type", string(ev.Type)),
			zap.String("run_id", ev.RunID),
			zap.Error(err))
	}
}

func (j *Journal) insertStep(ev schemas.Event) error {
	if ev.Step == nil {
		return fmt.Errorf("step event without step")
	}
	params, err := json.Marshal(ev.Step.Params)
	if err != nil {
		return fmt.Errorf("encoding step params: %w", err)
	}
	_, err = j.db.Exec(
		`INSERT INTO steps (run_id, ordinal, kind, thought, params, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Step.Ordinal, string(ev.Step.Kind), ev.Step.Thought,
		string(params), ev.Step.Outcome, ev.Step.CreatedAt.UTC())
	return err
}

func (j *Journal) insertGate(ev schemas.Event) error {
	if ev.Verdict == nil {
		return fmt.Errorf("gate event without verdict")
	}
	_, err := j.db.Exec(
		`INSERT INTO gate_events (run_id, at, allowed, reason, needs_confirmation, confirm_reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.At.UTC(), boolInt(ev.Verdict.Allowed), ev.Verdict.Reason,
		boolInt(ev.Verdict.NeedsConfirmation), ev.Verdict.ConfirmReason)
	return err
}

// RunRecord is a summarized run row.
type RunRecord struct {
	ID        string
	Goal      string
	StartedAt time.Time
	EndedAt   sql.NullTime
	Outcome   string
	Summary   string
	StepCount int
}

// RecentRuns returns up to n runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, n int) ([]RunRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, goal, started_at, ended_at, COALESCE(outcome, ''), COALESCE(summary, ''), step_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Goal, &r.StartedAt, &r.EndedAt, &r.Outcome, &r.Summary, &r.StepCount); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Steps returns the recorded steps of one run in order.
func (j *Journal) Steps(ctx context.Context, runID string) ([]schemas.Step, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT ordinal, kind, thought, params, COALESCE(outcome, ''), created_at
		 FROM steps WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	var out []schemas.Step
	for rows.Next() {
		var (
			s      schemas.Step
			kind   string
			params string
		)
		if err := rows.Scan(&s.Ordinal, &kind, &s.Thought, &params, &s.Outcome, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning step row: %w", err)
		}
		s.Kind = schemas.ActionKind(kind)
		if params != "" {
			if err := json.Unmarshal([]byte(params), &s.Params); err != nil {
				return nil, fmt.Errorf("decoding step params: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
