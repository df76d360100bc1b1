package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/indico-client/constants"
)

// ErrNotFound is returned when a submission is not in the journal.
var ErrNotFound = errors.New("journal: submission not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id          TEXT PRIMARY KEY,
		workflow_id BIGINT NOT NULL,
		input_kind  TEXT NOT NULL,
		created_at  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS batch_inputs (
		batch_id     TEXT NOT NULL REFERENCES batches(id),
		ordinal      INTEGER NOT NULL,
		value        TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (batch_id, ordinal)
	)`,
	`CREATE INDEX IF NOT EXISTS batch_inputs_hash_idx ON batch_inputs (content_hash)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		submission_id BIGINT PRIMARY KEY,
		batch_id      TEXT NOT NULL REFERENCES batches(id),
		status        TEXT NOT NULL,
		updated_at    BIGINT NOT NULL
	)`,
}

type sqlStore struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	dialect dialect
	logger  *slog.Logger
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlStore) RecordBatch(ctx context.Context, b Batch) error {
	if b.ID == uuid.Nil {
		return errors.New("journal: batch id is required")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	created := b.CreatedAt.UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO batches (id, workflow_id, input_kind, created_at) VALUES (?, ?, ?, ?)`),
		b.ID.String(), b.WorkflowID, b.InputKind, created,
	); err != nil {
		s.logger.Error("failed to record batch", "batch_id", b.ID, "error", err)
		return fmt.Errorf("insert batch: %w", err)
	}
	for _, in := range b.Inputs {
		if _, err := tx.ExecContext(ctx, s.dialect.rebind(
			`INSERT INTO batch_inputs (batch_id, ordinal, value, content_hash) VALUES (?, ?, ?, ?)`),
			b.ID.String(), in.Ordinal, in.Value, in.ContentHash,
		); err != nil {
			return fmt.Errorf("insert input %d: %w", in.Ordinal, err)
		}
	}
	for _, id := range b.SubmissionIDs {
		if _, err := tx.ExecContext(ctx, s.dialect.rebind(
			`INSERT INTO submissions (submission_id, batch_id, status, updated_at) VALUES (?, ?, ?, ?)`),
			id, b.ID.String(), string(constants.JournalStatusSubmitted), created,
		); err != nil {
			return fmt.Errorf("insert submission %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("journal.batch.recorded",
		"batch_id", b.ID.String(),
		"workflow_id", b.WorkflowID,
		"inputs", len(b.Inputs),
		"submissions", len(b.SubmissionIDs),
	)
	return nil
}

func (s *sqlStore) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.WorkflowID > 0 {
		where = append(where, "b.workflow_id = ?")
		args = append(args, f.WorkflowID)
	}
	if f.Status != "" {
		where = append(where, "s.status = ?")
		args = append(args, string(f.Status))
	}
	if f.Since != nil {
		where = append(where, "b.created_at >= ?")
		args = append(args, f.Since.UTC().UnixMilli())
	}

	q := `SELECT s.submission_id, s.batch_id, b.workflow_id, b.input_kind, s.status, b.created_at, s.updated_at
		FROM submissions s JOIN batches b ON b.id = s.batch_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY b.created_at, s.submission_id"

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
	if err != nil {
		s.logger.Error("failed to list journal entries", "error", err)
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var out []Entry
	for rows.Next() {
		var (
			e                Entry
			batchID, status  string
			created, updated int64
		)
		if err := rows.Scan(&e.SubmissionID, &batchID, &e.WorkflowID, &e.InputKind, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.BatchID, err = uuid.Parse(batchID); err != nil {
			return nil, fmt.Errorf("parse batch id %q: %w", batchID, err)
		}
		e.Status = constants.JournalStatus(status)
		e.CreatedAt = time.UnixMilli(created).UTC()
		e.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqlStore) Inputs(ctx context.Context, batchID uuid.UUID) ([]Input, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT ordinal, value, content_hash FROM batch_inputs WHERE batch_id = ? ORDER BY ordinal`),
		batchID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query inputs: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var out []Input
	for rows.Next() {
		var in Input
		if err := rows.Scan(&in.Ordinal, &in.Value, &in.ContentHash); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *sqlStore) UpdateStatus(ctx context.Context, submissionID int, status constants.JournalStatus) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`UPDATE submissions SET status = ?, updated_at = ? WHERE submission_id = ?`),
		string(status), time.Now().UTC().UnixMilli(), submissionID,
	)
	if err != nil {
		s.logger.Error("failed to update submission status", "submission_id", submissionID, "error", err)
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, submissionID)
	}
	return nil
}

func (s *sqlStore) SubmittedHashes(ctx context.Context, workflowID int) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT DISTINCT i.content_hash FROM batch_inputs i JOIN batches b ON b.id = i.batch_id
		WHERE b.workflow_id = ? AND i.content_hash <> ''`),
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("query hashes: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	out := map[string]struct{}{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		out[h] = struct{}{}
	}
	return out, rows.Err()
}

// Close closes the database connections gracefully
func (s *sqlStore) Close() error {
	s.logger.Debug("closing journal database")
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
