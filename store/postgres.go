package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"paratest/clock"
	"paratest/event"
	"paratest/issue"
	"paratest/plan"
)

// Schema is the DDL PostgresHistory expects. Callers apply it once
// (e.g. from cmd/paratest-demo's bootstrap) rather than PostgresHistory
// managing migrations itself, mirroring the teacher's search_cache
// tables being provisioned outside DatabaseSearchCache.
const Schema = `
CREATE TABLE IF NOT EXISTS paratest_runs (
	run_id     UUID PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at   TIMESTAMPTZ NOT NULL,
	passed     INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	cancelled  BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS paratest_issues (
	id                 BIGSERIAL PRIMARY KEY,
	run_id             UUID NOT NULL REFERENCES paratest_runs(run_id),
	kind               TEXT NOT NULL,
	severity           TEXT NOT NULL,
	comments           TEXT[] NOT NULL DEFAULT '{}',
	backtrace          TEXT[] NOT NULL DEFAULT '{}',
	source_file        TEXT NOT NULL DEFAULT '',
	source_line        INTEGER NOT NULL DEFAULT 0,
	source_column      INTEGER NOT NULL DEFAULT 0,
	is_known           BOOLEAN NOT NULL,
	time_limit_minutes INTEGER NOT NULL DEFAULT 0,
	time_limit_seconds INTEGER NOT NULL DEFAULT 0,
	attachment_name    TEXT NOT NULL DEFAULT '',
	attachment_value   JSONB,
	attachment_path    TEXT NOT NULL DEFAULT '',
	cause              TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS paratest_runs_started_at_idx ON paratest_runs (started_at DESC);
`

// PostgresHistory implements History on top of database/sql, adapted
// from the teacher's DatabaseSearchCache: one *sql.DB, one service
// struct, query strings inline rather than through an ORM.
type PostgresHistory struct {
	db *sql.DB
}

// NewPostgresHistory wraps an already-opened *sql.DB. Schema must have
// been applied (e.g. via Schema) before Record or Query is called.
func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// Record implements History. It inserts one paratest_runs row and one
// paratest_issues row per issue, inside a single transaction so a run's
// summary and its issues are never observed half-written.
func (h *PostgresHistory) Record(ctx context.Context, summary plan.RunSummary, issues []issue.Issue) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO paratest_runs (run_id, started_at, ended_at, passed, failed, skipped, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			ended_at = EXCLUDED.ended_at,
			passed   = EXCLUDED.passed,
			failed   = EXCLUDED.failed,
			skipped  = EXCLUDED.skipped,
			cancelled = EXCLUDED.cancelled
	`, summary.ID, summary.StartedAt.Time(), summary.EndedAt.Time(), summary.Passed, summary.Failed, summary.Skipped, summary.Cancelled)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	for _, iss := range issues {
		attachmentValue, err := marshalAttachment(iss.Attachment.Value)
		if err != nil {
			return fmt.Errorf("store: marshal attachment: %w", err)
		}
		cause := ""
		if iss.Cause != nil {
			cause = iss.Cause.Error()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO paratest_issues (
				run_id, kind, severity, comments, backtrace,
				source_file, source_line, source_column, is_known,
				time_limit_minutes, time_limit_seconds,
				attachment_name, attachment_value, attachment_path, cause
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`,
			summary.ID, string(iss.Kind), string(iss.Severity),
			pq.StringArray(iss.Comments), pq.StringArray(iss.Backtrace),
			iss.SourceLocation.File, iss.SourceLocation.Line, iss.SourceLocation.Column, iss.IsKnown,
			iss.TimeLimit.Minutes, iss.TimeLimit.Seconds,
			iss.Attachment.Name, attachmentValue, iss.Attachment.Path, cause,
		)
		if err != nil {
			return fmt.Errorf("store: insert issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func marshalAttachment(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Query implements History, reading runs (most recent first) and their
// issues back out.
func (h *PostgresHistory) Query(ctx context.Context, filter Filter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	since := filter.Since
	if since.IsZero() {
		since = time.Unix(0, 0)
	}
	until := filter.Until
	if until.IsZero() {
		until = time.Now().AddDate(100, 0, 0)
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT run_id, started_at, ended_at, passed, failed, skipped, cancelled
		FROM paratest_runs
		WHERE started_at >= $1 AND started_at <= $2
		ORDER BY started_at DESC
		LIMIT $3
	`, since, until, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var id uuid.UUID
		var startedAt, endedAt time.Time
		var passed, failed, skipped int
		var cancelled bool
		if err := rows.Scan(&id, &startedAt, &endedAt, &passed, &failed, &skipped, &cancelled); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		records = append(records, Record{Summary: plan.RunSummary{
			ID:        id,
			StartedAt: clock.NewInstant(startedAt),
			EndedAt:   clock.NewInstant(endedAt),
			Passed:    passed,
			Failed:    failed,
			Skipped:   skipped,
			Cancelled: cancelled,
		}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}

	for i := range records {
		issues, err := h.queryIssues(ctx, records[i].Summary.ID)
		if err != nil {
			return nil, err
		}
		records[i].Issues = issues
	}
	return records, nil
}

func (h *PostgresHistory) queryIssues(ctx context.Context, runID uuid.UUID) ([]issue.Issue, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT kind, severity, comments, backtrace, source_file, source_line,
			source_column, is_known, time_limit_minutes, time_limit_seconds,
			attachment_name, attachment_path, cause
		FROM paratest_issues
		WHERE run_id = $1
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: query issues: %w", err)
	}
	defer rows.Close()

	var issues []issue.Issue
	for rows.Next() {
		var kind, severity, file, attachmentName, attachmentPath, cause string
		var comments, backtrace pq.StringArray
		var line, column, limitMinutes, limitSeconds int
		var isKnown bool
		if err := rows.Scan(&kind, &severity, &comments, &backtrace, &file, &line,
			&column, &isKnown, &limitMinutes, &limitSeconds,
			&attachmentName, &attachmentPath, &cause); err != nil {
			return nil, fmt.Errorf("store: scan issue: %w", err)
		}

		iss := issue.Issue{
			Kind:     issue.Kind(kind),
			Severity: issue.Severity(severity),
			Comments: []string(comments),
			SourceLocation: event.SourceLocation{
				File: file, Line: line, Column: column,
			},
			Backtrace: []string(backtrace),
			IsKnown:   isKnown,
			TimeLimit: issue.TimeLimitComponents{Minutes: limitMinutes, Seconds: limitSeconds},
			Attachment: issue.Attachment{
				Name: attachmentName,
				Path: attachmentPath,
			},
		}
		if cause != "" {
			iss.Cause = errString(cause)
		}
		issues = append(issues, iss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate issues: %w", err)
	}
	return issues, nil
}

// errString is a plain string error, used to round-trip Issue.Cause's
// message through a column that only ever stored the formatted text.
type errString string

func (e errString) Error() string { return string(e) }
