package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type jobRunTableModel struct {
	RunID        string         `db:"run_id"`
	JobName      string         `db:"job_name"`
	Trigger      string         `db:"trigger_source"`
	Status       string         `db:"status"`
	Metrics      string         `db:"metrics"`
	ErrorMessage sql.NullString `db:"error_message"`
	StartedAt    time.Time      `db:"started_at"`
	FinishedAt   *time.Time     `db:"finished_at"`
	TraceID      sql.NullString `db:"trace_id"`
	SpanID       sql.NullString `db:"span_id"`
}

type jobRunInsertModel struct {
	RunID        string     `db:"run_id"`
	JobName      string     `db:"job_name"`
	Trigger      string     `db:"trigger_source"`
	Status       string     `db:"status"`
	Metrics      string     `db:"metrics"`
	ErrorMessage *string    `db:"error_message"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	TraceID      *string    `db:"trace_id"`
	SpanID       *string    `db:"span_id"`
}

type JobRunRepository struct {
	db dbtx
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) UpsertRun(ctx context.Context, run jobscheduler.Run) error {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		return fmt.Errorf("job run id is required")
	}

	jobName := strings.TrimSpace(run.JobName)
	if jobName == "" {
		jobName = "unknown"
	}

	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return fmt.Errorf("marshal job run metrics: %w", err)
	}

	model := jobRunInsertModel{
		RunID:        runID,
		JobName:      jobName,
		Trigger:      strings.TrimSpace(run.Trigger),
		Status:       string(run.Status),
		Metrics:      metricsJSON,
		ErrorMessage: nullableString(run.ErrorMessage),
		StartedAt:    timeOrNow(run.StartedAt),
		FinishedAt:   run.FinishedAt,
		TraceID:      nullableString(run.TraceID),
		SpanID:       nullableString(run.SpanID),
	}
	if run.Status != jobscheduler.StatusFailed {
		model.ErrorMessage = nil
	}

	query, args, err := qb.InsertModel("job_runs", model, `ON CONFLICT (run_id)
DO UPDATE SET
    status = EXCLUDED.status,
    metrics = EXCLUDED.metrics,
    finished_at = CASE
        WHEN EXCLUDED.status = 'running' THEN job_runs.finished_at
        ELSE EXCLUDED.finished_at
    END,
    error_message = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.error_message
        ELSE NULL
    END,
    trace_id = COALESCE(job_runs.trace_id, EXCLUDED.trace_id),
    span_id = COALESCE(job_runs.span_id, EXCLUDED.span_id)`)
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job run run_id=%s status=%s: %w", runID, run.Status, err)
	}

	return nil
}

// ListRecent returns the newest runs first. An empty jobName lists every job.
func (r *JobRunRepository) ListRecent(ctx context.Context, jobName string, limit int) ([]jobscheduler.Run, error) {
	builder := qb.Select("*").From("job_runs")
	if jobName = strings.TrimSpace(jobName); jobName != "" {
		builder = builder.Where(qb.Eq("job_name", jobName))
	}
	query, args, err := builder.OrderBy("started_at DESC").Limit(limit).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job runs query: %w", err)
	}

	var rows []jobRunTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}

	out := make([]jobscheduler.Run, 0, len(rows))
	for _, row := range rows {
		metrics := make(map[string]any)
		if err := decodeJSON(row.Metrics, &metrics); err != nil {
			return nil, fmt.Errorf("decode job run %s metrics: %w", row.RunID, err)
		}
		out = append(out, jobscheduler.Run{
			RunID:        row.RunID,
			JobName:      row.JobName,
			Trigger:      row.Trigger,
			Status:       jobscheduler.RunStatus(row.Status),
			Metrics:      metrics,
			ErrorMessage: row.ErrorMessage.String,
			StartedAt:    row.StartedAt,
			FinishedAt:   row.FinishedAt,
			TraceID:      row.TraceID.String,
			SpanID:       row.SpanID.String,
		})
	}
	return out, nil
}

// DeleteStartedBefore prunes history. Running rows are kept regardless of age.
func (r *JobRunRepository) DeleteStartedBefore(ctx context.Context, before time.Time) (int, error) {
	query, args, err := qb.DeleteFrom("job_runs").
		Where(
			qb.Expr("started_at < ?", before.UTC()),
			qb.Expr("status <> ?", string(jobscheduler.StatusRunning)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete job runs query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete job runs: %w", err)
	}
	return rowsAffected(result)
}

func marshalMetrics(metrics map[string]any) (string, error) {
	if len(metrics) == 0 {
		return "{}", nil
	}
	return encodeJSON(metrics)
}
