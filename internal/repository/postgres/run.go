package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
)

type runRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRunRepository(pool *pgxpool.Pool, log *slog.Logger) repository.RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{pool: pool, log: log}
}

func (r *runRepo) CreateRun(ctx context.Context, run *models.PipelineRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (id, document_id, document_type, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.DocumentID, string(run.DocumentType), string(run.Status), run.StartedAt)
	if err != nil {
		r.log.Error("run create failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *runRepo) AppendStep(ctx context.Context, runID uuid.UUID, step models.StepRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO run_steps (run_id, step_name, step_status, detail, duration_ms, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, step.Name, string(step.Status), step.Detail,
		step.Duration.Milliseconds(), step.Timestamp)
	if err != nil {
		r.log.Error("run step append failed", "run_id", runID, "step", step.Name, "err", err)
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

func (r *runRepo) SetTerminalState(ctx context.Context, runID uuid.UUID, status constants.RunStatus,
	action constants.WorkflowAction, rationale, errorMessage string) error {

	tag, err := r.pool.Exec(ctx, `
		UPDATE pipeline_runs
		SET status = $1, workflow_action = $2, rationale = $3, success = $4,
			error_message = $5, finished_at = $6
		WHERE id = $7 AND finished_at IS NULL`,
		string(status), string(action), rationale, status != constants.RunStatusFailed,
		errorMessage, time.Now().UTC(), runID)
	if err != nil {
		r.log.Error("run terminal state failed", "run_id", runID, "err", err)
		return fmt.Errorf("set terminal state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s already finished or missing: %w", runID, common.ErrInvalidInput)
	}
	r.log.Info("run finished", "run_id", runID, "status", status, "action", action)
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, runID uuid.UUID) (*models.PipelineRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, document_type, status, workflow_action, rationale,
			success, error_message, started_at, finished_at
		FROM pipeline_runs WHERE id = $1`, runID)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if err := r.loadSteps(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, document_type, status, workflow_action, rationale,
			success, error_message, started_at, finished_at
		FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		if err := r.loadSteps(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *runRepo) loadSteps(ctx context.Context, run *models.PipelineRun) error {
	rows, err := r.pool.Query(ctx, `
		SELECT step_name, step_status, detail, duration_ms, recorded_at
		FROM run_steps WHERE run_id = $1 ORDER BY id`, run.ID)
	if err != nil {
		return fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			step       models.StepRecord
			status     string
			durationMS int64
		)
		if err := rows.Scan(&step.Name, &status, &step.Detail, &durationMS, &step.Timestamp); err != nil {
			return fmt.Errorf("scan step: %w", err)
		}
		step.Status = constants.StepStatus(status)
		step.Duration = time.Duration(durationMS) * time.Millisecond
		run.Steps = append(run.Steps, step)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.PipelineRun, error) {
	var (
		run     models.PipelineRun
		docType string
		status  string
		action  string
	)
	err := row.Scan(&run.ID, &run.DocumentID, &docType, &status, &action,
		&run.Rationale, &run.Success, &run.ErrorMessage, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	run.DocumentType = constants.DocumentType(docType)
	run.Status = constants.RunStatus(status)
	run.Action = constants.WorkflowAction(action)
	return &run, nil
}
