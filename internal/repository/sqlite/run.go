package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

type runRepo struct {
	store *Store
}

func (r *runRepo) CreateRun(ctx context.Context, run *models.PipelineRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (id, document_id, document_type, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.DocumentID.String(), string(run.DocumentType),
		string(run.Status), run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *runRepo) AppendStep(ctx context.Context, runID uuid.UUID, step models.StepRecord) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO run_steps (run_id, step_name, step_status, detail, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID.String(), step.Name, string(step.Status), step.Detail,
		step.Duration.Milliseconds(), step.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

func (r *runRepo) SetTerminalState(ctx context.Context, runID uuid.UUID, status constants.RunStatus,
	action constants.WorkflowAction, rationale, errorMessage string) error {

	success := 0
	if status != constants.RunStatusFailed {
		success = 1
	}
	res, err := r.store.db.ExecContext(ctx, `
		UPDATE pipeline_runs
		SET status = ?, workflow_action = ?, rationale = ?, success = ?,
			error_message = ?, finished_at = ?
		WHERE id = ? AND finished_at IS NULL`,
		string(status), string(action), rationale, success, errorMessage,
		time.Now().UTC().Format(time.RFC3339Nano), runID.String())
	if err != nil {
		return fmt.Errorf("set terminal state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set terminal state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s already finished or missing: %w", runID, common.ErrInvalidInput)
	}
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, runID uuid.UUID) (*models.PipelineRun, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, document_type, status, workflow_action, rationale,
			success, error_message, started_at, finished_at
		FROM pipeline_runs WHERE id = ?`, runID.String())

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, document_id, document_type, status, workflow_action, rationale,
			success, error_message, started_at, finished_at
		FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`, limit)
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
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT step_name, step_status, detail, duration_ms, recorded_at
		FROM run_steps WHERE run_id = ? ORDER BY id`, run.ID.String())
	if err != nil {
		return fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			step       models.StepRecord
			status     string
			durationMS int64
			recordedAt string
		)
		if err := rows.Scan(&step.Name, &status, &step.Detail, &durationMS, &recordedAt); err != nil {
			return fmt.Errorf("scan step: %w", err)
		}
		step.Status = constants.StepStatus(status)
		step.Duration = time.Duration(durationMS) * time.Millisecond
		if step.Timestamp, err = parseTime(recordedAt); err != nil {
			return err
		}
		run.Steps = append(run.Steps, step)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.PipelineRun, error) {
	var (
		run        models.PipelineRun
		rawID      string
		rawDocID   string
		docType    string
		status     string
		action     string
		success    int
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(&rawID, &rawDocID, &docType, &status, &action,
		&run.Rationale, &success, &run.ErrorMessage, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if run.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	if run.DocumentID, err = uuid.Parse(rawDocID); err != nil {
		return nil, fmt.Errorf("parse document id: %w", err)
	}
	run.DocumentType = constants.DocumentType(docType)
	run.Status = constants.RunStatus(status)
	run.Action = constants.WorkflowAction(action)
	run.Success = success != 0
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
