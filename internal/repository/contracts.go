package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

// DocumentRepository owns document records. The record is updated only at
// well-defined transition points: creation, pipeline start, and the terminal
// state. At most one writer per document record at a time.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	SaveResults(ctx context.Context, id uuid.UUID, status constants.RunStatus,
		action constants.WorkflowAction, extracted map[string]string,
		confidences map[string]float64, errorMessage string) error
}

// RunRepository owns pipeline run records and their append-only step logs.
// SetTerminalState is written exactly once per run.
type RunRepository interface {
	CreateRun(ctx context.Context, run *models.PipelineRun) error
	AppendStep(ctx context.Context, runID uuid.UUID, step models.StepRecord) error
	SetTerminalState(ctx context.Context, runID uuid.UUID, status constants.RunStatus,
		action constants.WorkflowAction, rationale, errorMessage string) error
	GetRun(ctx context.Context, runID uuid.UUID) (*models.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error)
}

// VendorRepository owns the reference vendor data the validator reads.
// FindPartial returns the first row in primary-key order whose name contains
// the substring case-insensitively, so lookups stay deterministic for a
// fixed dataset.
type VendorRepository interface {
	Upsert(ctx context.Context, vendor *models.Vendor) error
	FindExact(ctx context.Context, name string) (*models.Vendor, error)
	FindPartial(ctx context.Context, substring string) (*models.Vendor, error)
}
