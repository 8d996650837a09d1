package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
)

// StepRecord is one append-only entry in a run's audit log.
type StepRecord struct {
	Name      string
	Status    constants.StepStatus
	Detail    string
	Duration  time.Duration
	Timestamp time.Time
}

// PipelineRun is the audit trail for one end-to-end execution. The step
// sequence is append-only and ordered; reading it back must reconstruct the
// full decision path without re-running anything.
type PipelineRun struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	DocumentType constants.DocumentType
	Status       constants.RunStatus
	Steps        []StepRecord
	Action       constants.WorkflowAction // zero when the run failed
	Rationale    string
	Success      bool
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Result is the caller-visible outcome of one pipeline run.
type Result struct {
	Success    bool
	DocumentID uuid.UUID
	RunID      uuid.UUID
	Action     constants.WorkflowAction
	Rationale  string
	Steps      []StepRecord
	Error      string
}
