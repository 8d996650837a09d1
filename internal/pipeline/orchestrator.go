package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/decision"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/document"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/notify"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/validation"

	"github.com/google/uuid"
)

// Config holds orchestrator timeouts. A zero timeout disables the bound for
// that step.
type Config struct {
	LoadTimeout    time.Duration
	ExtractTimeout time.Duration
	NotifyTimeout  time.Duration
}

// Orchestrator sequences load -> extract -> validate -> decide -> notify for
// one document at a time, recording every step in the run's audit log. All
// collaborators are injected; an Orchestrator owns no shared mutable state,
// so independent runs may execute in parallel workers.
type Orchestrator struct {
	logger    *slog.Logger
	loader    document.Loader
	requester *extraction.Requester
	validator *validation.Validator
	notifier  *notify.Notifier
	runs      repository.RunRepository
	docs      repository.DocumentRepository
	cfg       Config
}

func NewOrchestrator(
	logger *slog.Logger,
	loader document.Loader,
	requester *extraction.Requester,
	validator *validation.Validator,
	notifier *notify.Notifier,
	runs repository.RunRepository,
	docs repository.DocumentRepository,
	cfg Config,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		logger:    logger,
		loader:    loader,
		requester: requester,
		validator: validator,
		notifier:  notifier,
		runs:      runs,
		docs:      docs,
		cfg:       cfg,
	}
}

// Process executes one full pipeline run for doc. Failures below the
// pipeline level flow forward as data; only a load failure, a decision
// failure, cancellation, or a storage error while persisting results end the
// run as FAILED.
func (o *Orchestrator) Process(ctx context.Context, doc *models.Document) models.Result {
	run := &models.PipelineRun{
		ID:           uuid.New(),
		DocumentID:   doc.ID,
		DocumentType: doc.Type,
		Status:       constants.RunStatusPending,
		StartedAt:    time.Now().UTC(),
	}

	o.logger.Info("pipeline.start",
		"run_id", run.ID,
		"document_id", doc.ID,
		"document_type", doc.Type,
	)

	if err := o.runs.CreateRun(ctx, run); err != nil {
		return models.Result{
			Success:    false,
			DocumentID: doc.ID,
			RunID:      run.ID,
			Error:      fmt.Sprintf("create run: %v", err),
		}
	}
	if err := o.docs.MarkProcessing(ctx, doc.ID); err != nil {
		return o.failRun(ctx, run, fmt.Errorf("%w: mark processing: %v", common.ErrDatabase, err))
	}
	run.Status = constants.RunStatusProcessing

	// Step 1: load.
	var text string
	err := o.runStep(ctx, run, "load", o.cfg.LoadTimeout, func(stepCtx context.Context) (string, error) {
		var err error
		text, err = o.loader.Load(stepCtx, doc.StoragePath)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("loaded %d bytes of text", len(text)), nil
	})
	if err != nil {
		return o.failRun(ctx, run, fmt.Errorf("%w: %v", common.ErrLoadFailure, err))
	}
	if err := o.cancelled(ctx, run); err != nil {
		return o.failRun(ctx, run, err)
	}

	// Step 2: extract. Per-field failures stay inside their records.
	var extractions []extraction.FieldExtraction
	err = o.runStep(ctx, run, "extract", o.cfg.ExtractTimeout, func(stepCtx context.Context) (string, error) {
		var err error
		extractions, err = o.requester.Extract(stepCtx, text, doc.Type)
		if err != nil {
			return "", err
		}
		failed := 0
		for _, ex := range extractions {
			if ex.Failed() {
				failed++
			}
		}
		return fmt.Sprintf("%d fields extracted, %d failed", len(extractions), failed), nil
	})
	if err != nil {
		return o.failRun(ctx, run, err)
	}
	if err := o.cancelled(ctx, run); err != nil {
		return o.failRun(ctx, run, err)
	}

	// Step 3: validate. Failed extractions are logged and skipped; the
	// validator captures its own failures into outcomes, so this step
	// cannot fail.
	var outcomes []validation.Outcome
	_ = o.runStep(ctx, run, "validate", 0, func(stepCtx context.Context) (string, error) {
		skipped := 0
		for _, ex := range extractions {
			if ex.Failed() {
				skipped++
				o.logger.Warn("pipeline.validate.skipped", "run_id", run.ID, "field", ex.Field, "error", ex.Error)
				continue
			}
			outcomes = append(outcomes, o.validator.Validate(stepCtx, ex))
		}
		return fmt.Sprintf("%d fields validated, %d skipped", len(outcomes), skipped), nil
	})
	if err := o.cancelled(ctx, run); err != nil {
		return o.failRun(ctx, run, err)
	}

	// Step 4: decide. The engine is pure; a panic here is a malformed-input
	// bug and terminates the run.
	var dec decision.Decision
	err = o.runStep(ctx, run, "decide", 0, func(context.Context) (detail string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", common.ErrDecisionFailure, r)
			}
		}()
		dec = decision.Decide(doc.Type, extractions, outcomes)
		return fmt.Sprintf("action=%s", dec.Action), nil
	})
	if err != nil {
		return o.failRun(ctx, run, err)
	}

	extracted, confidences := flatten(extractions)

	// Step 5: notify, only when a recipient exists. Best effort: a transport
	// failure is a recorded step failure, never a terminal one.
	if doc.Recipient != "" {
		nerr := o.runStep(ctx, run, "notify", o.cfg.NotifyTimeout, func(stepCtx context.Context) (string, error) {
			if err := o.notifier.Notify(stepCtx, doc.Recipient, dec.Action, doc.Type, doc.ID, extracted, dec.Rationale); err != nil {
				return "", err
			}
			return "notified " + doc.Recipient, nil
		})
		if nerr != nil {
			o.logger.Warn("pipeline.notify.failed", "run_id", run.ID, "recipient", doc.Recipient, "error", nerr)
		}
	}

	// Terminal transition: the only other write to the document record.
	status := constants.StatusForAction(dec.Action)
	pctx := context.WithoutCancel(ctx)
	if err := o.docs.SaveResults(pctx, doc.ID, status, dec.Action, extracted, confidences, ""); err != nil {
		return o.failRun(ctx, run, fmt.Errorf("%w: save results: %v", common.ErrDatabase, err))
	}
	if err := o.runs.SetTerminalState(pctx, run.ID, status, dec.Action, dec.Rationale, ""); err != nil {
		return o.failRun(ctx, run, fmt.Errorf("%w: set terminal state: %v", common.ErrDatabase, err))
	}

	run.Status = status
	run.Action = dec.Action
	run.Rationale = dec.Rationale
	run.Success = true

	o.logger.Info("pipeline.ok",
		"run_id", run.ID,
		"document_id", doc.ID,
		"status", status,
		"action", dec.Action,
	)
	return models.Result{
		Success:    true,
		DocumentID: doc.ID,
		RunID:      run.ID,
		Action:     dec.Action,
		Rationale:  dec.Rationale,
		Steps:      run.Steps,
	}
}

// runStep records a started entry, executes fn under an optional timeout,
// and records the completed or failed entry with elapsed time. Step records
// persist best-effort; the in-memory run always keeps the full log.
func (o *Orchestrator) runStep(ctx context.Context, run *models.PipelineRun, name string, timeout time.Duration, fn func(ctx context.Context) (string, error)) error {
	o.record(ctx, run, models.StepRecord{
		Name:      name,
		Status:    constants.StepStarted,
		Timestamp: time.Now().UTC(),
	})

	stepCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	detail, err := fn(stepCtx)
	elapsed := time.Since(start)

	if err != nil {
		o.logger.Error("pipeline.step.failed", "run_id", run.ID, "step", name, "error", err, "elapsed_ms", elapsed.Milliseconds())
		o.record(ctx, run, models.StepRecord{
			Name:      name,
			Status:    constants.StepFailed,
			Detail:    err.Error(),
			Duration:  elapsed,
			Timestamp: time.Now().UTC(),
		})
		return err
	}

	o.logger.Info("pipeline.step.ok", "run_id", run.ID, "step", name, "detail", detail, "elapsed_ms", elapsed.Milliseconds())
	o.record(ctx, run, models.StepRecord{
		Name:      name,
		Status:    constants.StepCompleted,
		Detail:    detail,
		Duration:  elapsed,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (o *Orchestrator) record(ctx context.Context, run *models.PipelineRun, step models.StepRecord) {
	run.Steps = append(run.Steps, step)
	if err := o.runs.AppendStep(context.WithoutCancel(ctx), run.ID, step); err != nil {
		o.logger.Warn("pipeline.step.persist_failed", "run_id", run.ID, "step", step.Name, "error", err)
	}
}

func (o *Orchestrator) cancelled(ctx context.Context, run *models.PipelineRun) error {
	if err := ctx.Err(); err != nil {
		o.logger.Warn("pipeline.cancelled", "run_id", run.ID)
		return common.ErrCancelled
	}
	return nil
}

// failRun moves the run to its terminal FAILED state, keeping the partial
// audit log. Persistence here uses a detached context so a cancelled run can
// still record its own failure.
func (o *Orchestrator) failRun(ctx context.Context, run *models.PipelineRun, cause error) models.Result {
	msg := cause.Error()
	pctx := context.WithoutCancel(ctx)

	if err := o.runs.SetTerminalState(pctx, run.ID, constants.RunStatusFailed, "", "", msg); err != nil {
		o.logger.Error("pipeline.fail.persist_failed", "run_id", run.ID, "error", err)
	}
	if err := o.docs.SaveResults(pctx, run.DocumentID, constants.RunStatusFailed, "", nil, nil, msg); err != nil {
		o.logger.Error("pipeline.fail.persist_failed", "run_id", run.ID, "error", err)
	}

	run.Status = constants.RunStatusFailed
	run.Success = false
	run.ErrorMessage = msg

	o.logger.Error("pipeline.failed", "run_id", run.ID, "document_id", run.DocumentID, "error", msg)
	return models.Result{
		Success:    false,
		DocumentID: run.DocumentID,
		RunID:      run.ID,
		Steps:      run.Steps,
		Error:      msg,
	}
}

func flatten(extractions []extraction.FieldExtraction) (map[string]string, map[string]float64) {
	extracted := make(map[string]string, len(extractions))
	confidences := make(map[string]float64, len(extractions))
	for _, ex := range extractions {
		if ex.Answer == nil {
			continue
		}
		extracted[ex.Field] = *ex.Answer
		confidences[ex.Field] = ex.Confidence
	}
	return extracted, confidences
}
