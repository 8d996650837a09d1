package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
)

// Service is a tiny façade over the run repository that produces XLSX bytes
// for run-history exports.
type Service struct {
	runs   repository.RunRepository
	logger *slog.Logger
}

func NewService(runs repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// ExportRunsXLSX returns an XLSX workbook (as bytes) holding the most recent
// pipeline runs on one sheet and their step logs on a second.
func (s *Service) ExportRunsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	f := excelize.NewFile()
	const runSheet = "Runs"
	const stepSheet = "Steps"

	// excelize seeds a default "Sheet1"; rename it for runs and add steps.
	if err := f.SetSheetName("Sheet1", runSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(stepSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(runSheet)
	f.SetActiveSheet(activeIndex)

	runHeaders := []string{
		"Run ID",
		"Document ID",
		"Document Type",
		"Status",
		"Action",
		"Rationale",
		"Error",
		"Started",
		"Finished",
	}
	for i, h := range runHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(runSheet, cell, h)
	}

	stepHeaders := []string{
		"Run ID",
		"Step",
		"Status",
		"Detail",
		"Duration (ms)",
		"Recorded",
	}
	for i, h := range stepHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(stepSheet, cell, h)
	}

	write := func(sheet string, row, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	runRow := 2
	stepRow := 2
	stepCount := 0
	for _, r := range runs {
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		write(runSheet, runRow, 1, r.ID.String())
		write(runSheet, runRow, 2, r.DocumentID.String())
		write(runSheet, runRow, 3, string(r.DocumentType))
		write(runSheet, runRow, 4, string(r.Status))
		write(runSheet, runRow, 5, string(r.Action))
		write(runSheet, runRow, 6, truncate(r.Rationale, 180))
		write(runSheet, runRow, 7, truncate(r.ErrorMessage, 140))
		write(runSheet, runRow, 8, r.StartedAt.Format(time.RFC3339))
		write(runSheet, runRow, 9, finished)
		runRow++

		for _, step := range r.Steps {
			write(stepSheet, stepRow, 1, r.ID.String())
			write(stepSheet, stepRow, 2, step.Name)
			write(stepSheet, stepRow, 3, string(step.Status))
			write(stepSheet, stepRow, 4, truncate(step.Detail, 180))
			write(stepSheet, stepRow, 5, step.Duration.Milliseconds())
			write(stepSheet, stepRow, 6, step.Timestamp.Format(time.RFC3339))
			stepRow++
			stepCount++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(runSheet, "A", "B", 38) // ids
	_ = f.SetColWidth(runSheet, "C", "E", 18)
	_ = f.SetColWidth(runSheet, "F", "F", 60) // rationale
	_ = f.SetColWidth(runSheet, "G", "G", 40)
	_ = f.SetColWidth(runSheet, "H", "I", 22) // timestamps
	_ = f.SetColWidth(stepSheet, "A", "A", 38)
	_ = f.SetColWidth(stepSheet, "B", "C", 14)
	_ = f.SetColWidth(stepSheet, "D", "D", 60)
	_ = f.SetColWidth(stepSheet, "E", "F", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"runs", len(runs),
		"steps", stepCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
