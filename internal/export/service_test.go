package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository/sqlite"
)

func TestExportRunsXLSX(t *testing.T) {
	store, err := sqlite.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	doc := &models.Document{Filename: "a.txt", OriginalFilename: "a.txt",
		StoragePath: "invoice/a.txt", Type: constants.DocTypeInvoice}
	require.NoError(t, store.Documents().Create(ctx, doc))

	runs := store.Runs()
	run := &models.PipelineRun{DocumentID: doc.ID, DocumentType: constants.DocTypeInvoice,
		Status: constants.RunStatusProcessing}
	require.NoError(t, runs.CreateRun(ctx, run))
	require.NoError(t, runs.AppendStep(ctx, run.ID, models.StepRecord{
		Name: "load", Status: constants.StepCompleted, Detail: "loaded 42 bytes of text",
		Duration: 7 * time.Millisecond, Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, runs.SetTerminalState(ctx, run.ID, constants.RunStatusCompleted,
		constants.ActionApprove, "all validations passed", ""))

	svc := NewService(runs, nil)
	data, err := svc.ExportRunsXLSX(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })

	assert.ElementsMatch(t, []string{"Runs", "Steps"}, wb.GetSheetList())

	runRows, err := wb.GetRows("Runs")
	require.NoError(t, err)
	require.Len(t, runRows, 2, "header plus one run")
	assert.Equal(t, "Run ID", runRows[0][0])
	assert.Equal(t, run.ID.String(), runRows[1][0])
	assert.Equal(t, "approve", runRows[1][4])

	stepRows, err := wb.GetRows("Steps")
	require.NoError(t, err)
	require.Len(t, stepRows, 2, "header plus one step")
	assert.Equal(t, "load", stepRows[1][1])
}

func TestExportEmptyHistory(t *testing.T) {
	store, err := sqlite.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store.Runs(), nil)
	data, err := svc.ExportRunsXLSX(context.Background(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "an empty history still yields a workbook with headers")
}
