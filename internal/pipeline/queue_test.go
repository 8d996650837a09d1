package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
)

func TestQueueProcessesEnqueuedDocument(t *testing.T) {
	f := newFixture(t, &fakeLoader{text: "Invoice from Acme Corporation"},
		invoiceAnswers("Acme Corporation", "$500.00", recentDate()), approvedVendors(), "")

	q := NewQueue(f.orch, f.docs, nil, WithWorkers(2), WithRunTimeout(30*time.Second))
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: f.doc.ID}))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	saved, ok := f.docs.resultsFor(f.doc.ID)
	require.True(t, ok, "document processed before shutdown returned")
	assert.Equal(t, constants.RunStatusCompleted, saved.status)
	assert.Equal(t, constants.ActionApprove, saved.action)
}

func TestQueueSkipsUnknownDocument(t *testing.T) {
	f := newFixture(t, &fakeLoader{text: "irrelevant"}, nil, approvedVendors(), "")

	q := NewQueue(f.orch, f.docs, nil, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)
}

func TestQueueEnqueueAfterShutdownIsNoop(t *testing.T) {
	f := newFixture(t, &fakeLoader{text: "irrelevant"}, nil, approvedVendors(), "")

	q := NewQueue(f.orch, f.docs, nil, WithWorkers(1))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	assert.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: f.doc.ID}))
	_, processed := f.docs.resultsFor(f.doc.ID)
	assert.False(t, processed)
}
