package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
)

type fakeTransport struct {
	to      string
	subject string
	body    string
	calls   int
	err     error
}

func (f *fakeTransport) Send(_ context.Context, to, subject, body string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func TestComposeApproval(t *testing.T) {
	id := uuid.New()
	msg := ComposeApproval(constants.DocTypeInvoice, id, map[string]string{
		"vendor_name":  "Acme Corporation",
		"total_amount": "500.00",
	})

	assert.Equal(t, "Document Approved: Invoice #"+id.String(), msg.Subject)
	assert.Contains(t, msg.Body, "Status: APPROVED")
	assert.Contains(t, msg.Body, "Vendor Name: Acme Corporation")
	assert.Contains(t, msg.Body, "Total Amount: 500.00")
	assert.Contains(t, msg.Body, "No further action is required.")
}

func TestComposeReviewIncludesRationale(t *testing.T) {
	id := uuid.New()
	msg := ComposeReview(constants.DocTypeInsuranceClaim, id, nil, "claim_amount 15000 exceeds review threshold 10000")

	assert.Equal(t, "Action Required: Review Insurance Claim #"+id.String(), msg.Subject)
	assert.Contains(t, msg.Body, "Status: FLAGGED FOR REVIEW")
	assert.Contains(t, msg.Body, "Reason: claim_amount 15000 exceeds review threshold 10000")
}

func TestComposePicksTemplateByAction(t *testing.T) {
	id := uuid.New()

	approve := Compose(constants.ActionApprove, constants.DocTypeInvoice, id, nil, "")
	assert.Contains(t, approve.Subject, "Document Approved")

	flag := Compose(constants.ActionFlagForReview, constants.DocTypeInvoice, id, nil, "vendor not found")
	assert.Contains(t, flag.Subject, "Action Required")
}

func TestNotifySendsThroughTransport(t *testing.T) {
	tr := &fakeTransport{}
	n := New(tr, nil)

	err := n.Notify(context.Background(), "reviewer@example.com", constants.ActionApprove,
		constants.DocTypeInvoice, uuid.New(), map[string]string{"total_amount": "12.00"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, "reviewer@example.com", tr.to)
	assert.Contains(t, tr.subject, "Document Approved")
}

func TestNotifyRejectsInvalidEmail(t *testing.T) {
	tr := &fakeTransport{}
	n := New(tr, nil)

	for _, addr := range []string{"", "not-an-email", "missing@tld", "@example.com"} {
		err := n.Notify(context.Background(), addr, constants.ActionApprove,
			constants.DocTypeInvoice, uuid.New(), nil, "")
		require.Error(t, err, "address %q", addr)
		assert.ErrorIs(t, err, common.ErrNotifyFailure)
	}
	assert.Zero(t, tr.calls, "invalid addresses never reach the transport")
}

func TestNotifyDevModeWithoutTransport(t *testing.T) {
	n := New(nil, nil)

	err := n.Notify(context.Background(), "reviewer@example.com", constants.ActionFlagForReview,
		constants.DocTypeContract, uuid.New(), nil, "vendor not found")
	assert.NoError(t, err, "dev mode logs instead of sending")
}

func TestNotifyWrapsTransportFailure(t *testing.T) {
	tr := &fakeTransport{err: errors.New("relay refused")}
	n := New(tr, nil)

	err := n.Notify(context.Background(), "reviewer@example.com", constants.ActionApprove,
		constants.DocTypeInvoice, uuid.New(), nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotifyFailure)
	assert.Contains(t, err.Error(), "relay refused")
}
