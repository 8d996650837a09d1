package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/validation"
)

func ex(field, answer string) extraction.FieldExtraction {
	return extraction.FieldExtraction{Field: field, Answer: &answer, Confidence: 0.9}
}

func validOutcome(field string) validation.Outcome {
	return validation.Outcome{Field: field, Valid: true, Matched: true}
}

func TestDecideApprovesWhenAllValid(t *testing.T) {
	outcomes := []validation.Outcome{
		validOutcome("invoice_number"),
		{Field: "vendor_name", Kind: constants.KindVendor, Valid: true, Matched: true, Match: validation.MatchExact},
		{Field: "total_amount", Kind: constants.KindAmount, Valid: true, Matched: true,
			Amount: &validation.AmountCheck{Amount: 500, Threshold: 10000}},
	}

	dec := Decide(constants.DocTypeInvoice, []extraction.FieldExtraction{ex("invoice_number", "INV-1")}, outcomes)
	assert.Equal(t, constants.ActionApprove, dec.Action)
	assert.Contains(t, dec.Rationale, "all validations passed")
}

func TestDecideFlagsThresholdBreach(t *testing.T) {
	outcomes := []validation.Outcome{
		{Field: "total_amount", Kind: constants.KindAmount, Valid: true, Matched: true,
			Amount: &validation.AmountCheck{Amount: 15000, Threshold: 10000, ThresholdExceeded: true}},
	}

	dec := Decide(constants.DocTypeInvoice, nil, outcomes)
	assert.Equal(t, constants.ActionFlagForReview, dec.Action)
	assert.Contains(t, dec.Rationale, "total_amount")
	assert.Contains(t, dec.Rationale, "15000")
	assert.Contains(t, dec.Rationale, "10000")
}

func TestDecideFlagsUnknownVendor(t *testing.T) {
	extractions := []extraction.FieldExtraction{ex("vendor_name", "Shadow Vendors Ltd")}
	outcomes := []validation.Outcome{
		{Field: "vendor_name", Kind: constants.KindVendor, Valid: false, Matched: false,
			Match: validation.MatchNone, Reason: "vendor not found in database"},
	}

	dec := Decide(constants.DocTypeInvoice, extractions, outcomes)
	assert.Equal(t, constants.ActionFlagForReview, dec.Action)
	assert.Contains(t, dec.Rationale, "vendor not found")
	assert.Contains(t, dec.Rationale, "Shadow Vendors Ltd")
}

func TestDecideThresholdOutranksVendor(t *testing.T) {
	outcomes := []validation.Outcome{
		{Field: "vendor_name", Kind: constants.KindVendor, Valid: false, Matched: false,
			Reason: "vendor not found in database"},
		{Field: "total_amount", Kind: constants.KindAmount, Valid: true, Matched: true,
			Amount: &validation.AmountCheck{Amount: 99999, Threshold: 10000, ThresholdExceeded: true}},
	}

	dec := Decide(constants.DocTypeInvoice, nil, outcomes)
	assert.Equal(t, constants.ActionFlagForReview, dec.Action)
	assert.Contains(t, dec.Rationale, "exceeds review threshold",
		"a threshold breach must win over the vendor rule regardless of outcome order")
}

func TestDecideFlagsInvalidFields(t *testing.T) {
	outcomes := []validation.Outcome{
		validOutcome("invoice_number"),
		{Field: "invoice_date", Kind: constants.KindDate, Valid: false, Reason: "implausible date"},
		{Field: "due_date", Kind: constants.KindDate, Valid: false, Reason: `invalid date format: "soon"`},
	}

	dec := Decide(constants.DocTypeInvoice, nil, outcomes)
	assert.Equal(t, constants.ActionFlagForReview, dec.Action)
	assert.Contains(t, dec.Rationale, "validation failed")
	assert.Contains(t, dec.Rationale, "invoice_date (implausible date)")
	assert.Contains(t, dec.Rationale, "due_date")
}

func TestDecideVendorLookupErrorIsNotVendorNotFound(t *testing.T) {
	outcomes := []validation.Outcome{
		{Field: "vendor_name", Kind: constants.KindVendor, Valid: false, Matched: false,
			Error: "lookup vendor: connection refused"},
	}

	dec := Decide(constants.DocTypeInvoice, nil, outcomes)
	assert.Equal(t, constants.ActionFlagForReview, dec.Action)
	assert.NotContains(t, dec.Rationale, "vendor not found",
		"an outage must not read as an absent vendor in the audit trail")
	assert.Contains(t, dec.Rationale, "validation failed")
	assert.Contains(t, dec.Rationale, "connection refused")
}

func TestDecideIsDeterministic(t *testing.T) {
	extractions := []extraction.FieldExtraction{ex("vendor_name", "Nobody")}
	outcomes := []validation.Outcome{
		{Field: "vendor_name", Kind: constants.KindVendor, Valid: false, Matched: false, Reason: "vendor not found in database"},
	}

	first := Decide(constants.DocTypeContract, extractions, outcomes)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Decide(constants.DocTypeContract, extractions, outcomes))
	}
}

func TestDecideEmptyInputsApprove(t *testing.T) {
	dec := Decide(constants.DocTypeOther, nil, nil)
	assert.Equal(t, constants.ActionApprove, dec.Action)
}
