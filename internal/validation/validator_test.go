package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

type fakeVendorStore struct {
	vendors []models.Vendor
	err     error
}

func (s *fakeVendorStore) FindExact(_ context.Context, name string) (*models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.vendors {
		if s.vendors[i].Name == name {
			return &s.vendors[i], nil
		}
	}
	return nil, fmt.Errorf("vendor %q: %w", name, common.ErrNotFound)
}

func (s *fakeVendorStore) FindPartial(_ context.Context, substring string) (*models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	needle := strings.ToLower(substring)
	for i := range s.vendors {
		if strings.Contains(strings.ToLower(s.vendors[i].Name), needle) {
			return &s.vendors[i], nil
		}
	}
	return nil, fmt.Errorf("vendor %q: %w", substring, common.ErrNotFound)
}

func extractionFor(field, answer string) extraction.FieldExtraction {
	return extraction.FieldExtraction{Field: field, Answer: &answer, Confidence: 0.9}
}

func testStore() *fakeVendorStore {
	return &fakeVendorStore{vendors: []models.Vendor{
		{VendorID: "ACME001", Name: "Acme Corporation", Email: "billing@acme.com", IsApproved: true},
		{VendorID: "GTS002", Name: "Global Tech Solutions", IsApproved: true},
	}}
}

func TestValidateVendorExactMatch(t *testing.T) {
	v := New(nil, testStore(), Config{})

	out := v.Validate(context.Background(), extractionFor("vendor_name", "Acme Corporation"))
	assert.True(t, out.Valid)
	assert.True(t, out.Matched)
	assert.Equal(t, MatchExact, out.Match)
	require.NotNil(t, out.Vendor)
	assert.Equal(t, "ACME001", out.Vendor.VendorID)
	assert.Equal(t, 0.0, out.Vendor.Weight, "exact matches carry no weight")
}

func TestValidateVendorPartialMatch(t *testing.T) {
	v := New(nil, testStore(), Config{})

	out := v.Validate(context.Background(), extractionFor("vendor_name", "Acme"))
	assert.True(t, out.Valid)
	assert.True(t, out.Matched)
	assert.Equal(t, MatchPartial, out.Match)
	require.NotNil(t, out.Vendor)
	assert.Equal(t, "ACME001", out.Vendor.VendorID)
	assert.Equal(t, 0.7, out.Vendor.Weight)
}

func TestValidateVendorNotFound(t *testing.T) {
	v := New(nil, testStore(), Config{})

	out := v.Validate(context.Background(), extractionFor("vendor_name", "Shadow Vendors Ltd"))
	assert.False(t, out.Valid)
	assert.False(t, out.Matched)
	assert.Equal(t, MatchNone, out.Match)
	assert.Equal(t, "vendor not found in database", out.Reason)
}

func TestValidateVendorLookupError(t *testing.T) {
	v := New(nil, &fakeVendorStore{err: errors.New("connection refused")}, Config{})

	out := v.Validate(context.Background(), extractionFor("vendor_name", "Acme Corporation"))
	assert.False(t, out.Valid)
	assert.Contains(t, out.Error, "connection refused")
}

func TestValidateAmountThreshold(t *testing.T) {
	v := New(nil, testStore(), Config{AmountThreshold: 10000})

	tests := []struct {
		answer   string
		amount   float64
		exceeded bool
	}{
		{"500.00", 500, false},
		{"$1,250.50", 1250.5, false},
		{"10000", 10000, false}, // equal to the threshold does not trip
		{"10000.01", 10000.01, true},
		{"$15,000.00", 15000, true},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			out := v.Validate(context.Background(), extractionFor("total_amount", tt.answer))
			assert.True(t, out.Valid)
			require.NotNil(t, out.Amount)
			assert.Equal(t, tt.amount, out.Amount.Amount)
			assert.Equal(t, tt.exceeded, out.Amount.ThresholdExceeded)
			if tt.exceeded {
				assert.Equal(t, "Flag for review", out.Amount.Recommendation)
			}
		})
	}
}

func TestValidateAmountMalformed(t *testing.T) {
	v := New(nil, testStore(), Config{})

	for _, answer := range []string{"twelve dollars", "12.3.4"} {
		out := v.Validate(context.Background(), extractionFor("total_amount", answer))
		assert.False(t, out.Valid, "answer %q should not parse", answer)
		assert.Contains(t, out.Reason, "invalid amount format")
	}
}

func TestValidateDatePlausibility(t *testing.T) {
	v := New(nil, testStore(), Config{})
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	out := v.Validate(context.Background(), extractionFor("invoice_date", "2026-03-15"))
	assert.True(t, out.Valid)
	require.NotNil(t, out.Date)
	assert.Equal(t, 92, out.Date.DriftDays)

	// exactly ten years back stays plausible
	out = v.Validate(context.Background(), extractionFor("invoice_date", now.AddDate(0, 0, -3650).Format("2006-01-02")))
	assert.True(t, out.Valid)

	// one day past the bound does not
	out = v.Validate(context.Background(), extractionFor("invoice_date", now.AddDate(0, 0, -3651).Format("2006-01-02")))
	assert.False(t, out.Valid)
	assert.Equal(t, "implausible date", out.Reason)
}

func TestValidateDateMalformed(t *testing.T) {
	v := New(nil, testStore(), Config{})

	out := v.Validate(context.Background(), extractionFor("due_date", "whenever works"))
	assert.False(t, out.Valid)
	assert.Contains(t, out.Reason, "invalid date format")
}

func TestValidateDateFormats(t *testing.T) {
	v := New(nil, testStore(), Config{})
	v.now = func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }

	for _, answer := range []string{"2026-01-15", "January 15, 2026", "01/15/2026", "15 Jan 2026"} {
		out := v.Validate(context.Background(), extractionFor("invoice_date", answer))
		assert.True(t, out.Valid, "date %q should parse", answer)
	}
}

func TestValidatePassthroughField(t *testing.T) {
	v := New(nil, testStore(), Config{})

	out := v.Validate(context.Background(), extractionFor("invoice_number", "INV-2024-001"))
	assert.True(t, out.Valid)
	assert.True(t, out.Matched)
	assert.Equal(t, constants.KindPassthrough, out.Kind)

	out = v.Validate(context.Background(), extractionFor("tax_amount", "not even a number"))
	assert.True(t, out.Valid, "tax_amount carries no amount rule")
}

func TestValidateNilAnswer(t *testing.T) {
	v := New(nil, testStore(), Config{})

	out := v.Validate(context.Background(), extraction.FieldExtraction{Field: "vendor_name"})
	assert.False(t, out.Valid)
	assert.Equal(t, "no extracted answer", out.Reason)
}

func TestValidateBlankAnswerNeverMatchesVendor(t *testing.T) {
	v := New(nil, testStore(), Config{})

	// an empty substring would match the first vendor in the store; a blank
	// answer must fail like a missing one instead
	for _, answer := range []string{"", "   ", "\n\t"} {
		out := v.Validate(context.Background(), extractionFor("vendor_name", answer))
		assert.False(t, out.Valid, "answer %q", answer)
		assert.False(t, out.Matched)
		assert.Equal(t, MatchNone, out.Match)
		assert.Nil(t, out.Vendor)
		assert.Equal(t, "no extracted answer", out.Reason)
	}

	out := v.Validate(context.Background(), extractionFor("total_amount", "   "))
	assert.False(t, out.Valid)
	assert.Equal(t, "no extracted answer", out.Reason)
}
