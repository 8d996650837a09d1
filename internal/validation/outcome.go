package validation

import (
	"time"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
)

// MatchKind describes how an entity lookup resolved.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchPartial MatchKind = "partial"
	MatchNone    MatchKind = "none"
)

// partialMatchWeight is attached to substring vendor matches. It is distinct
// from the extraction confidence.
const partialMatchWeight = 0.7

// maxDateDriftDays bounds how far from now a document date may plausibly be.
const maxDateDriftDays = 3650

// VendorCheck carries the vendor-lookup detail of an outcome.
type VendorCheck struct {
	VendorID   string
	IsApproved bool
	Email      string
	Phone      string
	Weight     float64 // partialMatchWeight on partial matches, 0 otherwise
}

// AmountCheck carries the threshold-check detail of an outcome. The
// recommendation tag is advisory input to the decision engine, never itself
// a decision.
type AmountCheck struct {
	Amount            float64
	Threshold         float64
	ThresholdExceeded bool
	Recommendation    string
}

// DateCheck carries the plausibility detail of a date outcome.
type DateCheck struct {
	Parsed    time.Time
	DriftDays int
}

// Outcome is the result of validating exactly one FieldExtraction.
type Outcome struct {
	Field   string
	Kind    constants.FieldKind
	Valid   bool
	Matched bool
	Match   MatchKind

	Vendor *VendorCheck
	Amount *AmountCheck
	Date   *DateCheck

	Reason string // human-readable failure reason, empty when valid
	Error  string // internal validator failure, captured, never thrown past
}
