package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

// VendorStore is the reference vendor lookup the vendor validator consults.
// Lookups must be deterministic given a fixed store ordering; when several
// rows match a substring, the first row wins.
type VendorStore interface {
	FindExact(ctx context.Context, name string) (*models.Vendor, error)
	FindPartial(ctx context.Context, substring string) (*models.Vendor, error)
}

// Config holds tunable business rules.
type Config struct {
	AmountThreshold float64 // default 10000.0
}

// Validator applies per-field-kind checks against reference data and business
// configuration. It never panics past its boundary; internal failures are
// captured into the outcome's Error field.
type Validator struct {
	logger  *slog.Logger
	vendors VendorStore
	cfg     Config
	now     func() time.Time
}

func New(logger *slog.Logger, vendors VendorStore, cfg Config) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AmountThreshold <= 0 {
		cfg.AmountThreshold = 10000.0
	}
	return &Validator{logger: logger, vendors: vendors, cfg: cfg, now: time.Now}
}

// Validate checks one extraction, dispatching on the closed field-kind
// mapping. A field with no usable answer is never valid.
func (v *Validator) Validate(ctx context.Context, ex extraction.FieldExtraction) Outcome {
	kind := constants.KindForField(ex.Field)

	// A blank answer must never reach the lookups: an empty substring would
	// match every vendor.
	if ex.Answer == nil || strings.TrimSpace(*ex.Answer) == "" {
		return Outcome{
			Field:  ex.Field,
			Kind:   kind,
			Valid:  false,
			Match:  MatchNone,
			Reason: "no extracted answer",
		}
	}
	answer := strings.TrimSpace(*ex.Answer)

	var out Outcome
	switch kind {
	case constants.KindVendor:
		out = v.validateVendor(ctx, answer)
	case constants.KindAmount:
		out = v.validateAmount(answer)
	case constants.KindDate:
		out = v.validateDate(answer)
	default:
		// No business rule defined for this field.
		out = Outcome{Valid: true, Matched: true, Match: MatchNone}
	}
	out.Field = ex.Field
	out.Kind = kind

	v.logger.Info("validate.field",
		"field", ex.Field,
		"kind", kind,
		"valid", out.Valid,
		"matched", out.Matched,
		"match", out.Match,
	)
	return out
}

// validateVendor tries an exact case-sensitive match first, then a
// case-insensitive substring match with a fixed 0.7 weight on the outcome.
func (v *Validator) validateVendor(ctx context.Context, name string) Outcome {
	vendor, err := v.vendors.FindExact(ctx, name)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		v.logger.Error("validate.vendor.lookup_failed", "name", name, "error", err)
		return Outcome{Valid: false, Match: MatchNone, Error: err.Error()}
	}
	if vendor != nil {
		return Outcome{
			Valid:   true,
			Matched: true,
			Match:   MatchExact,
			Vendor: &VendorCheck{
				VendorID:   vendor.VendorID,
				IsApproved: vendor.IsApproved,
				Email:      vendor.Email,
				Phone:      vendor.Phone,
			},
		}
	}

	vendor, err = v.vendors.FindPartial(ctx, name)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		v.logger.Error("validate.vendor.lookup_failed", "name", name, "error", err)
		return Outcome{Valid: false, Match: MatchNone, Error: err.Error()}
	}
	if vendor != nil {
		return Outcome{
			Valid:   true,
			Matched: true,
			Match:   MatchPartial,
			Vendor: &VendorCheck{
				VendorID:   vendor.VendorID,
				IsApproved: vendor.IsApproved,
				Email:      vendor.Email,
				Phone:      vendor.Phone,
				Weight:     partialMatchWeight,
			},
		}
	}

	return Outcome{
		Valid:   false,
		Matched: false,
		Match:   MatchNone,
		Reason:  "vendor not found in database",
	}
}

// validateAmount parses the answer as a decimal and checks it against the
// review threshold. Strictly greater than the threshold trips the flag; an
// amount equal to the threshold does not.
func (v *Validator) validateAmount(answer string) Outcome {
	amount, err := parseAmount(answer)
	if err != nil {
		return Outcome{
			Valid:  false,
			Match:  MatchNone,
			Reason: fmt.Sprintf("invalid amount format: %q", answer),
		}
	}

	check := &AmountCheck{Amount: amount, Threshold: v.cfg.AmountThreshold}
	if amount > v.cfg.AmountThreshold {
		check.ThresholdExceeded = true
		check.Recommendation = "Flag for review"
	}
	return Outcome{Valid: true, Matched: true, Match: MatchNone, Amount: check}
}

// parseAmount tolerates the currency punctuation question-answering models
// echo back ("$15,000.00") but otherwise requires a plain decimal.
func parseAmount(answer string) (float64, error) {
	s := strings.TrimSpace(answer)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// validateDate parses permissively, then rejects dates more than ten years
// from now in either direction.
func (v *Validator) validateDate(answer string) Outcome {
	parsed, err := dateparse.ParseAny(answer)
	if err != nil {
		return Outcome{
			Valid:  false,
			Match:  MatchNone,
			Reason: fmt.Sprintf("invalid date format: %q", answer),
		}
	}

	drift := int(math.Abs(v.now().Sub(parsed).Hours() / 24))
	check := &DateCheck{Parsed: parsed, DriftDays: drift}
	if drift > maxDateDriftDays {
		return Outcome{
			Valid:  false,
			Match:  MatchNone,
			Date:   check,
			Reason: "implausible date",
		}
	}
	return Outcome{Valid: true, Matched: true, Match: MatchNone, Date: check}
}
