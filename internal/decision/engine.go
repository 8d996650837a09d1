package decision

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/validation"
)

// Decision is a workflow action plus the human-readable rationale behind it.
type Decision struct {
	Action    constants.WorkflowAction
	Rationale string
}

// Decide maps extractions and validations to a workflow action. Pure and
// deterministic: identical inputs always yield an identical decision.
//
// Rules evaluate in fixed precedence; the first match wins:
//  1. any amount validation with the threshold exceeded -> flag_for_review
//  2. vendor validation unmatched                       -> flag_for_review
//  3. any validation invalid                            -> flag_for_review
//  4. otherwise                                         -> approve
//
// reject and request_more_info are declared actions with no producing rule;
// they stay reachable for extended rule sets only.
func Decide(docType constants.DocumentType, extractions []extraction.FieldExtraction, outcomes []validation.Outcome) Decision {
	// Rule 1: threshold breach outranks everything else.
	for _, out := range outcomes {
		if out.Amount != nil && out.Amount.ThresholdExceeded {
			return Decision{
				Action: constants.ActionFlagForReview,
				Rationale: fmt.Sprintf("%s %s exceeds review threshold %s",
					out.Field,
					formatAmount(out.Amount.Amount),
					formatAmount(out.Amount.Threshold)),
			}
		}
	}

	// Rule 2: unknown vendor. A lookup failure is not an absent vendor; it
	// falls through to rule 3 so the rationale cites the real error.
	for _, out := range outcomes {
		if out.Kind == constants.KindVendor && !out.Matched && out.Error == "" {
			rationale := "vendor not found"
			if name := answerFor(extractions, out.Field); name != "" {
				rationale = fmt.Sprintf("vendor not found: %q", name)
			}
			return Decision{Action: constants.ActionFlagForReview, Rationale: rationale}
		}
	}

	// Rule 3: any remaining parse, format, or range failure.
	var failing []string
	for _, out := range outcomes {
		if !out.Valid {
			reason := out.Reason
			if reason == "" {
				reason = out.Error
			}
			failing = append(failing, fmt.Sprintf("%s (%s)", out.Field, reason))
		}
	}
	if len(failing) > 0 {
		return Decision{
			Action:    constants.ActionFlagForReview,
			Rationale: "validation failed: " + strings.Join(failing, "; "),
		}
	}

	// Rule 4: nothing to object to.
	return Decision{
		Action: constants.ActionApprove,
		Rationale: fmt.Sprintf("all validations passed for %s (%d fields extracted, %d validated)",
			docType, len(extractions), len(outcomes)),
	}
}

func answerFor(extractions []extraction.FieldExtraction, field string) string {
	for _, ex := range extractions {
		if ex.Field == field && ex.Answer != nil {
			return *ex.Answer
		}
	}
	return ""
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
