package cycle

import (
	"math"

	"breedcore/pkg/domain"
)

// Override bounds and conflict threshold. The range and message below are a
// user-facing contract and must not be reworded.
const (
	OverrideMinDays   = 30
	OverrideMaxDays   = 730
	ConflictThreshold = 0.20
)

// OverrideRangeMessage is the exact validation message for the
// femaleCycleLenOverrideDays field contract.
const OverrideRangeMessage = "must be an integer between 30 and 730 days"

// OverrideField is the update-payload field name governed by the contract.
const OverrideField = "femaleCycleLenOverrideDays"

// OverrideEvaluation reports whether a candidate override is acceptable and
// whether it conflicts with the statistical average. Conflict is advisory;
// it never blocks a save.
type OverrideEvaluation struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
	Conflict bool   `json:"conflict"`
}

// EvaluateOverride validates a candidate override against the [30, 730]
// integer contract and flags a conflict when it deviates from the known
// statistical average by more than twenty percent. With no average there is
// nothing to compare against, so no conflict is raised.
func EvaluateOverride(avgAll *int, candidate float64) OverrideEvaluation {
	days, err := ValidateOverrideDays(candidate)
	if err != nil {
		return OverrideEvaluation{Accepted: false, Error: OverrideRangeMessage}
	}
	eval := OverrideEvaluation{Accepted: true}
	if avgAll != nil && *avgAll > 0 {
		deviation := math.Abs(float64(days)-float64(*avgAll)) / float64(*avgAll)
		eval.Conflict = deviation > ConflictThreshold
	}
	return eval
}

// ValidateOverrideDays enforces the integer [30, 730] contract and returns
// the whole-day value. Failures carry the exact contract message on the
// femaleCycleLenOverrideDays field.
func ValidateOverrideDays(candidate float64) (int, error) {
	if candidate != math.Trunc(candidate) {
		return 0, domain.NewValidationError(OverrideField, OverrideRangeMessage)
	}
	days := int(candidate)
	if days < OverrideMinDays || days > OverrideMaxDays {
		return 0, domain.NewValidationError(OverrideField, OverrideRangeMessage)
	}
	return days, nil
}
