package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"breedcore/pkg/domain"
)

type errorBody struct {
	Error      string             `json:"error"`
	Code       string             `json:"code"`
	Field      string             `json:"field,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rve domain.RuleViolationError
	if errors.As(err, &rve) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error:      rve.Error(),
			Code:       "rule_violation",
			Violations: rve.Result.Violations,
		})
		return
	}
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		writeJSON(w, statusForCode(derr.Code), errorBody{
			Error: derr.Message,
			Code:  string(derr.Code),
			Field: derr.Field,
		})
		return
	}
	h.logger.Error("unhandled error", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: string(domain.CodeInternal)})
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeStaleWrite, domain.CodeInvalidTransition,
		domain.CodeDateOutOfSequence, domain.CodeBirthDateLocked,
		domain.CodeUnlinkBlocked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON payload")
	}
	return nil
}

// parseDate accepts bare ISO dates and full RFC3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError("date", "must be an ISO date")
}
