package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"breedcore/pkg/cycle"
	"breedcore/pkg/domain"
	"breedcore/pkg/species"
)

type createFemaleRequest struct {
	Name       string   `json:"name"`
	Species    string   `json:"species"`
	Hemisphere string   `json:"hemisphere"`
	HeatDates  []string `json:"heatDates"`
}

func (h *Handler) createFemale(w http.ResponseWriter, r *http.Request) {
	var req createFemaleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sp, known := species.Parse(req.Species)
	if req.Species != "" && !known {
		h.writeError(w, r, domain.NewValidationError("species", "unknown species code"))
		return
	}
	female := domain.Female{Name: req.Name, Species: sp, Hemisphere: species.Hemisphere(req.Hemisphere)}
	for _, raw := range req.HeatDates {
		d, err := parseDate(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		female.HeatDates = append(female.HeatDates, d)
	}
	created, _, err := h.svc.CreateFemale(r.Context(), female)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getFemale(w http.ResponseWriter, r *http.Request) {
	female, err := h.svc.GetFemale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, female)
}

func (h *Handler) listFemales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListFemales(r.Context()))
}

// updateFemale applies partial updates. The override field follows the
// tri-state payload contract: present with a value sets, present as null
// clears, absent leaves the override alone.
func (h *Handler) updateFemale(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := decodeJSON(r, &fields); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	female, err := h.svc.GetFemale(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if raw, ok := fields[cycle.OverrideField]; ok {
		var value *float64
		if string(raw) != "null" {
			var v float64
			if jsonErr := json.Unmarshal(raw, &v); jsonErr != nil {
				h.writeError(w, r, domain.NewValidationError(cycle.OverrideField, cycle.OverrideRangeMessage))
				return
			}
			value = &v
		}
		if female, _, err = h.svc.SetCycleOverrideField(r.Context(), id, value); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, female)
}

type recordHeatRequest struct {
	Date string `json:"date"`
}

func (h *Handler) recordHeat(w http.ResponseWriter, r *http.Request) {
	var req recordHeatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	female, _, err := h.svc.RecordHeatEvent(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, female)
}

type cycleSummaryResponse struct {
	cycle.Summary
	SeasonalWindow *species.Window `json:"seasonalWindow,omitempty"`
}

func (h *Handler) cycleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := h.svc.CycleSummary(r.Context(), id, cycle.Options{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := cycleSummaryResponse{Summary: summary}
	if female, err := h.svc.GetFemale(r.Context(), id); err == nil {
		if window, ok := species.SeasonalWindow(female.Species, female.Hemisphere); ok {
			resp.SeasonalWindow = &window
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type evaluateOverrideRequest struct {
	Days float64 `json:"days"`
}

func (h *Handler) evaluateOverride(w http.ResponseWriter, r *http.Request) {
	var req evaluateOverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	eval, err := h.svc.EvaluateOverrideCandidate(r.Context(), chi.URLParam(r, "id"), req.Days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eval)
}
