package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"breedcore/internal/core"
	"breedcore/pkg/domain"
)

type createPlanRequest struct {
	Name     string `json:"name"`
	FemaleID string `json:"femaleId"`
}

func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	plan, _, err := h.svc.CreateBreedingPlan(r.Context(), req.Name, req.FemaleID, actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.GetBreedingPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListBreedingPlans(r.Context()))
}

type planEventRequest struct {
	Stage           string `json:"stage"`
	Date            string `json:"date"`
	ExpectedVersion int64  `json:"expectedVersion"`
	Strict          bool   `json:"strict"`
}

func (h *Handler) planEventInput(r *http.Request) (core.PlanEventInput, error) {
	var req planEventRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.PlanEventInput{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.PlanEventInput{}, err
	}
	return core.PlanEventInput{
		PlanID:          chi.URLParam(r, "id"),
		Stage:           domain.PlanStage(req.Stage),
		Date:            date,
		ExpectedVersion: req.ExpectedVersion,
		Actor:           actorFrom(r),
		Strict:          req.Strict,
	}, nil
}

func (h *Handler) recordPlanEvent(w http.ResponseWriter, r *http.Request) {
	input, err := h.planEventInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	plan, res, err := h.svc.RecordPlanEvent(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planEventResponse{Plan: plan, Warnings: res.Warnings()})
}

func (h *Handler) correctPlanDate(w http.ResponseWriter, r *http.Request) {
	input, err := h.planEventInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	plan, res, err := h.svc.CorrectPlanDate(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planEventResponse{Plan: plan, Warnings: res.Warnings()})
}

type planEventResponse struct {
	Plan     domain.BreedingPlan `json:"plan"`
	Warnings []domain.Violation  `json:"warnings,omitempty"`
}

func (h *Handler) clearPlanDate(w http.ResponseWriter, r *http.Request) {
	plan, _, err := h.svc.ClearPlanDate(r.Context(),
		chi.URLParam(r, "id"),
		domain.PlanStage(chi.URLParam(r, "stage")),
		0,
		actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) cancelPlan(w http.ResponseWriter, r *http.Request) {
	plan, _, err := h.svc.CancelPlan(r.Context(), chi.URLParam(r, "id"), 0, actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) unlinkGroup(w http.ResponseWriter, r *http.Request) {
	plan, _, err := h.svc.UnlinkGroup(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// actorFrom reads the audit actor from the conventional header.
func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor")
}
