package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"breedcore/pkg/domain"
)

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.GetOffspringGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListOffspringGroups(r.Context()))
}

func (h *Handler) listGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListGroupMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type addOffspringRequest struct {
	Name string `json:"name"`
}

func (h *Handler) addOffspring(w http.ResponseWriter, r *http.Request) {
	var req addOffspringRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, _, err := h.svc.AddOffspring(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getOffspring(w http.ResponseWriter, r *http.Request) {
	ind, err := h.svc.GetOffspringIndividual(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

func (h *Handler) evaluateOffspringDeletion(w http.ResponseWriter, r *http.Request) {
	decision, err := h.svc.EvaluateOffspringDeletion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (h *Handler) evaluateGroupDeletion(w http.ResponseWriter, r *http.Request) {
	decision, err := h.svc.EvaluateGroupDeletion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (h *Handler) deleteOffspring(w http.ResponseWriter, r *http.Request) {
	decision, _, err := h.svc.DeleteOffspring(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if domain.IsCode(err, domain.CodeValidation) {
			writeJSON(w, http.StatusConflict, decision)
			return
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	decision, _, err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if domain.IsCode(err, domain.CodeValidation) {
			writeJSON(w, http.StatusConflict, decision)
			return
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

type flagsRequest struct {
	HasBuyer        *bool `json:"hasBuyer"`
	IsPlaced        *bool `json:"isPlaced"`
	HasFinance      *bool `json:"hasFinance"`
	HasPayments     *bool `json:"hasPayments"`
	HasContract     *bool `json:"hasContract"`
	PromotedToAdult *bool `json:"promotedToAdult"`
	IsDeceased      *bool `json:"isDeceased"`
	HasHealthEvents *bool `json:"hasHealthEvents"`
	HasDocuments    *bool `json:"hasDocuments"`
	HasInvoices     *bool `json:"hasInvoices"`
}

func (h *Handler) updateOffspringFlags(w http.ResponseWriter, r *http.Request) {
	var req flagsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	updated, _, err := h.svc.UpdateOffspringFlags(r.Context(), chi.URLParam(r, "id"), func(f *domain.ActivityFlags) {
		apply(&f.HasBuyer, req.HasBuyer)
		apply(&f.IsPlaced, req.IsPlaced)
		apply(&f.HasFinance, req.HasFinance)
		apply(&f.HasPayments, req.HasPayments)
		apply(&f.HasContract, req.HasContract)
		apply(&f.PromotedToAdult, req.PromotedToAdult)
		apply(&f.IsDeceased, req.IsDeceased)
		apply(&f.HasHealthEvents, req.HasHealthEvents)
		apply(&f.HasDocuments, req.HasDocuments)
		apply(&f.HasInvoices, req.HasInvoices)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) archiveOffspring(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, _, err := h.svc.ArchiveOffspring(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) restoreOffspring(w http.ResponseWriter, r *http.Request) {
	updated, _, err := h.svc.RestoreOffspring(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// attachDocument stores the raw request body as a document. The file name
// comes from the filename query parameter, the MIME type from Content-Type.
func (h *Handler) attachDocument(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	updated, info, err := h.svc.AttachOffspringDocument(r.Context(),
		chi.URLParam(r, "id"), filename, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"offspring": updated, "document": info})
}
