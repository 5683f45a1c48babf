// Package httpapi exposes the breeding date engine over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"breedcore/internal/core"
)

// Handler bundles the service with the HTTP surface.
type Handler struct {
	svc    *core.Service
	logger *slog.Logger
}

// New constructs a handler over the service.
func New(svc *core.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Router builds the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/females", func(fr chi.Router) {
			fr.Get("/", h.listFemales)
			fr.Post("/", h.createFemale)
			fr.Get("/{id}", h.getFemale)
			fr.Patch("/{id}", h.updateFemale)
			fr.Post("/{id}/heats", h.recordHeat)
			fr.Get("/{id}/cycle-summary", h.cycleSummary)
			fr.Post("/{id}/cycle-override/evaluate", h.evaluateOverride)
		})
		api.Route("/plans", func(pr chi.Router) {
			pr.Get("/", h.listPlans)
			pr.Post("/", h.createPlan)
			pr.Get("/{id}", h.getPlan)
			pr.Post("/{id}/events", h.recordPlanEvent)
			pr.Post("/{id}/corrections", h.correctPlanDate)
			pr.Delete("/{id}/dates/{stage}", h.clearPlanDate)
			pr.Post("/{id}/cancel", h.cancelPlan)
			pr.Post("/{id}/unlink-group", h.unlinkGroup)
		})
		api.Route("/groups", func(gr chi.Router) {
			gr.Get("/", h.listGroups)
			gr.Get("/{id}", h.getGroup)
			gr.Get("/{id}/members", h.listGroupMembers)
			gr.Get("/{id}/deletion-evaluation", h.evaluateGroupDeletion)
			gr.Post("/{id}/offspring", h.addOffspring)
			gr.Delete("/{id}", h.deleteGroup)
		})
		api.Route("/offspring", func(or chi.Router) {
			or.Get("/{id}", h.getOffspring)
			or.Get("/{id}/deletion-evaluation", h.evaluateOffspringDeletion)
			or.Delete("/{id}", h.deleteOffspring)
			or.Patch("/{id}/flags", h.updateOffspringFlags)
			or.Post("/{id}/archive", h.archiveOffspring)
			or.Post("/{id}/restore", h.restoreOffspring)
			or.Post("/{id}/documents", h.attachDocument)
		})
	})
	return r
}
