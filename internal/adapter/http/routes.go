package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	if h.Hub != nil {
		r.Get("/ws", h.Hub.HandleWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		r.Post("/epics/orchestrate", h.OrchestrateEpic)
		r.Post("/epics/orchestrate/summary", h.OrchestrateEpicSummary)
		r.Get("/epics/{issueNumber}/context", h.GetEpicContext)

		r.Get("/providers", h.ListProviders)
		r.Get("/providers/{domain}", h.GetProvider)

		r.Get("/metrics/summary", h.MetricsSummary)
		r.Get("/metrics/thresholds", h.MetricsThresholds)
	})
}
