package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/changedesk/internal/changeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *changeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.SubmitProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProject)
			r.Put("/", h.RetriageProject)
			r.Delete("/", h.DeleteProject)
			r.Put("/status", h.UpdateProjectStatus)
			r.Post("/playbook/regenerate", h.RegeneratePlaybook)
			r.Get("/tasks", h.ListTasks)
			r.Post("/tasks", h.AddTask)
			r.Put("/tasks/{taskID}/status", h.UpdateTaskStatus)
			r.Put("/tasks/{taskID}/position", h.MoveTask)
			r.Delete("/tasks/{taskID}", h.RemoveTask)
			r.Get("/snapshots", h.ListProjectSnapshots)
			r.Post("/snapshots", h.RecordSnapshot)
			r.Post("/brief", h.ChangeBrief)
		})
	})
	r.Get("/search", h.SearchProjects)
	r.Get("/snapshots", h.ListSnapshots)
	r.Get("/scoring-model", h.ScoringModel)

	r.Route("/cohorts", func(r chi.Router) {
		r.Get("/", h.ListCohorts)
		r.Post("/", h.SubmitCohort)
		r.Get("/{id}", h.GetCohort)
		r.Put("/{id}/execution", h.UpdateCohortExecution)
	})
	r.Get("/gap", h.Gap)
	r.Post("/compliance/check", h.CheckCompliance)

	r.Get("/vendors", h.ListVendors)
	r.Put("/vendors", h.ReplaceVendors)
	r.Put("/vendors/{name}", h.UpsertVendor)
	r.Delete("/vendors/{name}", h.DeleteVendor)

	r.Get("/portfolio", h.Portfolio)
	r.Get("/portfolio/cohorts", h.CohortPortfolio)

	r.Post("/narratives/friction", h.AnalyzeFriction)
	r.Post("/narratives/survey", h.AnalyzeSurvey)
	r.Post("/narratives/compliance-brief", h.ComplianceBrief)
	r.Post("/narratives/status-anchor", h.StatusAnchorDialogue)

	r.Get("/leaders", h.ListDiagnostics)
	r.Post("/leaders", h.DevelopLeader)

	r.Get("/reports", h.ListReports)
	r.Get("/reports/*", h.GetReport)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
