package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/changedesk/internal/changeservice"
	"github.com/starford/changedesk/internal/portfolio"
)

// Handler holds API route handlers.
type Handler struct {
	svc *changeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *changeservice.Service) *Handler {
	return &Handler{svc: svc}
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid task id"))
		return 0, false
	}
	return id, true
}

// reportPath extracts the report path from the URL (everything after
// /api/reports/). Encoded slashes are accepted.
func reportPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func projectFilter(r *http.Request) portfolio.Filter {
	q := r.URL.Query()
	closed, _ := strconv.ParseBool(q.Get("include_closed"))
	return portfolio.Filter{
		StrategicGoal: q.Get("strategic_goal"),
		Sponsor:       q.Get("sponsor"),
		Status:        q.Get("status"),
		IncludeClosed: closed,
	}
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List triaged projects
//	@Tags			projects
//	@Produce		json
//	@Param			strategic_goal	query		string	false	"Filter by strategic goal"
//	@Param			sponsor			query		string	false	"Filter by sponsor"
//	@Param			status			query		string	false	"Filter by lifecycle status"
//	@Success		200				{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListProjects(r.Context(), projectFilter(r))
	if err != nil {
		writeServiceError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": items,
		"total":    len(items),
	})
}

// SubmitProject handles POST /api/projects.
//
//	@Summary		Triage a new change initiative
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProjectRequest	true	"Intake answers"
//	@Success		201		{object}	changeservice.Assessment
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) SubmitProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.SubmitProject(r.Context(), req.IntakeFields)
	if err != nil {
		writeServiceError(w, "submit project", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetProject handles GET /api/projects/{id}.
//
//	@Summary		Get a project with its playbook
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	changeservice.Assessment
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// RetriageProject handles PUT /api/projects/{id}.
//
//	@Summary		Re-score a project from edited intake answers
//	@Description	The stored playbook and lifecycle status are left unchanged.
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project ID"
//	@Param			body	body		ProjectRequest	true	"Intake answers"
//	@Success		200		{object}	changeservice.Assessment
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [put]
func (h *Handler) RetriageProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.Retriage(r.Context(), chi.URLParam(r, "id"), req.IntakeFields)
	if err != nil {
		writeServiceError(w, "retriage project", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteProject handles DELETE /api/projects/{id}.
//
//	@Summary		Delete a project with its playbook and snapshots
//	@Tags			projects
//	@Param			id	path	string	true	"Project ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateProjectStatus handles PUT /api/projects/{id}/status.
//
//	@Summary		Move a project through its lifecycle
//	@Tags			projects
//	@Accept			json
//	@Param			id		path	string			true	"Project ID"
//	@Param			body	body	StatusRequest	true	"New status"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/status [put]
func (h *Handler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.UpdateProjectStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeServiceError(w, "update project status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchProjects handles GET /api/search.
//
//	@Summary		Search projects by name, sponsor, goal or unit
//	@Tags			projects
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) SearchProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.svc.SearchProjects(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search projects", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

// ScoringModel handles GET /api/scoring-model.
func (h *Handler) ScoringModel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ScoringModel())
}
