package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/changedesk/internal/changeservice"
)

// AnalyzeFriction handles POST /api/narratives/friction.
//
//	@Summary		Draft a friction and sludge report from staff notes
//	@Description	Provider failures are reported in the draft text, never as an HTTP error.
//	@Tags			narratives
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TextsRequest	true	"Notes"
//	@Success		200		{object}	changeservice.NarrativeResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/narratives/friction [post]
func (h *Handler) AnalyzeFriction(w http.ResponseWriter, r *http.Request) {
	var req TextsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AnalyzeFriction(r.Context(), req.ProjectID, req.Items)
	if err != nil {
		writeServiceError(w, "analyze friction", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AnalyzeSurvey handles POST /api/narratives/survey.
func (h *Handler) AnalyzeSurvey(w http.ResponseWriter, r *http.Request) {
	var req TextsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AnalyzeSurvey(r.Context(), req.ProjectID, req.Items)
	if err != nil {
		writeServiceError(w, "analyze survey", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ComplianceBrief handles POST /api/narratives/compliance-brief.
//
//	@Summary		Draft an ethical risk brief for Legal and Risk
//	@Tags			narratives
//	@Accept			json
//	@Produce		json
//	@Param			body	body		changeservice.ComplianceBriefInput	true	"Program"
//	@Success		200		{object}	changeservice.NarrativeResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/narratives/compliance-brief [post]
func (h *Handler) ComplianceBrief(w http.ResponseWriter, r *http.Request) {
	var req changeservice.ComplianceBriefInput
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ComplianceBrief(r.Context(), req)
	if err != nil {
		writeServiceError(w, "compliance brief", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// StatusAnchorDialogue handles POST /api/narratives/status-anchor.
func (h *Handler) StatusAnchorDialogue(w http.ResponseWriter, r *http.Request) {
	var req changeservice.StatusAnchorInput
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.StatusAnchorDialogue(r.Context(), req)
	if err != nil {
		writeServiceError(w, "status anchor dialogue", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ChangeBrief handles POST /api/projects/{id}/brief.
func (h *Handler) ChangeBrief(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ChangeBrief(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "change brief", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DevelopLeader handles POST /api/leaders.
//
//	@Summary		Store a leader diagnostic and draft its 90-day protocol
//	@Tags			leaders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		changeservice.LeaderDiagnosticInput	true	"Diagnostic answers"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leaders [post]
func (h *Handler) DevelopLeader(w http.ResponseWriter, r *http.Request) {
	var req changeservice.LeaderDiagnosticInput
	if !decodeJSON(w, r, &req) {
		return
	}
	d, res, err := h.svc.DevelopLeader(r.Context(), req)
	if err != nil {
		writeServiceError(w, "develop leader", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"diagnostic": d, "narrative": res})
}

// ListDiagnostics handles GET /api/leaders.
func (h *Handler) ListDiagnostics(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListDiagnostics(r.Context())
	if err != nil {
		writeServiceError(w, "list diagnostics", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnostics": items})
}

// ListReports handles GET /api/reports.
//
//	@Summary		List archived narrative reports, newest first
//	@Tags			reports
//	@Produce		json
//	@Param			kind	query		string	false	"Filter by prompt kind"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/reports [get]
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Reports(r.URL.Query().Get("kind"))
	if err != nil {
		writeServiceError(w, "list reports", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": items})
}

// GetReport handles GET /api/reports/*.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	path := reportPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	rep, err := h.svc.Report(path)
	if err != nil {
		writeServiceError(w, "get report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
