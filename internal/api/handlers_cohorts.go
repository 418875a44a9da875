package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/changedesk/internal/models"
)

// SubmitCohort handles POST /api/cohorts.
//
//	@Summary		Curate a learning pathway for a cohort
//	@Description	A compliance finding is returned with the stored cohort and never blocks it.
//	@Tags			cohorts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CohortRequest	true	"Cohort profile"
//	@Success		201		{object}	changeservice.CohortOutcome
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cohorts [post]
func (h *Handler) SubmitCohort(w http.ResponseWriter, r *http.Request) {
	var req CohortRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.SubmitCohort(r.Context(), req.CohortFields)
	if err != nil {
		writeServiceError(w, "submit cohort", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// ListCohorts handles GET /api/cohorts.
func (h *Handler) ListCohorts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListCohorts(r.Context())
	if err != nil {
		writeServiceError(w, "list cohorts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cohorts": items, "total": len(items)})
}

// GetCohort handles GET /api/cohorts/{id}.
func (h *Handler) GetCohort(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCohort(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get cohort", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCohortExecution handles PUT /api/cohorts/{id}/execution.
//
//	@Summary		Move a cohort through its execution stages
//	@Tags			cohorts
//	@Accept			json
//	@Param			id		path	string			true	"Cohort ID"
//	@Param			body	body	StatusRequest	true	"Execution status"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cohorts/{id}/execution [put]
func (h *Handler) UpdateCohortExecution(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.UpdateCohortExecution(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeServiceError(w, "update cohort execution", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Gap handles GET /api/gap.
//
//	@Summary		Tag the behavioural shift between two scores
//	@Tags			cohorts
//	@Produce		json
//	@Param			baseline	query		int	true	"Baseline score (1-10)"
//	@Param			target		query		int	true	"Target score (1-10)"
//	@Success		200			{object}	pathway.GapResult
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/gap [get]
func (h *Handler) Gap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	baseline, err1 := strconv.Atoi(q.Get("baseline"))
	target, err2 := strconv.Atoi(q.Get("target"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("baseline and target must be integers"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Gap(baseline, target))
}

// CheckCompliance handles POST /api/compliance/check.
//
//	@Summary		Check a vendor against the data residency rules of a region
//	@Tags			compliance
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ComplianceRequest	true	"Region and vendor"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/compliance/check [post]
func (h *Handler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComplianceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	finding, err := h.svc.CheckCompliance(r.Context(), req.Region, req.Vendor)
	if err != nil {
		writeServiceError(w, "check compliance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"risk": finding != nil, "finding": finding})
}

// ListVendors handles GET /api/vendors.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListVendors(r.Context())
	if err != nil {
		writeServiceError(w, "list vendors", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vendors": items})
}

// UpsertVendor handles PUT /api/vendors/{name}.
//
//	@Summary		Create or replace one vendor registry record
//	@Tags			compliance
//	@Accept			json
//	@Param			name	path	string				true	"Vendor name"
//	@Param			body	body	models.VendorRecord	true	"Vendor"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vendors/{name} [put]
func (h *Handler) UpsertVendor(w http.ResponseWriter, r *http.Request) {
	var v models.VendorRecord
	if !decodeJSON(w, r, &v) {
		return
	}
	v.Name = chi.URLParam(r, "name")
	if err := h.svc.UpsertVendor(r.Context(), v); err != nil {
		writeServiceError(w, "upsert vendor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteVendor handles DELETE /api/vendors/{name}.
func (h *Handler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteVendor(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, "delete vendor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceVendors handles PUT /api/vendors.
//
//	@Summary		Replace the whole vendor registry
//	@Tags			compliance
//	@Accept			json
//	@Param			body	body	VendorsRequest	true	"Vendors"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vendors [put]
func (h *Handler) ReplaceVendors(w http.ResponseWriter, r *http.Request) {
	var req VendorsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ReloadVendors(r.Context(), req.Vendors); err != nil {
		writeServiceError(w, "replace vendors", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
