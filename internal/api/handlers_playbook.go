package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListTasks handles GET /api/projects/{id}/tasks.
//
//	@Summary		List the playbook of a project in order
//	@Tags			playbook
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// AddTask handles POST /api/projects/{id}/tasks.
//
//	@Summary		Append a custom task to a playbook
//	@Tags			playbook
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Project ID"
//	@Param			body	body		TaskRequest	true	"Task"
//	@Success		201		{object}	models.PlaybookTask
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks [post]
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.svc.AddTask(r.Context(), chi.URLParam(r, "id"), req.Category, req.Description)
	if err != nil {
		writeServiceError(w, "add task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTaskStatus handles PUT /api/projects/{id}/tasks/{taskID}/status.
//
//	@Summary		Change the status of one playbook task
//	@Tags			playbook
//	@Accept			json
//	@Param			id		path	string			true	"Project ID"
//	@Param			taskID	path	int				true	"Task ID"
//	@Param			body	body	StatusRequest	true	"New status"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks/{taskID}/status [put]
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.UpdateTaskStatus(r.Context(), chi.URLParam(r, "id"), id, req.Status); err != nil {
		writeServiceError(w, "update task status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveTask handles PUT /api/projects/{id}/tasks/{taskID}/position.
//
//	@Summary		Reorder a playbook task
//	@Tags			playbook
//	@Accept			json
//	@Param			id		path	string			true	"Project ID"
//	@Param			taskID	path	int				true	"Task ID"
//	@Param			body	body	PositionRequest	true	"Target position"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks/{taskID}/position [put]
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req PositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MoveTask(r.Context(), chi.URLParam(r, "id"), id, *req.Position); err != nil {
		writeServiceError(w, "move task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTask handles DELETE /api/projects/{id}/tasks/{taskID}.
//
//	@Summary		Remove a playbook task
//	@Tags			playbook
//	@Param			id		path	string	true	"Project ID"
//	@Param			taskID	path	int		true	"Task ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tasks/{taskID} [delete]
func (h *Handler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveTask(r.Context(), chi.URLParam(r, "id"), id); err != nil {
		writeServiceError(w, "remove task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegeneratePlaybook handles POST /api/projects/{id}/playbook/regenerate.
//
//	@Summary		Replace the playbook with the template of the current tier
//	@Tags			playbook
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/playbook/regenerate [post]
func (h *Handler) RegeneratePlaybook(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.RegeneratePlaybook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "regenerate playbook", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// RecordSnapshot handles POST /api/projects/{id}/snapshots.
//
//	@Summary		Log a health snapshot for a project
//	@Tags			snapshots
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project ID"
//	@Param			body	body		SnapshotRequest	true	"Snapshot"
//	@Success		201		{object}	models.HealthSnapshot
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/snapshots [post]
func (h *Handler) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.svc.RecordSnapshot(r.Context(), req.Snapshot(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, "record snapshot", err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// ListProjectSnapshots handles GET /api/projects/{id}/snapshots.
func (h *Handler) ListProjectSnapshots(w http.ResponseWriter, r *http.Request) {
	h.listSnapshots(w, r, chi.URLParam(r, "id"))
}

// ListSnapshots handles GET /api/snapshots.
//
//	@Summary		List health snapshots across all projects
//	@Tags			snapshots
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/snapshots [get]
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	h.listSnapshots(w, r, "")
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request, projectID string) {
	snaps, err := h.svc.ListSnapshots(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, "list snapshots", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}
