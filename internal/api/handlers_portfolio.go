package api

import "net/http"

// Portfolio handles GET /api/portfolio.
//
//	@Summary		Aggregate capacity, saturation and health across projects
//	@Tags			portfolio
//	@Produce		json
//	@Param			strategic_goal	query		string	false	"Filter by strategic goal"
//	@Param			sponsor			query		string	false	"Filter by sponsor"
//	@Param			status			query		string	false	"Filter by lifecycle status"
//	@Param			include_closed	query		bool	false	"Count closed projects against capacity"
//	@Success		200				{object}	portfolio.Metrics
//	@Security		BearerAuth
//	@Router			/portfolio [get]
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Portfolio(r.Context(), projectFilter(r))
	if err != nil {
		writeServiceError(w, "aggregate portfolio", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CohortPortfolio handles GET /api/portfolio/cohorts.
//
//	@Summary		Aggregate curated cohorts by pathway, vendor and stage
//	@Tags			portfolio
//	@Produce		json
//	@Success		200	{object}	portfolio.CohortMetrics
//	@Security		BearerAuth
//	@Router			/portfolio/cohorts [get]
func (h *Handler) CohortPortfolio(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.CohortPortfolio(r.Context())
	if err != nil {
		writeServiceError(w, "aggregate cohorts", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
