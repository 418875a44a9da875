package changeservice

import (
	"context"
	"time"

	"github.com/starford/changedesk/internal/portfolio"
)

// Portfolio aggregates project metrics for the records matching f.
func (s *Service) Portfolio(ctx context.Context, f portfolio.Filter) (portfolio.Metrics, error) {
	records, err := s.store.ListProjects(ctx)
	if err != nil {
		return portfolio.Metrics{}, err
	}
	snapshots, err := s.store.ListSnapshots(ctx, "")
	if err != nil {
		return portfolio.Metrics{}, err
	}
	defer s.metrics.ObserveAggregation(time.Now())
	return portfolio.Aggregate(records, snapshots, f, s.policy), nil
}

// CohortPortfolio aggregates cohort program metrics.
func (s *Service) CohortPortfolio(ctx context.Context) (portfolio.CohortMetrics, error) {
	cohorts, err := s.store.ListCohorts(ctx)
	if err != nil {
		return portfolio.CohortMetrics{}, err
	}
	return portfolio.SummarizeCohorts(cohorts, s.cohortWeights), nil
}
