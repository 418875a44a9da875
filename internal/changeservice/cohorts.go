package changeservice

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/pathway"
	"github.com/starford/changedesk/internal/sse"
)

// CohortOutcome is the result of curating a cohort.
type CohortOutcome struct {
	Cohort  models.CohortRecord  `json:"cohort"`
	Finding *pathway.RiskFinding `json:"compliance_risk"`
	Gap     pathway.GapResult    `json:"gap"`
}

func validateCohort(f models.CohortFields) error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.CohortName, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.ExecutionStatus, validation.In(toAny(models.ExecutionStatuses)...)),
		validation.Field(&f.Workstream, validation.In(toAny(models.Workstreams)...)),
	)
	if err != nil {
		return invalidErr(err)
	}
	return nil
}

// finalVendor is the user's pick unless they asked for the recommendation.
func finalVendor(selected, recommended string) string {
	selected = strings.TrimSpace(selected)
	if selected == "" || selected == models.AutoAssignVendor {
		return recommended
	}
	return selected
}

// SubmitCohort curates a pathway for the cohort, checks the chosen vendor
// against the registry and persists the result. The compliance finding is
// returned but does not block persistence.
func (s *Service) SubmitCohort(ctx context.Context, f models.CohortFields) (*CohortOutcome, error) {
	f.CohortName = strings.TrimSpace(f.CohortName)
	if f.ExecutionStatus == "" {
		f.ExecutionStatus = models.ExecutionProposed
	}
	if err := validateCohort(f); err != nil {
		return nil, err
	}

	cur := pathway.Curate(f.AudienceLevel, f.MaturityLevel, f.CohortSizeBand)
	f.SelectedVendor = finalVendor(f.SelectedVendor, cur.Vendor)

	registry, err := s.registry(ctx)
	if err != nil {
		return nil, err
	}
	finding := pathway.CheckComplianceRisk(f.Region, f.SelectedVendor, registry)

	rec := models.CohortRecord{
		ID:                 uuid.NewString(),
		CohortFields:       f,
		RecommendedPathway: cur.Pathway,
		RecommendedVendor:  cur.Vendor,
		UrgencyScore:       cur.UrgencyScore,
		EstimatedBudget:    cur.Budget,
		GovernanceStatus:   pathway.GovernanceStatus(f.Governance),
		CreatedAt:          s.now().UTC(),
	}
	if err := s.store.InsertCohort(ctx, rec); err != nil {
		return nil, err
	}

	s.metrics.Curated(rec.RecommendedPathway)
	if finding != nil {
		s.metrics.Finding(finding.Code)
		s.logger.Warn("cohort compliance risk",
			slog.String("id", rec.ID),
			slog.String("vendor", f.SelectedVendor),
			slog.String("code", finding.Code))
	}
	s.publish(sse.CohortCurated, map[string]string{"id": rec.ID, "pathway": rec.RecommendedPathway})

	return &CohortOutcome{
		Cohort:  rec,
		Finding: finding,
		Gap:     pathway.Gap(f.BaselineScore, f.TargetScore),
	}, nil
}

// CheckCompliance evaluates a region/vendor pair against the current
// registry without persisting anything.
func (s *Service) CheckCompliance(ctx context.Context, region, vendor string) (*pathway.RiskFinding, error) {
	registry, err := s.registry(ctx)
	if err != nil {
		return nil, err
	}
	return pathway.CheckComplianceRisk(region, vendor, registry), nil
}

// GetCohort returns a cohort by id.
func (s *Service) GetCohort(ctx context.Context, id string) (*models.CohortRecord, error) {
	return s.store.GetCohort(ctx, id)
}

// ListCohorts returns every cohort.
func (s *Service) ListCohorts(ctx context.Context) ([]models.CohortRecord, error) {
	out, err := s.store.ListCohorts(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.CohortRecord{}
	}
	return out, nil
}

// UpdateCohortExecution moves a cohort program to another execution status.
func (s *Service) UpdateCohortExecution(ctx context.Context, id, status string) error {
	if !oneOf(status, models.ExecutionStatuses) {
		return invalid("unknown execution status %q", status)
	}
	if err := s.store.UpdateCohortExecution(ctx, id, status); err != nil {
		return err
	}
	s.publish(sse.CohortUpdated, map[string]string{"id": id, "execution_status": status})
	return nil
}

// Gap computes the behavioural shift between two scores.
func (s *Service) Gap(baseline, target int) pathway.GapResult {
	return pathway.Gap(baseline, target)
}

func (s *Service) registry(ctx context.Context) (pathway.Registry, error) {
	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	return pathway.NewRegistry(vendors), nil
}
