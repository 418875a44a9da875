package changeservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/narrative"
	"github.com/starford/changedesk/internal/sse"
)

// NarrativeResult is a draft plus its archived report, when archiving is
// enabled and succeeded.
type NarrativeResult struct {
	narrative.Draft
	Report *models.Report `json:"report,omitempty"`
}

// LeaderDiagnosticInput are the answers of the individual leader diagnostic.
type LeaderDiagnosticInput struct {
	LeaderName        string `json:"leader_name"`
	RoleLevel         string `json:"role_level"`
	LOCScore          int    `json:"loc_score"`
	AmbidextrousScore int    `json:"ambidextrous_score"`
	COMBScore         int    `json:"com_b_score"`
	PrimaryBarrier    string `json:"primary_barrier"`
	DevelopmentTheme  string `json:"development_theme"`
	EthicalA          int    `json:"ethical_a"`
	EthicalB          string `json:"ethical_b"`
	SafetyA           int    `json:"safety_a"`
	SafetyB           int    `json:"safety_b"`
	CollabA           int    `json:"collab_a"`
	CollabB           int    `json:"collab_b"`
	GrowthA           int    `json:"growth_a"`
	GrowthB           int    `json:"growth_b"`
}

// Validate checks score ranges: 1-10 for the behavioural scores and 1-5
// for the diagnostic answers.
func (in LeaderDiagnosticInput) Validate() error {
	ten := []validation.Rule{validation.Required, validation.Min(1), validation.Max(10)}
	five := []validation.Rule{validation.Required, validation.Min(1), validation.Max(5)}
	return validation.ValidateStruct(&in,
		validation.Field(&in.LeaderName, validation.Required),
		validation.Field(&in.LOCScore, ten...),
		validation.Field(&in.AmbidextrousScore, ten...),
		validation.Field(&in.COMBScore, ten...),
		validation.Field(&in.SafetyA, five...),
		validation.Field(&in.SafetyB, five...),
		validation.Field(&in.EthicalA, five...),
		validation.Field(&in.CollabA, five...),
		validation.Field(&in.CollabB, five...),
		validation.Field(&in.GrowthA, five...),
		validation.Field(&in.GrowthB, five...),
	)
}

// StatusAnchorInput is the context for a coaching dialogue.
type StatusAnchorInput struct {
	RoleLevel      string `json:"role_level"`
	PrimaryBarrier string `json:"primary_barrier"`
	LOCScore       int    `json:"loc_score"`
	GrowthA        int    `json:"growth_a"`
}

// ComplianceBriefInput names the program to brief Legal & Risk about.
// When CohortID is set the other fields are taken from the cohort.
type ComplianceBriefInput struct {
	CohortID     string `json:"cohort_id"`
	Region       string `json:"region"`
	Department   string `json:"department"`
	ProgramFocus string `json:"program_focus"`
	Vendor       string `json:"vendor"`
}

// draft renders, generates and archives one narrative.
func (s *Service) draft(ctx context.Context, prompt, subject string, vars map[string]any) NarrativeResult {
	d := s.drafter.Draft(ctx, prompt, vars)
	s.metrics.Narrative(prompt, d.Failed)
	res := NarrativeResult{Draft: d}
	if s.archive == nil {
		return res
	}
	rep, err := s.archive.Save(models.Report{
		Kind:        prompt,
		Subject:     subject,
		Title:       d.Title,
		GeneratedAt: d.GeneratedAt,
		Failed:      d.Failed,
		Body:        d.Text,
	})
	if err != nil {
		s.logger.Error("archive report failed", slog.String("prompt", prompt), slog.String("error", err.Error()))
		return res
	}
	rep.Body = ""
	res.Report = &rep
	s.publish(sse.ReportCreated, map[string]string{"path": rep.Path, "kind": prompt})
	return res
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// AnalyzeFriction drafts a friction and sludge report from staff notes.
// projectID is optional and only labels the archived report.
func (s *Service) AnalyzeFriction(ctx context.Context, projectID string, notes []string) (NarrativeResult, error) {
	notes = nonEmpty(notes)
	if len(notes) == 0 {
		return NarrativeResult{}, invalid("at least one friction note is required")
	}
	return s.draft(ctx, narrative.PromptFrictionAnalysis, projectID, map[string]any{"notes": notes}), nil
}

// AnalyzeSurvey drafts a sentiment and theme report from survey comments.
func (s *Service) AnalyzeSurvey(ctx context.Context, projectID string, comments []string) (NarrativeResult, error) {
	comments = nonEmpty(comments)
	if len(comments) == 0 {
		return NarrativeResult{}, invalid("at least one survey comment is required")
	}
	return s.draft(ctx, narrative.PromptSurveyAnalysis, projectID, map[string]any{"comments": comments}), nil
}

// ComplianceBrief drafts an ethical risk brief for a program.
func (s *Service) ComplianceBrief(ctx context.Context, in ComplianceBriefInput) (NarrativeResult, error) {
	subject := in.CohortID
	if in.CohortID != "" {
		c, err := s.store.GetCohort(ctx, in.CohortID)
		if err != nil {
			return NarrativeResult{}, err
		}
		in.Region, in.Department, in.ProgramFocus, in.Vendor = c.Region, c.Department, c.LearningFocus, c.SelectedVendor
	}
	if in.Region == "" || in.Vendor == "" {
		return NarrativeResult{}, invalid("region and vendor are required")
	}
	finding, err := s.CheckCompliance(ctx, in.Region, in.Vendor)
	if err != nil {
		return NarrativeResult{}, err
	}
	vars := map[string]any{
		"region":        in.Region,
		"department":    in.Department,
		"program_focus": in.ProgramFocus,
		"vendor":        in.Vendor,
		"finding":       "",
	}
	if finding != nil {
		vars["finding"] = finding.Message
	}
	if subject == "" {
		subject = in.Vendor
	}
	return s.draft(ctx, narrative.PromptComplianceBrief, subject, vars), nil
}

// DevelopLeader drafts a 90-day development protocol and stores the
// diagnostic with it. A failed draft is stored with its fail-soft message.
func (s *Service) DevelopLeader(ctx context.Context, in LeaderDiagnosticInput) (*models.LeaderDiagnostic, NarrativeResult, error) {
	in.LeaderName = strings.TrimSpace(in.LeaderName)
	if err := in.Validate(); err != nil {
		return nil, NarrativeResult{}, invalidErr(err)
	}
	res := s.draft(ctx, narrative.PromptLDPProtocol, in.LeaderName, map[string]any{
		"role_level":         in.RoleLevel,
		"primary_barrier":    in.PrimaryBarrier,
		"theme":              in.DevelopmentTheme,
		"loc_score":          in.LOCScore,
		"ambidextrous_score": in.AmbidextrousScore,
		"ethical_a":          in.EthicalA,
		"ethical_b":          in.EthicalB,
		"safety_a":           in.SafetyA,
		"safety_b":           in.SafetyB,
		"collab_a":           in.CollabA,
		"collab_b":           in.CollabB,
		"growth_a":           in.GrowthA,
		"growth_b":           in.GrowthB,
	})
	d := models.LeaderDiagnostic{
		ID:                uuid.NewString(),
		LeaderName:        in.LeaderName,
		RoleLevel:         in.RoleLevel,
		LOCScore:          in.LOCScore,
		AmbidextrousScore: in.AmbidextrousScore,
		COMBScore:         in.COMBScore,
		PrimaryBarrier:    in.PrimaryBarrier,
		DevelopmentTheme:  in.DevelopmentTheme,
		EthicalA:          in.EthicalA,
		EthicalB:          in.EthicalB,
		SafetyA:           in.SafetyA,
		SafetyB:           in.SafetyB,
		CollabA:           in.CollabA,
		CollabB:           in.CollabB,
		GrowthA:           in.GrowthA,
		GrowthB:           in.GrowthB,
		Protocol:          res.Text,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.InsertDiagnostic(ctx, d); err != nil {
		return nil, res, err
	}
	return &d, res, nil
}

// ListDiagnostics returns stored leader diagnostics, newest first.
func (s *Service) ListDiagnostics(ctx context.Context) ([]models.LeaderDiagnostic, error) {
	out, err := s.store.ListDiagnostics(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.LeaderDiagnostic{}
	}
	return out, nil
}

// StatusAnchorDialogue drafts a short coaching conversation.
func (s *Service) StatusAnchorDialogue(ctx context.Context, in StatusAnchorInput) (NarrativeResult, error) {
	if in.RoleLevel == "" || in.PrimaryBarrier == "" {
		return NarrativeResult{}, invalid("role_level and primary_barrier are required")
	}
	return s.draft(ctx, narrative.PromptStatusAnchorDialogue, in.RoleLevel, map[string]any{
		"role_level":      in.RoleLevel,
		"primary_barrier": in.PrimaryBarrier,
		"loc_score":       in.LOCScore,
		"growth_a":        in.GrowthA,
	}), nil
}

// ChangeBrief drafts a sponsor brief for a triaged project.
func (s *Service) ChangeBrief(ctx context.Context, projectID string) (NarrativeResult, error) {
	rec, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return NarrativeResult{}, err
	}
	return s.draft(ctx, narrative.PromptChangeBrief, projectID, map[string]any{
		"project_name":   rec.ProjectName,
		"sponsor":        rec.Sponsor,
		"tier":           rec.ChangeTier,
		"impact_score":   rec.ImpactScore,
		"strategic_goal": rec.StrategicGoal,
		"units":          strings.Join(rec.ImpactedUnits, ", "),
		"barrier":        rec.BehaviouralBarrier,
	}), nil
}

// Reports lists archived reports of kind, or all kinds when empty.
func (s *Service) Reports(kind string) ([]models.Report, error) {
	if s.archive == nil {
		return []models.Report{}, nil
	}
	return s.archive.List(kind)
}

// Report returns one archived report with its body.
func (s *Service) Report(path string) (models.Report, error) {
	if s.archive == nil {
		return models.Report{}, fmt.Errorf("report archive disabled: %w", apperr.ErrNotFound)
	}
	return s.archive.Get(path)
}
