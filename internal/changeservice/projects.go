package changeservice

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/portfolio"
	"github.com/starford/changedesk/internal/sse"
	"github.com/starford/changedesk/internal/triage"
)

// Assessment is a persisted project together with its tier guidance.
type Assessment struct {
	*models.IntakeRecord
	Toolkit string `json:"toolkit"`
}

func (s *Service) validateIntake(f models.IntakeFields) error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.ProjectName, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.BehaviouralBarrier, validation.In(toAny(models.Barriers)...)),
		validation.Field(&f.ImpactedUnits, validation.Each(validation.Required)),
	)
	if err != nil {
		return invalidErr(err)
	}
	return nil
}

func normalizeIntake(f models.IntakeFields) models.IntakeFields {
	f.ProjectName = strings.TrimSpace(f.ProjectName)
	f.Sponsor = strings.TrimSpace(f.Sponsor)
	units := make([]string, 0, len(f.ImpactedUnits))
	seen := make(map[string]struct{}, len(f.ImpactedUnits))
	for _, u := range f.ImpactedUnits {
		u = strings.TrimSpace(u)
		if _, dup := seen[u]; u == "" || dup {
			continue
		}
		seen[u] = struct{}{}
		units = append(units, u)
	}
	f.ImpactedUnits = units
	return f
}

func playbookTasks(projectID string, tasks []triage.Task) []models.PlaybookTask {
	out := make([]models.PlaybookTask, len(tasks))
	for i, t := range tasks {
		out[i] = models.PlaybookTask{
			ProjectID:   projectID,
			Position:    i,
			Category:    t.Category,
			Description: t.Description,
			Status:      t.Status,
		}
	}
	return out
}

func applyTriage(rec *models.IntakeRecord, res triage.Result) {
	rec.ImpactScore = res.ImpactScore
	rec.ChangeTier = string(res.Tier)
	effort := res.EffortScore
	rec.EffortScore = &effort
}

// SubmitProject triages a new intake and persists it with its seed
// playbook.
func (s *Service) SubmitProject(ctx context.Context, f models.IntakeFields) (*Assessment, error) {
	f = normalizeIntake(f)
	if err := s.validateIntake(f); err != nil {
		return nil, err
	}
	res := triage.Triage(f, s.model)
	now := s.now().UTC()
	rec := models.IntakeRecord{
		ID:           uuid.NewString(),
		IntakeFields: f,
		Status:       models.StatusIntake,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyTriage(&rec, res)

	tasks := playbookTasks(rec.ID, res.Playbook)
	if err := s.store.InsertProject(ctx, rec, tasks); err != nil {
		return nil, err
	}
	s.metrics.Triaged(rec.ChangeTier)
	s.logger.Info("project triaged",
		slog.String("id", rec.ID),
		slog.Int("score", rec.ImpactScore),
		slog.String("tier", rec.ChangeTier))
	s.publish(sse.ProjectCreated, map[string]string{"id": rec.ID, "tier": rec.ChangeTier})

	saved, err := s.store.GetProject(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &Assessment{IntakeRecord: saved, Toolkit: res.Toolkit}, nil
}

// Retriage replaces a project's intake fields and recomputes its score,
// tier and effort. The playbook and lifecycle status are kept.
func (s *Service) Retriage(ctx context.Context, id string, f models.IntakeFields) (*Assessment, error) {
	f = normalizeIntake(f)
	if err := s.validateIntake(f); err != nil {
		return nil, err
	}
	rec, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	res := triage.Triage(f, s.model)
	rec.IntakeFields = f
	rec.UpdatedAt = s.now().UTC()
	applyTriage(rec, res)

	if err := s.store.UpdateAssessment(ctx, *rec); err != nil {
		return nil, err
	}
	s.metrics.Triaged(rec.ChangeTier)
	s.publish(sse.ProjectUpdated, map[string]string{"id": id, "tier": rec.ChangeTier})
	return &Assessment{IntakeRecord: rec, Toolkit: res.Toolkit}, nil
}

// RegeneratePlaybook overwrites the playbook with the template for the
// project's current tier. Task progress is lost.
func (s *Service) RegeneratePlaybook(ctx context.Context, id string) ([]models.PlaybookTask, error) {
	rec, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	tier, ok := triage.ParseTier(rec.ChangeTier)
	if !ok {
		tier = triage.Classify(rec.ImpactScore)
	}
	if err := s.store.ReplacePlaybook(ctx, id, playbookTasks(id, triage.GeneratePlaybook(tier))); err != nil {
		return nil, err
	}
	s.publish(sse.PlaybookUpdated, map[string]string{"project_id": id})
	return s.store.ListTasks(ctx, id)
}

// AddTask appends a custom task to a project's playbook.
func (s *Service) AddTask(ctx context.Context, projectID, category, description string) (models.PlaybookTask, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.PlaybookTask{}, invalid("description is required")
	}
	task, err := s.store.AddTask(ctx, models.PlaybookTask{
		ProjectID:   projectID,
		Category:    strings.TrimSpace(category),
		Description: description,
		Status:      models.TaskToDo,
	})
	if err != nil {
		return task, err
	}
	s.publish(sse.PlaybookUpdated, map[string]any{"project_id": projectID, "task_id": task.ID})
	return task, nil
}

// UpdateTaskStatus sets a task's status. Any allowed status may follow any
// other.
func (s *Service) UpdateTaskStatus(ctx context.Context, projectID string, taskID int64, status string) error {
	if !oneOf(status, models.TaskStatuses) {
		return invalid("unknown task status %q", status)
	}
	if err := s.store.UpdateTaskStatus(ctx, projectID, taskID, status); err != nil {
		return err
	}
	s.publish(sse.PlaybookUpdated, map[string]any{"project_id": projectID, "task_id": taskID})
	return nil
}

// RemoveTask deletes a task from a playbook.
func (s *Service) RemoveTask(ctx context.Context, projectID string, taskID int64) error {
	if err := s.store.RemoveTask(ctx, projectID, taskID); err != nil {
		return err
	}
	s.publish(sse.PlaybookUpdated, map[string]any{"project_id": projectID, "task_id": taskID})
	return nil
}

// MoveTask moves a task to a new position in its playbook.
func (s *Service) MoveTask(ctx context.Context, projectID string, taskID int64, position int) error {
	if position < 0 {
		return invalid("position must not be negative")
	}
	if err := s.store.MoveTask(ctx, projectID, taskID, position); err != nil {
		return err
	}
	s.publish(sse.PlaybookUpdated, map[string]any{"project_id": projectID, "task_id": taskID})
	return nil
}

// ListTasks returns a project's playbook, failing when the project is
// unknown.
func (s *Service) ListTasks(ctx context.Context, projectID string) ([]models.PlaybookTask, error) {
	rec, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return rec.Playbook, nil
}

// UpdateProjectStatus moves a project through its lifecycle.
func (s *Service) UpdateProjectStatus(ctx context.Context, id, status string) error {
	if !oneOf(status, models.ProjectStatuses) {
		return invalid("unknown project status %q", status)
	}
	if err := s.store.UpdateProjectStatus(ctx, id, status); err != nil {
		return err
	}
	s.publish(sse.ProjectUpdated, map[string]string{"id": id, "status": status})
	return nil
}

// GetProject returns a project with its playbook and tier guidance.
func (s *Service) GetProject(ctx context.Context, id string) (*Assessment, error) {
	rec, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	a := &Assessment{IntakeRecord: rec}
	if tier, ok := triage.ParseTier(rec.ChangeTier); ok {
		a.Toolkit = triage.Toolkit(tier)
	}
	return a, nil
}

// ListProjects returns the projects matching f.
func (s *Service) ListProjects(ctx context.Context, f portfolio.Filter) ([]models.IntakeRecord, error) {
	all, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.IntakeRecord, 0, len(all))
	for _, r := range all {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SearchProjects finds projects whose name, sponsor, goal or units contain q.
func (s *Service) SearchProjects(ctx context.Context, q string, limit int) ([]models.IntakeRecord, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.IntakeRecord{}, nil
	}
	res, err := s.store.SearchProjects(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []models.IntakeRecord{}
	}
	return res, nil
}

// DeleteProject removes a project with its playbook and snapshots.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.publish(sse.ProjectDeleted, map[string]string{"id": id})
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, v := range ss {
		out[i] = v
	}
	return out
}
