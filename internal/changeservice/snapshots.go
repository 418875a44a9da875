package changeservice

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/sse"
)

func validateSnapshot(s models.HealthSnapshot) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ProjectID, validation.Required),
		validation.Field(&s.Readiness, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&s.Sentiment, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&s.ManagerConfidence, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&s.AdoptionRatePct, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&s.BehaviorAdoptionPct, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&s.StaffTurnoverPct, validation.Min(0.0), validation.Max(100.0)),
	)
}

// RecordSnapshot appends a health snapshot to an existing project. A zero
// LogDate is stamped with the current time.
func (s *Service) RecordSnapshot(ctx context.Context, snap models.HealthSnapshot) (models.HealthSnapshot, error) {
	if err := validateSnapshot(snap); err != nil {
		return snap, invalidErr(err)
	}
	if _, err := s.store.GetProject(ctx, snap.ProjectID); err != nil {
		return snap, err
	}
	if snap.LogDate.IsZero() {
		snap.LogDate = s.now().UTC()
	}
	id, err := s.store.InsertSnapshot(ctx, snap)
	if err != nil {
		return snap, err
	}
	snap.ID = id
	s.publish(sse.SnapshotRecorded, map[string]any{"project_id": snap.ProjectID, "id": id})
	return snap, nil
}

// ListSnapshots returns the snapshots of one project, or all when
// projectID is empty, in insertion order.
func (s *Service) ListSnapshots(ctx context.Context, projectID string) ([]models.HealthSnapshot, error) {
	out, err := s.store.ListSnapshots(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.HealthSnapshot{}
	}
	return out, nil
}
