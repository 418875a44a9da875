package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/changedesk/internal/models"
)

// ProjectRequest is the intake body for creating or retriaging a project.
type ProjectRequest struct {
	models.IntakeFields
}

// Validate checks the request shape.
func (r *ProjectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProjectName, validation.Required),
	)
}

// StatusRequest changes a lifecycle or task status.
type StatusRequest struct {
	Status string `json:"status"`
}

// Validate checks the request shape.
func (r *StatusRequest) Validate() error {
	return validation.ValidateStruct(r, validation.Field(&r.Status, validation.Required))
}

// TaskRequest adds a custom playbook task.
type TaskRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Validate checks the request shape.
func (r *TaskRequest) Validate() error {
	return validation.ValidateStruct(r, validation.Field(&r.Description, validation.Required))
}

// PositionRequest moves a playbook task.
type PositionRequest struct {
	Position *int `json:"position"`
}

// Validate checks the request shape.
func (r *PositionRequest) Validate() error {
	return validation.ValidateStruct(r, validation.Field(&r.Position, validation.NotNil))
}

// SnapshotRequest records project health. LogDate is YYYY-MM-DD and
// defaults to today.
type SnapshotRequest struct {
	LogDate             string  `json:"log_date"`
	Readiness           int     `json:"readiness"`
	Sentiment           int     `json:"sentiment"`
	ManagerConfidence   int     `json:"manager_confidence"`
	AdoptionRatePct     float64 `json:"adoption_rate_pct"`
	BehaviorAdoptionPct float64 `json:"behavior_adoption_pct"`
	StaffTurnoverPct    float64 `json:"staff_turnover_pct"`
	Notes               string  `json:"notes"`
}

// Validate checks the request shape.
func (r *SnapshotRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LogDate, validation.Date(time.DateOnly)),
	)
}

// Snapshot converts the request for projectID.
func (r *SnapshotRequest) Snapshot(projectID string) models.HealthSnapshot {
	s := models.HealthSnapshot{
		ProjectID:           projectID,
		Readiness:           r.Readiness,
		Sentiment:           r.Sentiment,
		ManagerConfidence:   r.ManagerConfidence,
		AdoptionRatePct:     r.AdoptionRatePct,
		BehaviorAdoptionPct: r.BehaviorAdoptionPct,
		StaffTurnoverPct:    r.StaffTurnoverPct,
		Notes:               r.Notes,
	}
	if t, err := time.Parse(time.DateOnly, r.LogDate); err == nil {
		s.LogDate = t
	}
	return s
}

// CohortRequest is the body for curating a cohort.
type CohortRequest struct {
	models.CohortFields
}

// Validate checks the request shape.
func (r *CohortRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CohortName, validation.Required),
		validation.Field(&r.BaselineScore, validation.Min(0), validation.Max(10)),
		validation.Field(&r.TargetScore, validation.Min(0), validation.Max(10)),
	)
}

// ComplianceRequest checks a region/vendor pair.
type ComplianceRequest struct {
	Region string `json:"region"`
	Vendor string `json:"vendor"`
}

// Validate checks the request shape.
func (r *ComplianceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Region, validation.Required),
		validation.Field(&r.Vendor, validation.Required),
	)
}

// VendorsRequest replaces the whole vendor registry.
type VendorsRequest struct {
	Vendors []models.VendorRecord `json:"vendors"`
}

// Validate checks the request shape.
func (r *VendorsRequest) Validate() error {
	return validation.ValidateStruct(r, validation.Field(&r.Vendors, validation.Required))
}

// TextsRequest carries friction notes or survey comments.
type TextsRequest struct {
	ProjectID string   `json:"project_id"`
	Items     []string `json:"items"`
}

// Validate checks the request shape.
func (r *TextsRequest) Validate() error {
	return validation.ValidateStruct(r, validation.Field(&r.Items, validation.Required))
}
