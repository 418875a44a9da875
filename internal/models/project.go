// Package models defines the domain types for changedesk.
package models

import "time"

// Project lifecycle statuses.
const (
	StatusIntake     = "Intake"
	StatusPlanning   = "Planning"
	StatusActive     = "Active"
	StatusMonitoring = "Monitoring"
	StatusClosed     = "Closed"
)

// ProjectStatuses lists the lifecycle in order.
var ProjectStatuses = []string{StatusIntake, StatusPlanning, StatusActive, StatusMonitoring, StatusClosed}

// Playbook task statuses.
const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskDone       = "Done"
)

// TaskStatuses lists valid playbook task statuses.
var TaskStatuses = []string{TaskToDo, TaskInProgress, TaskDone}

// COM-B barrier categories.
const (
	BarrierCapability  = "Capability"
	BarrierOpportunity = "Opportunity"
	BarrierMotivation  = "Motivation"
)

// Barriers lists the COM-B barrier vocabulary.
var Barriers = []string{BarrierCapability, BarrierOpportunity, BarrierMotivation}

// IntakeFields are the user-supplied fields of a change project assessment.
type IntakeFields struct {
	ProjectName        string   `json:"project_name"`
	Sponsor            string   `json:"sponsor"`
	ChangeType         string   `json:"change_type"`
	Scale              string   `json:"scale"`
	ImpactDepth        string   `json:"impact_depth"`
	ChangeHistory      string   `json:"change_history"`
	StrategicGoal      string   `json:"strategic_goal"`
	ImpactedUnits      []string `json:"impacted_units"`
	BehaviouralBarrier string   `json:"behavioural_barrier"`
}

// IntakeRecord is a persisted, triaged change project.
//
// ImpactScore, ChangeTier and EffortScore are derived at triage time.
// EffortScore is nil for records that predate effort accounting.
type IntakeRecord struct {
	ID string `json:"id"`
	IntakeFields
	Status      string         `json:"status"`
	ImpactScore int            `json:"impact_score"`
	ChangeTier  string         `json:"change_tier"`
	EffortScore *int           `json:"effort_score"`
	Playbook    []PlaybookTask `json:"playbook,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PlaybookTask is one row of a project's playbook.
type PlaybookTask struct {
	ID          int64  `json:"id"`
	ProjectID   string `json:"project_id"`
	Position    int    `json:"position"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// HealthSnapshot is a time-stamped health measurement of one project.
// ID reflects insertion order.
type HealthSnapshot struct {
	ID                  int64     `json:"id"`
	ProjectID           string    `json:"project_id"`
	LogDate             time.Time `json:"log_date"`
	Readiness           int       `json:"readiness"`
	Sentiment           int       `json:"sentiment"`
	ManagerConfidence   int       `json:"manager_confidence"`
	AdoptionRatePct     float64   `json:"adoption_rate_pct"`
	BehaviorAdoptionPct float64   `json:"behavior_adoption_pct"`
	StaffTurnoverPct    float64   `json:"staff_turnover_pct"`
	Notes               string    `json:"notes,omitempty"`
}
