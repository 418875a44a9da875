package models

import "time"

// Governance checklist statuses.
const (
	GovernanceComplete   = "Complete"
	GovernanceIncomplete = "Incomplete"
)

// Cohort execution statuses.
const (
	ExecutionProposed = "Proposed"
	ExecutionDesign   = "Design"
	ExecutionPilot    = "Pilot"
	ExecutionScaling  = "Scaling"
	ExecutionComplete = "Complete"
)

// ExecutionStatuses lists cohort program statuses in order.
var ExecutionStatuses = []string{ExecutionProposed, ExecutionDesign, ExecutionPilot, ExecutionScaling, ExecutionComplete}

// Workstreams are the strategic workforce planning streams a cohort can link to.
var Workstreams = []string{
	"Reskilling at Scale",
	"AI Leadership Capability",
	"Workforce Redeployment",
	"Culture & Ways of Working",
	"Responsible AI Governance",
}

// AutoAssignVendor is the vendor selection meaning "use the recommendation".
const AutoAssignVendor = "Auto-Assign"

// CohortFields are the user-supplied fields of a leadership cohort assessment.
type CohortFields struct {
	CohortName       string              `json:"cohort_name"`
	Department       string              `json:"department"`
	Region           string              `json:"region"`
	AudienceLevel    string              `json:"audience_level"`
	MaturityLevel    string              `json:"maturity_level"`
	CohortSizeBand   string              `json:"cohort_size_band"`
	LearningFocus    string              `json:"learning_focus"`
	BehaviouralShift string              `json:"behavioural_shift"`
	SelectedVendor   string              `json:"selected_vendor"`
	BaselineScore    int                 `json:"baseline_score"`
	TargetScore      int                 `json:"target_score"`
	ExecutionStatus  string              `json:"execution_status"`
	Workstream       string              `json:"workstream"`
	Governance       GovernanceChecklist `json:"governance"`
}

// GovernanceChecklist is the AI governance assurance gate for a cohort program.
type GovernanceChecklist struct {
	Principles        []string `json:"principles"`
	ContentVetted     bool     `json:"content_vetted"`
	SecurityConfirmed bool     `json:"security_confirmed"`
}

// CohortRecord is a persisted, curated leadership cohort.
type CohortRecord struct {
	ID string `json:"id"`
	CohortFields
	RecommendedPathway string    `json:"recommended_pathway"`
	RecommendedVendor  string    `json:"recommended_vendor"`
	UrgencyScore       int       `json:"urgency_score"`
	EstimatedBudget    int       `json:"estimated_budget"`
	GovernanceStatus   string    `json:"governance_status"`
	CreatedAt          time.Time `json:"created_at"`
}

// Vendor compliance ratings.
const (
	ComplianceGreen  = "Green"
	ComplianceYellow = "Yellow"
	ComplianceRed    = "Red"
)

// VendorRecord is an entry of the vendor registry.
type VendorRecord struct {
	Name              string `json:"name" yaml:"name"`
	Specialty         string `json:"specialty" yaml:"specialty"`
	DailyRate         int    `json:"daily_rate" yaml:"daily_rate"`
	PerformanceRating int    `json:"performance_rating" yaml:"performance_rating"`
	ComplianceRating  string `json:"compliance_rating" yaml:"compliance_rating"`
	DataResidencyCert string `json:"data_residency_cert" yaml:"data_residency_cert"`
	Status            string `json:"status" yaml:"status"`
}

// LeaderDiagnostic is an individual leader assessment with its generated
// 90-day development protocol.
type LeaderDiagnostic struct {
	ID                string    `json:"id"`
	LeaderName        string    `json:"leader_name"`
	RoleLevel         string    `json:"role_level"`
	LOCScore          int       `json:"loc_score"`
	AmbidextrousScore int       `json:"ambidextrous_score"`
	COMBScore         int       `json:"com_b_score"`
	PrimaryBarrier    string    `json:"primary_barrier"`
	DevelopmentTheme  string    `json:"development_theme"`
	EthicalA          int       `json:"ethical_a"`
	EthicalB          string    `json:"ethical_b"`
	SafetyA           int       `json:"safety_a"`
	SafetyB           int       `json:"safety_b"`
	CollabA           int       `json:"collab_a"`
	CollabB           int       `json:"collab_b"`
	GrowthA           int       `json:"growth_a"`
	GrowthB           int       `json:"growth_b"`
	Protocol          string    `json:"protocol"`
	CreatedAt         time.Time `json:"created_at"`
}
