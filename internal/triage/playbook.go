package triage

import "github.com/starford/changedesk/internal/models"

// Task is a playbook template entry.
type Task struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type step struct{ category, description string }

var playbooks = map[Tier][]step{
	TierLight: {
		{"Plan", "Complete the Change-on-a-Page summary"},
		{"Communicate", "Send the announcement email to impacted teams"},
		{"Enable", "Publish a one-page how-to guide"},
		{"Enable", "Update the intranet FAQ"},
		{"Measure", "Check adoption two weeks after go-live"},
	},
	TierMedium: {
		{"Plan", "Run a stakeholder mapping session"},
		{"Plan", "Draft the change impact assessment"},
		{"Communicate", "Brief people leaders with talking points"},
		{"Communicate", "Issue staged communications to impacted teams"},
		{"Enable", "Deliver targeted training sessions"},
		{"Reinforce", "Set up a feedback channel for questions and friction"},
		{"Measure", "Run a readiness pulse before go-live"},
	},
	TierFull: {
		{"Plan", "Confirm sponsor coalition and governance cadence"},
		{"Plan", "Complete the detailed change impact assessment"},
		{"Plan", "Map stakeholders and resistance hotspots"},
		{"Communicate", "Publish the change narrative and case for change"},
		{"Communicate", "Run leader cascade briefings"},
		{"Enable", "Design and deliver the role-based training plan"},
		{"Enable", "Stand up a change champion network"},
		{"Reinforce", "Agree reinforcement and recognition mechanisms"},
		{"Measure", "Track lead and lag indicators with fortnightly pulses"},
	},
}

// GeneratePlaybook returns a fresh copy of the tier's template with every
// task at "To Do". Callers own the returned slice.
func GeneratePlaybook(t Tier) []Task {
	steps := playbooks[t]
	out := make([]Task, len(steps))
	for i, s := range steps {
		out[i] = Task{Category: s.category, Description: s.description, Status: models.TaskToDo}
	}
	return out
}

// Result is the derived state of a triaged project.
type Result struct {
	ImpactScore int    `json:"impact_score"`
	Tier        Tier   `json:"change_tier"`
	EffortScore int    `json:"effort_score"`
	Toolkit     string `json:"toolkit"`
	Playbook    []Task `json:"playbook"`
}

// Triage scores the intake and derives every other value from the tier.
func Triage(f models.IntakeFields, m Model) Result {
	score := Score(f, m)
	tier := Classify(score)
	return Result{
		ImpactScore: score,
		Tier:        tier,
		EffortScore: Effort(tier),
		Toolkit:     Toolkit(tier),
		Playbook:    GeneratePlaybook(tier),
	}
}
