// Package pathway recommends learning pathways for leadership cohorts and
// checks vendor choices against regional compliance rules.
package pathway

import (
	"strings"

	"github.com/starford/changedesk/internal/models"
)

// Audience levels.
const (
	AudienceExecutive  = "Global Executive"
	AudienceSenior     = "Senior Leader"
	AudiencePeople     = "People Leader"
	AudienceTechnical  = "Technical Specialist"
	AudienceWorkforce  = "General Workforce"
	DefaultPathwayName = "AI Literacy Essentials"
)

// Maturity levels.
const (
	MaturitySkeptic      = "Skeptic"
	MaturityObserver     = "Observer"
	MaturityExperimenter = "Experimenter"
	MaturityAdopter      = "Adopter"
	MaturityLeader       = "Leader"
)

// Vendor archetypes.
const (
	VendorStrategic  = "Gartner"
	VendorTechnical  = "Microsoft"
	VendorDigital    = "LinkedIn Learning"
	VendorLeadership = "Center for Creative Leadership"
)

// Entry is one pathway recommendation together with the vendor archetype
// that delivers it.
type Entry struct {
	Name   string
	Vendor string
}

// audienceTable holds either a single program (Default) or a per-maturity
// table. Maturity levels missing from ByMaturity fall back to Default.
type audienceTable struct {
	Default    Entry
	ByMaturity map[string]Entry
}

var defaultEntry = Entry{Name: DefaultPathwayName, Vendor: VendorDigital}

var pathwayTable = map[string]audienceTable{
	AudienceExecutive: {
		Default: Entry{"Executive AI Value Orchestration", VendorStrategic},
		ByMaturity: map[string]Entry{
			MaturitySkeptic:  {"Executive AI Strategy Immersion", VendorStrategic},
			MaturityObserver: {"Executive AI Strategy Immersion", VendorStrategic},
			MaturityAdopter:  {"Executive AI Governance Board Program", VendorStrategic},
			MaturityLeader:   {"Executive AI Governance Board Program", VendorStrategic},
		},
	},
	AudienceSenior: {
		Default: Entry{"Ambidextrous Leadership Program", VendorLeadership},
		ByMaturity: map[string]Entry{
			MaturitySkeptic:  {"Leading Through AI Uncertainty", VendorLeadership},
			MaturityObserver: {"Leading Through AI Uncertainty", VendorLeadership},
		},
	},
	AudiencePeople: {
		Default: Entry{"Ambidextrous Supervision Program", VendorLeadership},
	},
	AudienceTechnical: {
		Default: Entry{"AI Engineering Deep Dive", VendorTechnical},
	},
	AudienceWorkforce: {
		Default: Entry{"AI Productivity Sprint", VendorDigital},
		ByMaturity: map[string]Entry{
			MaturitySkeptic:  {"AI Foundations & Confidence Building", VendorDigital},
			MaturityObserver: {"AI Foundations & Confidence Building", VendorDigital},
			MaturityAdopter:  {"AI Champions Network", VendorDigital},
			MaturityLeader:   {"AI Champions Network", VendorDigital},
		},
	},
}

// Representative headcounts per cohort size band.
var sizeBands = map[string]int{
	"1-20 (Pilot)":    15,
	"20-100 (Unit)":   60,
	"100+ (Division)": 150,
}

// Per-head program cost by audience.
var perHeadCost = map[string]int{
	AudienceExecutive: 5000,
	AudienceSenior:    3500,
	AudiencePeople:    2000,
	AudienceTechnical: 2500,
	AudienceWorkforce: 500,
}

const defaultPerHeadCost = 1000

// Curation is the recommendation for a cohort.
type Curation struct {
	Pathway      string `json:"recommended_pathway"`
	Vendor       string `json:"recommended_vendor"`
	UrgencyScore int    `json:"urgency_score"`
	Budget       int    `json:"estimated_budget"`
}

// Curate recommends a pathway, vendor, urgency and budget for a cohort.
func Curate(audience, maturity, sizeBand string) Curation {
	entry := Lookup(audience, maturity)
	return Curation{
		Pathway:      entry.Name,
		Vendor:       entry.Vendor,
		UrgencyScore: Urgency(audience, maturity),
		Budget:       Budget(audience, sizeBand),
	}
}

// Lookup resolves the pathway table entry for an audience and maturity.
func Lookup(audience, maturity string) Entry {
	tbl, ok := pathwayTable[audience]
	if !ok {
		return defaultEntry
	}
	if e, ok := tbl.ByMaturity[NormalizeMaturity(maturity)]; ok {
		return e
	}
	return tbl.Default
}

// SuggestVendor infers a vendor archetype from a pathway name. It is only a
// fallback for names that are not in the pathway table.
func SuggestVendor(pathwayName string) string {
	for _, e := range allEntries() {
		if e.Name == pathwayName {
			return e.Vendor
		}
	}
	switch {
	case strings.Contains(pathwayName, "Executive"), strings.Contains(pathwayName, "Strategy"):
		return VendorStrategic
	case strings.Contains(pathwayName, "Engineering"), strings.Contains(pathwayName, "Technical"):
		return VendorTechnical
	case strings.Contains(pathwayName, "Leader"), strings.Contains(pathwayName, "Supervision"):
		return VendorLeadership
	default:
		return VendorDigital
	}
}

func allEntries() []Entry {
	out := []Entry{defaultEntry}
	for _, tbl := range pathwayTable {
		out = append(out, tbl.Default)
		for _, e := range tbl.ByMaturity {
			out = append(out, e)
		}
	}
	return out
}

// Urgency is 50, plus 30 for executive or senior audiences, plus 20 for
// skeptic or observer maturity. The result is not capped.
func Urgency(audience, maturity string) int {
	score := 50
	if strings.Contains(audience, "Executive") || strings.Contains(audience, "Senior") {
		score += 30
	}
	switch NormalizeMaturity(maturity) {
	case MaturitySkeptic, MaturityObserver:
		score += 20
	}
	return score
}

// ClampUrgency bounds an urgency score to the 0..100 display scale.
func ClampUrgency(score int) int {
	return max(0, min(score, 100))
}

// Budget multiplies the size band's representative headcount by the
// audience's per-head cost. Unknown size bands yield 0.
func Budget(audience, sizeBand string) int {
	cost, ok := perHeadCost[audience]
	if !ok {
		cost = defaultPerHeadCost
	}
	return sizeBands[sizeBand] * cost
}

// NormalizeMaturity reduces a labelled maturity such as "Skeptic (Resistant)"
// to its level name.
func NormalizeMaturity(m string) string {
	m = strings.TrimSpace(m)
	if i := strings.IndexByte(m, ' '); i >= 0 {
		return m[:i]
	}
	return m
}

// MaturityRank maps a maturity level to 1..5. Unknown levels rank as Observer.
func MaturityRank(m string) int {
	switch NormalizeMaturity(m) {
	case MaturitySkeptic:
		return 1
	case MaturityExperimenter:
		return 3
	case MaturityAdopter:
		return 4
	case MaturityLeader:
		return 5
	default:
		return 2
	}
}

// GovernanceStatus reports whether a cohort program has passed the
// governance assurance gate.
func GovernanceStatus(c models.GovernanceChecklist) string {
	if c.ContentVetted && c.SecurityConfirmed && len(c.Principles) > 0 {
		return models.GovernanceComplete
	}
	return models.GovernanceIncomplete
}
