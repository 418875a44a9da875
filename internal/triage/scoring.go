// Package triage converts a change project intake into an impact score, a
// support tier, an effort estimate and a seed playbook.
package triage

import "github.com/starford/changedesk/internal/models"

// Dimension names a scored intake field.
type Dimension string

// Scored dimensions.
const (
	DimChangeType    Dimension = "change_type"
	DimScale         Dimension = "scale"
	DimImpactDepth   Dimension = "impact_depth"
	DimChangeHistory Dimension = "change_history"
)

// Dimensions lists the scored dimensions in evaluation order.
var Dimensions = []Dimension{DimChangeType, DimScale, DimImpactDepth, DimChangeHistory}

// Model is a weighted lookup table over the four scored dimensions.
//
// UnmappedWeight is what an unknown or missing category contributes. It is
// part of the model rather than an accident of map lookup.
type Model struct {
	Weights        map[Dimension]map[string]int `json:"weights"`
	Aliases        map[string]string            `json:"aliases"`
	UnmappedWeight int                          `json:"unmapped_weight"`
}

// DefaultModel returns the canonical scoring model.
func DefaultModel() Model {
	return Model{
		Weights: map[Dimension]map[string]int{
			DimChangeType: {
				"Restructure":   5,
				"New IT System": 4,
				"AI Bot":        4,
				"Process Tweak": 2,
				"Comms Only":    1,
			},
			DimScale: {
				"250+ people":   3,
				"50-250 people": 2,
				"1-50 people":   1,
			},
			DimImpactDepth: {
				"A lot of new skills": 4,
				"A few new steps":     2,
				"New login only":      1,
			},
			DimChangeHistory: {
				"Failed before":    3,
				"First time":       1,
				"Succeeded before": 0,
			},
		},
		Aliases: map[string]string{
			"250+":            "250+ people",
			"50-250":          "50-250 people",
			"1-50":            "1-50 people",
			"many new skills": "A lot of new skills",
			"few new steps":   "A few new steps",
			"new login only":  "New login only",
		},
	}
}

// Weight returns the contribution of value on dimension d.
func (m Model) Weight(d Dimension, value string) int {
	table, ok := m.Weights[d]
	if !ok {
		return m.UnmappedWeight
	}
	if w, ok := table[value]; ok {
		return w
	}
	if canon, ok := m.Aliases[value]; ok {
		if w, ok := table[canon]; ok {
			return w
		}
	}
	return m.UnmappedWeight
}

// Options returns the canonical category labels for d.
func (m Model) Options(d Dimension) []string {
	out := make([]string, 0, len(m.Weights[d]))
	for k := range m.Weights[d] {
		out = append(out, k)
	}
	return out
}

// Score sums the four dimension weights. There are no interaction terms.
func Score(f models.IntakeFields, m Model) int {
	return m.Weight(DimChangeType, f.ChangeType) +
		m.Weight(DimScale, f.Scale) +
		m.Weight(DimImpactDepth, f.ImpactDepth) +
		m.Weight(DimChangeHistory, f.ChangeHistory)
}
