package triage

// Tier is a discrete support level.
type Tier string

// Support tiers, lowest first.
const (
	TierLight  Tier = "Light Support"
	TierMedium Tier = "Medium Support"
	TierFull   Tier = "Full Support"
)

// Tiers lists the support tiers in ascending order.
var Tiers = []Tier{TierLight, TierMedium, TierFull}

// Tier thresholds.
const (
	FullThreshold   = 11
	MediumThreshold = 6
)

// Classify maps a score to its tier. It is the only producer of a Tier from
// a score.
func Classify(score int) Tier {
	switch {
	case score >= FullThreshold:
		return TierFull
	case score >= MediumThreshold:
		return TierMedium
	default:
		return TierLight
	}
}

// ParseTier returns the Tier named s.
func ParseTier(s string) (Tier, bool) {
	for _, t := range Tiers {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Effort returns the capacity consumed by a project of the given tier.
func Effort(t Tier) int {
	switch t {
	case TierFull:
		return 100
	case TierMedium:
		return 40
	case TierLight:
		return 10
	default:
		return 0
	}
}

// Toolkit returns the guidance shown to the project sponsor for a tier.
func Toolkit(t Tier) string {
	switch t {
	case TierFull:
		return "## TIER 3: FULL SUPPORT\n" +
			"This is a high-impact project. A change lead will contact the sponsor to co-design " +
			"the stakeholder map, impact assessment, readiness pulses and reinforcement plan."
	case TierMedium:
		return "## TIER 2: MEDIUM SUPPORT\n" +
			"A change lead is available for coaching. Use the stakeholder and communications " +
			"templates and book a mid-point readiness check."
	default:
		return "## TIER 1: LIGHT SUPPORT\n" +
			"Use the Change-on-a-Page template to plan communications and a short " +
			"how-to guide for impacted staff."
	}
}
