package pathway

// Gap tags.
const (
	GapCritical    = "Critical Shift"
	GapSignificant = "Significant Shift"
	GapIncremental = "Incremental Shift"
)

// Ordinal bounds of behaviour scores.
const (
	MinBehaviourScore = 1
	MaxBehaviourScore = 10
)

// GapResult is the behavioural shift between a baseline and a target.
type GapResult struct {
	Baseline int    `json:"baseline"`
	Target   int    `json:"target"`
	Delta    int    `json:"delta"`
	Tag      string `json:"tag"`
}

// Gap computes target minus baseline and tags its magnitude. Inputs outside
// 1..10 are clamped first; zero and negative deltas are Incremental.
func Gap(baseline, target int) GapResult {
	baseline = clampScore(baseline)
	target = clampScore(target)
	delta := target - baseline
	return GapResult{Baseline: baseline, Target: target, Delta: delta, Tag: GapTag(delta)}
}

// GapTag classifies a delta.
func GapTag(delta int) string {
	switch {
	case delta >= 5:
		return GapCritical
	case delta >= 3:
		return GapSignificant
	default:
		return GapIncremental
	}
}

func clampScore(s int) int {
	return max(MinBehaviourScore, min(s, MaxBehaviourScore))
}
