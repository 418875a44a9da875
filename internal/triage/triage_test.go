package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/changedesk/internal/models"
)

func TestScore_SumsAllDimensions(t *testing.T) {
	m := DefaultModel()
	for ct, ctw := range m.Weights[DimChangeType] {
		for sc, scw := range m.Weights[DimScale] {
			for id, idw := range m.Weights[DimImpactDepth] {
				for ch, chw := range m.Weights[DimChangeHistory] {
					f := models.IntakeFields{ChangeType: ct, Scale: sc, ImpactDepth: id, ChangeHistory: ch}
					assert.Equal(t, ctw+scw+idw+chw, Score(f, m), "%s/%s/%s/%s", ct, sc, id, ch)
				}
			}
		}
	}
}

func TestScore_UnknownContributesUnmappedWeight(t *testing.T) {
	m := DefaultModel()
	f := models.IntakeFields{ChangeType: "Restructure", Scale: "lots", ImpactDepth: "", ChangeHistory: "Failed before"}
	assert.Equal(t, 8, Score(f, m))

	m.UnmappedWeight = 1
	assert.Equal(t, 10, Score(f, m))
}

func TestScore_Aliases(t *testing.T) {
	m := DefaultModel()
	f := models.IntakeFields{ChangeType: "AI Bot", Scale: "250+", ImpactDepth: "many new skills", ChangeHistory: "First time"}
	assert.Equal(t, 4+3+4+1, Score(f, m))
}

func TestClassify_Thresholds(t *testing.T) {
	cases := map[int]Tier{
		0: TierLight, 5: TierLight, 6: TierMedium, 10: TierMedium, 11: TierFull, 20: TierFull,
	}
	for score, want := range cases {
		assert.Equal(t, want, Classify(score), "score %d", score)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	rank := map[Tier]int{TierLight: 0, TierMedium: 1, TierFull: 2}
	prev := rank[Classify(-5)]
	for s := -4; s <= 30; s++ {
		cur := rank[Classify(s)]
		require.GreaterOrEqual(t, cur, prev, "score %d", s)
		prev = cur
	}
}

func TestEffortComposesWithClassify(t *testing.T) {
	cases := map[int]int{0: 10, 5: 10, 6: 40, 10: 40, 11: 100, 20: 100}
	for score, want := range cases {
		assert.Equal(t, want, Effort(Classify(score)), "score %d", score)
	}
}

func TestGeneratePlaybook_Templates(t *testing.T) {
	for _, tier := range Tiers {
		pb := GeneratePlaybook(tier)
		require.NotEmpty(t, pb, tier)
		assert.GreaterOrEqual(t, len(pb), 5)
		assert.LessOrEqual(t, len(pb), 9)
		for _, task := range pb {
			assert.Equal(t, models.TaskToDo, task.Status)
		}
	}
}

func TestGeneratePlaybook_IdempotentAndIndependent(t *testing.T) {
	a := GeneratePlaybook(TierMedium)
	b := GeneratePlaybook(TierMedium)
	assert.Equal(t, a, b)

	a[0].Status = models.TaskDone
	c := GeneratePlaybook(TierMedium)
	assert.Equal(t, models.TaskToDo, c[0].Status)
}

func TestTriage_EndToEnd(t *testing.T) {
	res := Triage(models.IntakeFields{
		ChangeType:    "Restructure",
		Scale:         "250+ people",
		ImpactDepth:   "A lot of new skills",
		ChangeHistory: "Failed before",
	}, DefaultModel())

	assert.Equal(t, 15, res.ImpactScore)
	assert.Equal(t, TierFull, res.Tier)
	assert.Equal(t, 100, res.EffortScore)
	assert.Len(t, res.Playbook, len(GeneratePlaybook(TierFull)))
	assert.Contains(t, res.Toolkit, "FULL SUPPORT")
}

func TestParseTier(t *testing.T) {
	tier, ok := ParseTier("Medium Support")
	assert.True(t, ok)
	assert.Equal(t, TierMedium, tier)

	_, ok = ParseTier("Extreme Support")
	assert.False(t, ok)
}
