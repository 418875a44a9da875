package mcpserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/pathway"
	"github.com/starford/changedesk/internal/triage"
)

// IntakeContract renders the intake vocabulary of m as Markdown so that LLM
// consumers submit categories the scoring model recognises. Unknown values
// are accepted but contribute the model's unmapped weight.
func IntakeContract(m triage.Model) string {
	var b strings.Builder
	b.WriteString("# Changedesk Intake Contract\n\n")
	b.WriteString("Projects are scored by summing one weight per dimension. ")
	fmt.Fprintf(&b, "Unrecognised values score %d.\n\n", m.UnmappedWeight)
	fmt.Fprintf(&b, "Tiers: %s from %d, %s from %d, otherwise %s.\n\n",
		triage.TierFull, triage.FullThreshold, triage.TierMedium, triage.MediumThreshold, triage.TierLight)

	for _, d := range triage.Dimensions {
		fmt.Fprintf(&b, "## %s\n\n", d)
		opts := m.Options(d)
		sort.Slice(opts, func(i, j int) bool {
			wi, wj := m.Weight(d, opts[i]), m.Weight(d, opts[j])
			if wi != wj {
				return wi > wj
			}
			return opts[i] < opts[j]
		})
		for _, o := range opts {
			fmt.Fprintf(&b, "- `%s` = %d\n", o, m.Weight(d, o))
		}
		b.WriteString("\n")
	}

	b.WriteString("## behavioural_barrier\n\n")
	for _, v := range models.Barriers {
		fmt.Fprintf(&b, "- `%s`\n", v)
	}
	b.WriteString("\n## Cohort audience_level\n\n")
	for _, v := range []string{pathway.AudienceExecutive, pathway.AudienceSenior, pathway.AudiencePeople, pathway.AudienceTechnical, pathway.AudienceWorkforce} {
		fmt.Fprintf(&b, "- `%s`\n", v)
	}
	b.WriteString("\n## Cohort maturity_level\n\n")
	for _, v := range []string{pathway.MaturitySkeptic, pathway.MaturityObserver, pathway.MaturityExperimenter, pathway.MaturityAdopter, pathway.MaturityLeader} {
		fmt.Fprintf(&b, "- `%s`\n", v)
	}
	fmt.Fprintf(&b, "\nUse `%s` as selected_vendor to accept the recommended vendor.\n", models.AutoAssignVendor)
	return b.String()
}
