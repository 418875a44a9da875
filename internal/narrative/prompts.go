package narrative

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// Prompt names.
const (
	PromptFrictionAnalysis     = "friction_analysis"
	PromptSurveyAnalysis       = "survey_analysis"
	PromptComplianceBrief      = "compliance_brief"
	PromptLDPProtocol          = "ldp_protocol"
	PromptStatusAnchorDialogue = "status_anchor_dialogue"
	PromptChangeBrief          = "change_brief"
)

// Prompt is a named user-message template.
type Prompt struct {
	Name     string
	Title    string
	Required []string
	tmpl     *template.Template
}

// Render fills the template from vars. Every Required key must be present.
func (p Prompt) Render(vars map[string]any) (string, error) {
	var missing []string
	for _, k := range p.Required {
		if _, ok := vars[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s: missing variables: %s", p.Name, strings.Join(missing, ", "))
	}
	var b strings.Builder
	if err := p.tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("prompt %s: %w", p.Name, err)
	}
	return b.String(), nil
}

var funcs = template.FuncMap{
	"bullets": func(v any) string {
		switch items := v.(type) {
		case []string:
			return "- " + strings.Join(items, "\n- ")
		case []any:
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, fmt.Sprint(it))
			}
			return "- " + strings.Join(parts, "\n- ")
		default:
			return fmt.Sprint(v)
		}
	},
}

func mustPrompt(name, title, body string, required ...string) Prompt {
	return Prompt{
		Name:     name,
		Title:    title,
		Required: required,
		tmpl:     template.Must(template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(body)),
	}
}

var library = map[string]Prompt{
	PromptFrictionAnalysis: mustPrompt(PromptFrictionAnalysis, "Friction & Sludge Report", `
You are a change management consultant running a friction and sludge audit.
Below are raw friction notes logged by staff.

Write a report that:
1. Groups the notes into 3-5 recurring themes.
2. Summarises the core problem of each theme in one or two sentences.
3. Quotes two or three notes per theme as evidence.
4. Ends with an executive summary naming the single most urgent theme.

Use Markdown.

Friction notes:
{{bullets .notes}}
`, "notes"),

	PromptSurveyAnalysis: mustPrompt(PromptSurveyAnalysis, "Sentiment & Thematic Analysis", `
You are a senior People & Culture analyst.
Below are open-ended staff survey comments about a recent change.

Write a report that:
1. Opens with an executive summary of overall sentiment.
2. Lists 3-4 positive themes with two quotes each.
3. Lists 3-4 negative themes (risks, confusion, resistance) with two quotes each.
4. Closes with three actionable recommendations for the change manager.

Use Markdown.

Survey comments:
{{bullets .comments}}
`, "comments"),

	PromptComplianceBrief: mustPrompt(PromptComplianceBrief, "Ethical Risk Brief", `
You are an AI governance advisor preparing a brief for Legal & Risk.
A leadership learning program is planned with the following parameters:

- Region: {{.region}}
- Department: {{.department}}
- Program focus: {{.program_focus}}
- Vendor: {{.vendor}}
{{- if .finding}}
- Open compliance finding: {{.finding}}
{{- end}}

Summarise the data residency and privacy obligations for the region, the
ethical risks of the program content, and the controls to confirm with the
vendor before contracting. Use Markdown with short sections.
`, "region", "department", "program_focus", "vendor"),

	PromptLDPProtocol: mustPrompt(PromptLDPProtocol, "90-Day Development Protocol", `
You are an executive coach designing a 90-day leader development protocol.

Leader profile:
- Role level: {{.role_level}}
- Primary barrier: {{.primary_barrier}}
- Development theme: {{.theme}}
- Loss of control score (1-10): {{.loc_score}}
- Ambidexterity score (1-10): {{.ambidextrous_score}}

Diagnostic answers (1-5 unless stated):
- Accountability for AI error sits with the approver: {{.ethical_a}}
- Coaching approach for an AI-driven denial: {{.ethical_b}}
- Team reports AI errors without fear: {{.safety_a}}
- Retrains team when tasks are automated: {{.safety_b}}
- Success tied to Technology and Claims: {{.collab_a}}
- Involves Compliance early: {{.collab_b}}
- Believes AI skills are learnable: {{.growth_a}}
- Protects time for experimentation: {{.growth_b}}

Produce three 30-day phases, each with a coaching goal, two practical
behaviours to rehearse and one measurable signal of progress. Use Markdown.
`, "role_level", "primary_barrier", "theme", "loc_score", "ambidextrous_score"),

	PromptStatusAnchorDialogue: mustPrompt(PromptStatusAnchorDialogue, "Status Anchor Dialogue", `
You are an AI coach scripting a short dialogue for a {{.role_level}}.
Their main barrier is {{.primary_barrier}}. Their loss of control score is
{{.loc_score}} out of 10 and their learning belief score is {{.growth_a}} out of 5.

Write a five-turn coaching conversation that acknowledges the leader's
status concerns, reframes their role around judgement and oversight, and
ends with one concrete commitment for the coming week.
`, "role_level", "primary_barrier", "loc_score", "growth_a"),

	PromptChangeBrief: mustPrompt(PromptChangeBrief, "Change Brief", `
You are a change management lead writing a one-page brief for a sponsor.

Project: {{.project_name}}
Sponsor: {{.sponsor}}
Change tier: {{.tier}} (impact score {{.impact_score}})
Strategic goal: {{.strategic_goal}}
Impacted units: {{.units}}
Primary behavioural barrier: {{.barrier}}

Explain what the tier means for the support model, the three biggest
adoption risks given the barrier, and the next five actions from the
playbook. Use Markdown.
`, "project_name", "tier", "impact_score"),
}

// Lookup returns the named prompt.
func Lookup(name string) (Prompt, bool) {
	p, ok := library[name]
	return p, ok
}

// Names lists the prompt library in sorted order.
func Names() []string {
	out := make([]string, 0, len(library))
	for k := range library {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
