package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/changedesk/internal/changeservice"
	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/registry"
	"github.com/starford/changedesk/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	svc := changeservice.New(testutil.TestDB(t),
		changeservice.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if _, err := svc.SeedVendors(context.Background(), registry.Defaults()); err != nil {
		t.Fatal(err)
	}
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "triage_project":
		result, err = srv.triageProject(ctx, req)
	case "get_project":
		result, err = srv.getProject(ctx, req)
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "curate_cohort":
		result, err = srv.curateCohort(ctx, req)
	case "check_compliance_risk":
		result, err = srv.checkCompliance(ctx, req)
	case "behavioural_gap":
		result, err = srv.behaviouralGap(ctx, req)
	case "portfolio_summary":
		result, err = srv.portfolioSummary(ctx, req)
	case "analyze_friction":
		result, err = srv.analyzeFriction(ctx, req)
	case "get_intake_contract":
		result, err = srv.getIntakeContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestTriageAndGetProject(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "triage_project", map[string]interface{}{
		"project_name":   "Shared Services Move",
		"change_type":    "Restructure",
		"scale":          "250+ people",
		"impact_depth":   "A lot of new skills",
		"change_history": "Failed before",
		"impacted_units": "Finance, HR,",
	})
	if r.IsError {
		t.Fatalf("triage failed: %s", resultText(r))
	}
	var rec models.IntakeRecord
	if err := json.Unmarshal([]byte(resultText(r)), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.ImpactScore != 15 || rec.ChangeTier != "Full Support" {
		t.Errorf("score=%d tier=%q", rec.ImpactScore, rec.ChangeTier)
	}
	if len(rec.ImpactedUnits) != 2 {
		t.Errorf("units = %v", rec.ImpactedUnits)
	}

	r = callTool(t, srv, "get_project", map[string]interface{}{"id": rec.ID})
	if r.IsError || !strings.Contains(resultText(r), "Shared Services Move") {
		t.Errorf("get_project = %q", resultText(r))
	}

	r = callTool(t, srv, "list_projects", map[string]interface{}{})
	if !strings.Contains(resultText(r), rec.ID) {
		t.Errorf("list_projects missing %s", rec.ID)
	}
}

func TestTriageRequiresName(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "triage_project", map[string]interface{}{"change_type": "AI Bot"})
	if !r.IsError {
		t.Error("expected error without project_name")
	}
}

func TestGetProjectMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_project", map[string]interface{}{"id": "nope"})
	if !r.IsError || resultText(r) != "not found" {
		t.Errorf("result = %q, error = %v", resultText(r), r.IsError)
	}
}

func TestCurateCohortAndCompliance(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "curate_cohort", map[string]interface{}{
		"cohort_name":    "Board",
		"region":         "Europe",
		"audience_level": "Global Executive",
		"maturity_level": "Skeptic",
		"baseline_score": float64(2),
		"target_score":   float64(9),
	})
	if r.IsError {
		t.Fatalf("curate failed: %s", resultText(r))
	}
	var out changeservice.CohortOutcome
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Cohort.SelectedVendor != "Gartner" {
		t.Errorf("vendor = %q, want auto-assigned Gartner", out.Cohort.SelectedVendor)
	}
	if out.Gap.Delta != 7 {
		t.Errorf("delta = %d, want 7", out.Gap.Delta)
	}

	r = callTool(t, srv, "check_compliance_risk", map[string]interface{}{"region": "Europe", "vendor": "Gartner"})
	if resultText(r) != "no compliance risk found" {
		t.Errorf("Gartner = %q", resultText(r))
	}
	r = callTool(t, srv, "check_compliance_risk", map[string]interface{}{"region": "Global", "vendor": "QuickSkill Partners"})
	if !strings.Contains(resultText(r), "vendor_red_rating") {
		t.Errorf("red vendor = %q", resultText(r))
	}
}

func TestBehaviouralGap(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "behavioural_gap", map[string]interface{}{"baseline": float64(4), "target": float64(7)})
	if !strings.Contains(resultText(r), "Significant Shift") {
		t.Errorf("gap = %q", resultText(r))
	}
	r = callTool(t, srv, "behavioural_gap", map[string]interface{}{"baseline": "four"})
	if !r.IsError {
		t.Error("expected error for non-numeric baseline")
	}
}

func TestPortfolioSummary(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "triage_project", map[string]interface{}{"project_name": "Small", "change_type": "Comms Only"})
	r := callTool(t, srv, "portfolio_summary", map[string]interface{}{"include_closed": true})
	if !strings.Contains(resultText(r), `"total_projects": 1`) {
		t.Errorf("portfolio = %q", resultText(r))
	}
}

func TestAnalyzeFrictionWithoutKey(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "analyze_friction", map[string]interface{}{"notes": "too many forms\n\nslow approvals"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "API key is missing") {
		t.Errorf("text = %q", resultText(r))
	}
}

func TestIntakeContract(t *testing.T) {
	srv := testServer(t)
	text := resultText(callTool(t, srv, "get_intake_contract", nil))
	for _, want := range []string{"## change_type", "`Restructure` = 5", "Capability", "Auto-Assign"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}
}
