// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes changedesk tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/changeservice"
	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/portfolio"
)

const contractURI = "changedesk://intake-contract"

// Server wraps the MCP server with changedesk tools.
type Server struct {
	mcp *server.MCPServer
	svc *changeservice.Service
}

// New creates a new MCP server with all changedesk tools registered.
func New(svc *changeservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Changedesk",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("triage_project",
		mcp.WithDescription("Score a change initiative, assign its support tier and seed its playbook. "+
			"Read the intake contract first via get_intake_contract or the "+contractURI+" resource."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Initiative name")),
		mcp.WithString("sponsor", mcp.Description("Accountable sponsor")),
		mcp.WithString("change_type", mcp.Description("Kind of change, e.g. Restructure")),
		mcp.WithString("scale", mcp.Description("Headcount band, e.g. 250+ people")),
		mcp.WithString("impact_depth", mcp.Description("How much people must learn")),
		mcp.WithString("change_history", mcp.Description("Track record of similar changes")),
		mcp.WithString("strategic_goal", mcp.Description("Strategic goal served")),
		mcp.WithString("impacted_units", mcp.Description("Comma-separated list of impacted business units")),
		mcp.WithString("behavioural_barrier", mcp.Description("Capability, Opportunity or Motivation")),
	), s.triageProject)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Read a triaged project with its playbook."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project ID")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List triaged projects, optionally filtered."),
		mcp.WithString("sponsor", mcp.Description("Filter by sponsor")),
		mcp.WithString("strategic_goal", mcp.Description("Filter by strategic goal")),
		mcp.WithString("status", mcp.Description("Filter by lifecycle status")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("curate_cohort",
		mcp.WithDescription("Recommend a learning pathway, vendor, urgency and budget for a leadership cohort "+
			"and store it. Compliance findings are reported alongside the stored cohort."),
		mcp.WithString("cohort_name", mcp.Required(), mcp.Description("Cohort name")),
		mcp.WithString("department", mcp.Description("Owning department")),
		mcp.WithString("region", mcp.Description("Delivery region, e.g. Europe")),
		mcp.WithString("audience_level", mcp.Description("Audience level, e.g. Global Executive")),
		mcp.WithString("maturity_level", mcp.Description("AI maturity, e.g. Skeptic")),
		mcp.WithString("cohort_size_band", mcp.Description("Size band, e.g. 1-20 (Pilot)")),
		mcp.WithString("learning_focus", mcp.Description("Program focus")),
		mcp.WithString("selected_vendor", mcp.Description("Vendor name or "+models.AutoAssignVendor)),
		mcp.WithNumber("baseline_score", mcp.Description("Current behaviour score 1-10")),
		mcp.WithNumber("target_score", mcp.Description("Target behaviour score 1-10")),
	), s.curateCohort)

	s.mcp.AddTool(mcp.NewTool("check_compliance_risk",
		mcp.WithDescription("Check a vendor against the data residency rules of a region."),
		mcp.WithString("region", mcp.Required(), mcp.Description("Delivery region")),
		mcp.WithString("vendor", mcp.Required(), mcp.Description("Vendor name")),
	), s.checkCompliance)

	s.mcp.AddTool(mcp.NewTool("behavioural_gap",
		mcp.WithDescription("Tag the shift between a baseline and a target behaviour score."),
		mcp.WithNumber("baseline", mcp.Required(), mcp.Description("Baseline score 1-10")),
		mcp.WithNumber("target", mcp.Required(), mcp.Description("Target score 1-10")),
	), s.behaviouralGap)

	s.mcp.AddTool(mcp.NewTool("portfolio_summary",
		mcp.WithDescription("Aggregate change capacity, unit saturation and latest health across projects."),
		mcp.WithString("sponsor", mcp.Description("Filter by sponsor")),
		mcp.WithString("strategic_goal", mcp.Description("Filter by strategic goal")),
		mcp.WithBoolean("include_closed", mcp.Description("Count closed projects against capacity")),
	), s.portfolioSummary)

	s.mcp.AddTool(mcp.NewTool("analyze_friction",
		mcp.WithDescription("Draft a friction and sludge report from staff notes, one note per line."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Friction notes separated by newlines")),
		mcp.WithString("project_id", mcp.Description("Optional project the notes belong to")),
	), s.analyzeFriction)

	s.mcp.AddTool(mcp.NewTool("get_intake_contract",
		mcp.WithDescription("Returns the recognised intake and cohort vocabulary with scoring weights."),
	), s.getIntakeContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Intake Contract",
			mcp.WithResourceDescription("Recognised intake categories and their scoring weights."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found"), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string) (int, bool) {
	v, ok := req.GetArguments()[key].(float64)
	return int(v), ok
}

func boolArg(req mcp.CallToolRequest, key string) bool {
	v, _ := req.GetArguments()[key].(bool)
	return v
}

func splitList(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) triageProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.SubmitProject(ctx, models.IntakeFields{
		ProjectName:        name,
		Sponsor:            req.GetString("sponsor", ""),
		ChangeType:         req.GetString("change_type", ""),
		Scale:              req.GetString("scale", ""),
		ImpactDepth:        req.GetString("impact_depth", ""),
		ChangeHistory:      req.GetString("change_history", ""),
		StrategicGoal:      req.GetString("strategic_goal", ""),
		ImpactedUnits:      splitList(req.GetString("impacted_units", ""), ","),
		BehaviouralBarrier: req.GetString("behavioural_barrier", ""),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(a)
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.GetProject(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(a)
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListProjects(ctx, portfolio.Filter{
		Sponsor:       req.GetString("sponsor", ""),
		StrategicGoal: req.GetString("strategic_goal", ""),
		Status:        req.GetString("status", ""),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(items)
}

func (s *Server) curateCohort(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("cohort_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	baseline, _ := intArg(req, "baseline_score")
	target, _ := intArg(req, "target_score")
	out, err := s.svc.SubmitCohort(ctx, models.CohortFields{
		CohortName:     name,
		Department:     req.GetString("department", ""),
		Region:         req.GetString("region", ""),
		AudienceLevel:  req.GetString("audience_level", ""),
		MaturityLevel:  req.GetString("maturity_level", ""),
		CohortSizeBand: req.GetString("cohort_size_band", ""),
		LearningFocus:  req.GetString("learning_focus", ""),
		SelectedVendor: req.GetString("selected_vendor", models.AutoAssignVendor),
		BaselineScore:  baseline,
		TargetScore:    target,
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(out)
}

func (s *Server) checkCompliance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	region, err := req.RequireString("region")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	vendor, err := req.RequireString("vendor")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	finding, err := s.svc.CheckCompliance(ctx, region, vendor)
	if err != nil {
		return errorResult(err)
	}
	if finding == nil {
		return mcp.NewToolResultText("no compliance risk found"), nil
	}
	return jsonResult(finding)
}

func (s *Server) behaviouralGap(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseline, ok := intArg(req, "baseline")
	if !ok {
		return mcp.NewToolResultError("baseline must be a number"), nil
	}
	target, ok := intArg(req, "target")
	if !ok {
		return mcp.NewToolResultError("target must be a number"), nil
	}
	return jsonResult(s.svc.Gap(baseline, target))
}

func (s *Server) portfolioSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.svc.Portfolio(ctx, portfolio.Filter{
		Sponsor:       req.GetString("sponsor", ""),
		StrategicGoal: req.GetString("strategic_goal", ""),
		IncludeClosed: boolArg(req, "include_closed"),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(m)
}

func (s *Server) analyzeFriction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := req.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.AnalyzeFriction(ctx, req.GetString("project_id", ""), splitList(notes, "\n"))
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) getIntakeContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(IntakeContract(s.svc.ScoringModel())), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     IntakeContract(s.svc.ScoringModel()),
		},
	}, nil
}
