package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/starford/changedesk/internal"
	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/portfolio"
)

// openRuntime opens the service for one-shot commands. Logs go to stderr
// so that table and JSON output stay clean.
func openRuntime(ctx context.Context, cmd *cli.Command) (*internal.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return internal.Open(ctx, cfg, logger, nil)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func portfolioCommand() *cli.Command {
	return &cli.Command{
		Name:  "portfolio",
		Usage: "Print the portfolio summary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sponsor", Usage: "Filter by sponsor"},
			&cli.StringFlag{Name: "goal", Usage: "Filter by strategic goal"},
			&cli.StringFlag{Name: "status", Usage: "Filter by lifecycle status"},
			&cli.BoolFlag{Name: "include-closed", Usage: "Count closed projects against capacity"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of tables"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := openRuntime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := rt.Service.Portfolio(ctx, portfolio.Filter{
				Sponsor:       cmd.String("sponsor"),
				StrategicGoal: cmd.String("goal"),
				Status:        cmd.String("status"),
				IncludeClosed: cmd.Bool("include-closed"),
			})
			if err != nil {
				return err
			}
			cohorts, err := rt.Service.CohortPortfolio(ctx)
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return printJSON(os.Stdout, map[string]any{"projects": m, "cohorts": cohorts})
			}
			renderPortfolio(os.Stdout, m, cohorts)
			return nil
		},
	}
}

func vendorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "vendors",
		Usage: "Print the vendor registry",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := openRuntime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			vendors, err := rt.Service.ListVendors(ctx)
			if err != nil {
				return err
			}
			renderVendors(os.Stdout, vendors)
			return nil
		},
	}
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func renderPortfolio(w io.Writer, m portfolio.Metrics, c portfolio.CohortMetrics) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Change capacity")
	tw.AppendHeader(table.Row{"Projects", "Used", "Total", "Ratio", "Level", "Missing effort"})
	tw.AppendRow(table.Row{
		m.TotalProjects, m.Capacity.UsedPoints, m.Capacity.TotalPoints,
		fmt.Sprintf("%.0f%%", m.Capacity.Ratio*100), m.Capacity.Level, m.Capacity.MissingEffort,
	})
	tw.Render()

	if len(m.Saturation) > 0 {
		tw = table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle("Unit saturation")
		tw.AppendHeader(table.Row{"Unit", "Projects", "Saturated"})
		for _, u := range m.Saturation {
			tw.AppendRow(table.Row{u.Unit, u.Count, u.Saturated})
		}
		tw.Render()
	}

	tw = table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Latest health")
	tw.AppendHeader(table.Row{"Projects", "Readiness", "Sentiment", "Mgr confidence", "Adoption %", "Execution"})
	tw.AppendRow(table.Row{
		m.Health.Projects, optFloat(m.Health.Readiness), optFloat(m.Health.Sentiment),
		optFloat(m.Health.ManagerConfidence), optFloat(m.Health.AdoptionRatePct), optFloat(m.ExecutionScore),
	})
	tw.Render()

	tw = table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Leadership cohorts")
	tw.AppendHeader(table.Row{"Cohorts", "Investment", "Complete", "Governance gaps", "Execution"})
	tw.AppendRow(table.Row{c.TotalCohorts, c.TotalInvestment, c.CompleteCount, c.GovernanceIncomplete, optFloat(c.ExecutionScore)})
	tw.Render()
}

func renderVendors(w io.Writer, vendors []models.VendorRecord) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Name", "Specialty", "Rating", "Compliance", "Residency", "Status"})
	for _, v := range vendors {
		tw.AppendRow(table.Row{v.Name, v.Specialty, v.PerformanceRating, v.ComplianceRating, v.DataResidencyCert, v.Status})
	}
	tw.Render()
}
