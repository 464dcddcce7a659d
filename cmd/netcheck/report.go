package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// regionSummary is one row of the report.
type regionSummary struct {
	region        string
	passes        int
	demandOrphans int
	otherOrphans  int
	unsupported   []string
}

func summarize(a *analysis) []regionSummary {
	unsupported := a.mgr.UnsupportedDemands()
	var rows []regionSummary
	for _, region := range a.mgr.Regions() {
		row := regionSummary{region: region, passes: a.mgr.Passes(region)}
		for _, period := range a.mgr.Periods() {
			row.demandOrphans += len(a.mgr.DemandOrphans(region, period))
			row.otherOrphans += len(a.mgr.OtherOrphans(region, period))
			for _, c := range unsupported[network.RegionPeriod{Region: region, Period: period}] {
				row.unsupported = append(row.unsupported, fmt.Sprintf("%s@%d", c, period))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func printSummary(w io.Writer, a *analysis) {
	rows := summarize(a)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))).
		Headers("REGION", "PASSES", "DEMAND ORPHANS", "OTHER ORPHANS", "UNSUPPORTED DEMANDS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(
			r.region,
			strconv.Itoa(r.passes),
			strconv.Itoa(r.demandOrphans),
			strconv.Itoa(r.otherOrphans),
			strings.Join(r.unsupported, ", "),
		)
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Commodity network analysis (run %s)", a.runID)))
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, status(a, rows))
}

func status(a *analysis, rows []regionSummary) string {
	unsupported := slices.ContainsFunc(rows, func(r regionSummary) bool { return len(r.unsupported) > 0 })
	switch {
	case unsupported && a.cfg.Analysis.Strict:
		return errorStyle.Render("FAILED: some demands cannot be supplied")
	case !a.clean:
		return warnStyle.Render("PRUNED: orphaned technologies were removed")
	case unsupported:
		return warnStyle.Render("CLEAN: no orphans, but some demands cannot be supplied")
	default:
		return successStyle.Render("CLEAN: every technology lies on a source-to-demand chain")
	}
}
