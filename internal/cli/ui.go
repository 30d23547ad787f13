package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

// statusStyles colors the status column of the report table.
var statusStyles = map[pipeline.Status]lipgloss.Style{
	pipeline.StatusSucceeded: lipgloss.NewStyle().Foreground(colorGreen),
	pipeline.StatusSkipped:   lipgloss.NewStyle().Foreground(colorDim),
	pipeline.StatusFailed:    lipgloss.NewStyle().Foreground(colorRed),
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Tables
// =============================================================================

// headerRow is the row index lipgloss passes to StyleFunc for the header.
const headerRow = -1

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// renderReport renders one row per outcome. Skipped outcomes are only listed
// when verbose is set; the summary line always counts them.
func renderReport(r *pipeline.Report, verbose bool) string {
	var rows [][]string
	var statuses []pipeline.Status
	for _, o := range r.Outcomes {
		if o.Status == pipeline.StatusSkipped && !verbose {
			continue
		}
		size := ""
		if o.Bytes > 0 {
			size = humanize.Bytes(uint64(o.Bytes))
		}
		rows = append(rows, []string{
			string(o.Kind),
			displayKey(o.Key, o.Path),
			string(o.Status),
			strconv.Itoa(len(o.Manifests)),
			humanize.Comma(int64(o.Files)),
			size,
			o.Reason,
		})
		statuses = append(statuses, o.Status)
	}

	t := newTable("Kind", "Key", "Status", "Poms", "Files", "Size", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 2 && row >= 0 && row < len(statuses) {
				return statusStyles[statuses[row]].Padding(0, 1)
			}
			return styleCell
		})

	var b strings.Builder
	if len(rows) > 0 {
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	b.WriteString(summaryLine(r.Summary))
	return b.String()
}

// summaryLine renders the run totals on a single line.
func summaryLine(s pipeline.Summary) string {
	parts := []string{
		fmt.Sprintf("%d succeeded", s.Succeeded),
		fmt.Sprintf("%d skipped", s.Skipped),
		fmt.Sprintf("%d failed", s.Failed),
		fmt.Sprintf("%d poms", s.Manifests),
		humanize.Comma(int64(s.Files)) + " files",
		humanize.Bytes(uint64(s.Bytes)),
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// renderPlan renders one row per resolved step, followed by unkeyable
// artifacts and external poms no jar claimed.
func renderPlan(p *pipeline.Plan) string {
	rows := make([][]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		merged := ""
		if s.Merge != nil {
			merged = filepath.Base(s.Merge.Path)
		}
		external := ""
		if s.POM != nil {
			external = filepath.Base(s.POM.Path)
		}
		shadowed := make([]string, len(s.Shadowed))
		for i, f := range s.Shadowed {
			shadowed[i] = filepath.Base(f.Path)
		}
		rows = append(rows, []string{
			string(s.Pass),
			s.Key(),
			s.ModuleDir(),
			merged,
			external,
			strings.Join(shadowed, ", "),
		})
	}

	t := newTable("Pass", "Key", "Module", "Merged jar", "External pom", "Shadowed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		})

	var b strings.Builder
	b.WriteString(t.Render())
	for _, u := range p.Unkeyable {
		b.WriteString("\n  " + StyleWarning.Render("unkeyable "+u.Path))
	}
	for _, f := range p.UnusedPOMs {
		b.WriteString("\n  " + StyleDim.Render("unused pom "+f.Path))
	}
	return b.String()
}

// displayKey falls back to the file name for outcomes without a key.
func displayKey(key, path string) string {
	if key != "" {
		return key
	}
	return filepath.Base(path)
}
