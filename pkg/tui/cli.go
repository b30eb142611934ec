// Package tui renders CLI output: progress bar, result tables, status
// lines. Simple and streaming, no full-screen TUI.
package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// PrintHeader prints the program banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  SALESCAN") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Streaming sales-ledger aggregator"))
	fmt.Println()
}

// ShowProgress creates a byte-oriented progress bar for a ledger read.
// Width zero selects the default width.
func ShowProgress(total int64, description string, width int) *progressbar.ProgressBar {
	if width <= 0 {
		width = 40
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(width),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Report holds the aggregation outcome for rendering.
type Report struct {
	Counts     map[string]int
	Sales      map[string]float64
	Accepted   int64
	Duplicates int64
	Unkeyed    int64
	BytesRead  int64
	Duration   time.Duration
	Precision  int
	Err        error
}

// PrintReport renders the per-category totals and run statistics.
func PrintReport(w io.Writer, r *Report) {
	precision := r.Precision
	if precision <= 0 {
		precision = 2
	}

	fmt.Fprintln(w)
	if r.Err != nil {
		fmt.Fprintln(w, accentStyle.Render("  ⚠ PARTIAL RESULTS"))
		fmt.Fprintln(w, mutedStyle.Render("  "+r.Err.Error()))
	} else {
		fmt.Fprintln(w, successStyle.Render("  ✓ PROCESSING COMPLETE"))
	}
	fmt.Fprintln(w)

	// Stable row order for humans; the mappings themselves carry no
	// ordering guarantee.
	categories := make([]string, 0, len(r.Counts))
	for c := range r.Counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Category", "Items", "Total Sales"})
	for _, c := range categories {
		tbl.AppendRow(table.Row{c, r.Counts[c], fmt.Sprintf("%.*f", precision, r.Sales[c])})
	}
	tbl.AppendFooter(table.Row{"", r.Accepted, ""})
	tbl.Render()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Accepted:"), titleStyle.Render(formatNumber(r.Accepted)))
	if r.Duplicates > 0 {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Duplicates:"), formatNumber(r.Duplicates))
	}
	if r.Unkeyed > 0 {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("No ID:"), formatNumber(r.Unkeyed))
	}
	if r.BytesRead > 0 && r.Duration > 0 {
		throughput := float64(r.BytesRead) / r.Duration.Seconds()
		fmt.Fprintf(w, "  %s %s %s\n",
			mutedStyle.Render("Read:"),
			titleStyle.Render(formatBytes(r.BytesRead)),
			mutedStyle.Render(fmt.Sprintf("in %s (%s/sec)", formatDuration(r.Duration), formatBytes(int64(throughput)))))
	}
	fmt.Fprintln(w)
}

// PrintError reports a run failure to stderr without aborting.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, accentStyle.Render("  ✗ ")+err.Error())
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
