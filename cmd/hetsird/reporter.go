package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/reporting"
	"github.com/spboyer/hetsird/internal/simulation"
	"golang.org/x/term"
)

const defaultRuleWidth = 70

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ruleWidth is the width of horizontal rules: the terminal width when w is
// a terminal, capped at defaultRuleWidth.
func ruleWidth(w io.Writer) int {
	if !isTerminal(w) {
		return defaultRuleWidth
	}
	width, _, err := term.GetSize(int(w.(*os.File).Fd()))
	if err != nil || width <= 0 {
		return defaultRuleWidth
	}
	return min(width, defaultRuleWidth)
}

func printHeading(w io.Writer, title string) {
	rule := strings.Repeat("=", ruleWidth(w))
	fmt.Fprintln(w, rule)           //nolint:errcheck
	fmt.Fprintf(w, " %s\n", title) //nolint:errcheck
	fmt.Fprintln(w, rule)           //nolint:errcheck
}

// table renders aligned text columns. Numeric columns are right-aligned.
type table struct {
	headers []string
	numeric []bool
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers, numeric: make([]bool, len(headers))}
}

// alignRight marks columns whose cells are right-aligned.
func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.numeric[c] = true
	}
	return t
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i, c := range cells {
			b.WriteString("  ")
			if t.numeric[i] {
				b.WriteString(padLeft(c, widths[i]))
			} else {
				b.WriteString(padRight(c, widths[i]))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " ")) //nolint:errcheck
	}

	line(t.headers)
	sep := make([]string, len(widths))
	for i, wd := range widths {
		sep[i] = strings.Repeat("-", wd)
	}
	line(sep)
	for _, row := range t.rows {
		line(row)
	}
}

// printResult prints the summary of one simulation run.
func printResult(w io.Writer, res *simulation.Result) {
	s := res.Summary
	info := res.Trajectory.Info()

	name := "scenario"
	if res.Scenario != nil && res.Scenario.Name != "" {
		name = res.Scenario.Name
	}
	printHeading(w, strings.ToUpper(name))

	t := newTable("Metric", "Value").alignRight(1)
	t.addRow("Method", info.Method)
	t.addRow("Samples", strconv.Itoa(s.Samples))
	t.addRow("Steps", fmt.Sprintf("%d (%d rejected)", info.Stats.Steps, info.Stats.Rejected))
	t.addRow("Effective β", formatNumber(res.Rates.Beta))
	t.addRow("Effective γ", formatNumber(res.Rates.Gamma))
	t.addRow("Effective θ", formatNumber(res.Rates.Theta))
	t.addRow("Effective δ", formatNumber(res.Rates.Delta))
	if res.R0 != nil {
		t.addRow("R0", formatNumber(*res.R0))
	} else {
		t.addRow("R0", "n/a")
	}
	t.addRow("Peak infectious", formatNumber(s.PeakInfectious))
	t.addRow("Peak time", formatNumber(s.PeakTime))
	t.addRow("Attack rate", fmt.Sprintf("%.1f%%", s.AttackRate*100))
	t.addRow("Deaths", formatNumber(s.TotalDeaths))
	t.addRow("Max drift", formatNumber(s.MaxConservationError))
	t.addRow("Duration", formatDuration(res.Duration))
	t.render(w)
	fmt.Fprintln(w) //nolint:errcheck
}

// printTrajectory prints every n-th sample plus the final one. rt, when
// non-nil, adds an effective reproduction number column.
func printTrajectory(w io.Writer, tr *models.Trajectory, every int, rt []float64) {
	if every < 1 {
		every = 1
	}
	headers := []string{"t", "S", "I", "R", "D"}
	if rt != nil {
		headers = append(headers, "R(t)")
	}
	t := newTable(headers...)
	for i := range headers {
		t.alignRight(i)
	}

	last := tr.Len() - 1
	for i, smp := range tr.Samples() {
		if i%every != 0 && i != last {
			continue
		}
		cells := []string{
			formatNumber(smp.Time),
			formatNumber(smp.State.S),
			formatNumber(smp.State.I),
			formatNumber(smp.State.R),
			formatNumber(smp.State.D),
		}
		if rt != nil {
			cells = append(cells, formatNumber(rt[i]))
		}
		t.addRow(cells...)
	}
	t.render(w)
}

func printWarnings(w io.Writer, tr *models.Trajectory) {
	warnings := tr.Warnings()
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠ %d negative values clamped to zero\n", len(warnings)) //nolint:errcheck
	for i, wn := range warnings {
		if i == 5 {
			fmt.Fprintf(w, "  ... and %d more\n", len(warnings)-i) //nolint:errcheck
			break
		}
		fmt.Fprintf(w, "  %s\n", wn) //nolint:errcheck
	}
}

func printInterpretation(w io.Writer, res *simulation.Result) {
	fmt.Fprintln(w)                                      //nolint:errcheck
	fmt.Fprint(w, reporting.FormatSummaryReport(res)) //nolint:errcheck
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
