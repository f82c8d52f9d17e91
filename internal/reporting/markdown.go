package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/simulation"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Markdown renders a report covering every result: one summary table and
// one section per scenario.
func Markdown(title string, results []*simulation.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("| Scenario | Method | R0 | Peak infectious | Peak time | Attack rate | Deaths |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, res := range results {
		s := res.Summary
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			scenarioName(res),
			res.Trajectory.Info().Method,
			formatR0(res.R0),
			printer.Sprintf("%.1f", s.PeakInfectious),
			printer.Sprintf("%.2f", s.PeakTime),
			printer.Sprintf("%.1f%%", s.AttackRate*100),
			printer.Sprintf("%.1f", s.TotalDeaths))
	}

	for _, res := range results {
		s := res.Summary
		fmt.Fprintf(&b, "\n## %s\n\n", scenarioName(res))
		if res.Scenario != nil && res.Scenario.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", res.Scenario.Description)
		}
		fmt.Fprintf(&b, "- Effective rates: β=%g, γ=%g, θ=%g, δ=%g\n", res.Rates.Beta, res.Rates.Gamma, res.Rates.Theta, res.Rates.Delta)
		fmt.Fprintf(&b, "- Weighting factors: Φβ=%g, Φγ=%g, Φθ=%g, Φδ=%g\n", res.Rates.Phi.Beta, res.Rates.Phi.Gamma, res.Rates.Phi.Theta, res.Rates.Phi.Delta)
		fmt.Fprintf(&b, "- %s\n", InterpretR0(res.R0))
		fmt.Fprintf(&b, "- %s\n", InterpretAttackRate(s.AttackRate))
		b.WriteString(printer.Sprintf("- Final state: S=%.1f, I=%.1f, R=%.1f, D=%.1f\n", s.Final.S, s.Final.I, s.Final.R, s.Final.D))
		fmt.Fprintf(&b, "- %s\n", InterpretConservation(s.MaxConservationError, s.Population))
		if s.Warnings > 0 {
			fmt.Fprintf(&b, "- %d negative values clamped to zero\n", s.Warnings)
		}
	}
	return b.String()
}

// ComparisonMarkdown renders the differences between two runs.
func ComparisonMarkdown(baseline, candidate string, c analysis.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s vs %s\n\n", baseline, candidate)
	b.WriteString("| Metric | Baseline | Candidate | Δ |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	row := func(name string, base, cand, delta float64) {
		b.WriteString(printer.Sprintf("| %s | %.3f | %.3f | %+.3f |\n", name, base, cand, delta))
	}
	row("Peak infectious", c.Baseline.PeakInfectious, c.Candidate.PeakInfectious, c.PeakDelta)
	row("Peak time", c.Baseline.PeakTime, c.Candidate.PeakTime, c.PeakTimeDelta)
	row("Final susceptible", c.Baseline.Final.S, c.Candidate.Final.S, c.FinalSDelta)
	row("Final recovered", c.Baseline.Final.R, c.Candidate.Final.R, c.FinalRDelta)
	row("Final deceased", c.Baseline.Final.D, c.Candidate.Final.D, c.FinalDDelta)
	row("Attack rate", c.Baseline.AttackRate, c.Candidate.AttackRate, c.AttackRateDelta)
	return b.String()
}

// HTML converts a markdown report into a standalone HTML document.
func HTML(title, markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", htmlEscape(title))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func scenarioName(res *simulation.Result) string {
	if res.Scenario != nil && res.Scenario.Name != "" {
		return res.Scenario.Name
	}
	return "unnamed"
}

func formatR0(r0 *float64) string {
	if r0 == nil {
		return "n/a"
	}
	return printer.Sprintf("%.3f", *r0)
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
