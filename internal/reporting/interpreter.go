package reporting

import (
	"fmt"
	"strings"

	"github.com/spboyer/hetsird/internal/simulation"
)

// InterpretR0 returns a plain-language reading of the basic reproduction
// number. A nil value means nobody ever leaves the infectious compartment.
func InterpretR0(r0 *float64) string {
	if r0 == nil {
		return "Undefined: no recovery or death, infections never end"
	}
	switch v := *r0; {
	case v > 1:
		return fmt.Sprintf("Epidemic grows (R0 = %.3g > 1)", v)
	case v == 1:
		return "Endemic threshold (R0 = 1)"
	default:
		return fmt.Sprintf("Outbreak dies out (R0 = %.3g < 1)", v)
	}
}

// InterpretAttackRate describes the share of the population that was ever
// infected (0–1).
func InterpretAttackRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 90:
		return fmt.Sprintf("Almost everyone infected (%.1f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("Majority infected (%.1f%%)", pct)
	case pct >= 10:
		return fmt.Sprintf("Substantial outbreak (%.1f%%)", pct)
	default:
		return fmt.Sprintf("Contained outbreak (%.1f%%)", pct)
	}
}

// InterpretConservation reports how far the population total drifted.
func InterpretConservation(maxError, population float64) string {
	if population == 0 {
		return "Empty population"
	}
	rel := maxError / population
	if rel < 1e-9 {
		return "Population conserved to machine precision"
	}
	return fmt.Sprintf("Population drifted by up to %.3g (%.2g of N)", maxError, rel)
}

// FormatSummaryReport produces a plain-language report of one run.
func FormatSummaryReport(res *simulation.Result) string {
	var b strings.Builder
	s := res.Summary
	info := res.Trajectory.Info()

	b.WriteString("=== Interpretation ===\n\n")
	if res.Scenario != nil && res.Scenario.Name != "" {
		b.WriteString(fmt.Sprintf("Scenario:      %s\n", res.Scenario.Name))
	}
	b.WriteString(fmt.Sprintf("Method:        %s (%d samples, %d steps)\n", info.Method, s.Samples, info.Stats.Steps))
	b.WriteString(fmt.Sprintf("R0:            %s\n", InterpretR0(res.R0)))
	b.WriteString(fmt.Sprintf("Peak:          %.4g infectious at t=%.4g\n", s.PeakInfectious, s.PeakTime))
	b.WriteString(fmt.Sprintf("Attack rate:   %s\n", InterpretAttackRate(s.AttackRate)))
	b.WriteString(fmt.Sprintf("Deaths:        %.4g\n", s.TotalDeaths))
	b.WriteString(fmt.Sprintf("Conservation:  %s\n", InterpretConservation(s.MaxConservationError, s.Population)))
	if s.Warnings > 0 {
		b.WriteString(fmt.Sprintf("Warnings:      %d negative values clamped to zero\n", s.Warnings))
	}
	return b.String()
}
