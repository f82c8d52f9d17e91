package reporting

import (
	"testing"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	lethal := classicScenario("lethal")
	lethal.Rates.Theta = 0.05
	lethal.Subgroups = []models.SubgroupSpec{{Name: "frail", Share: 0.3, DeathFactor: models.Float64(2)}}

	results := []*simulation.Result{
		runScenario(t, classicScenario("classic")),
		runScenario(t, lethal),
	}

	md := Markdown("Outbreak report", results)

	assert.Contains(t, md, "# Outbreak report\n")
	assert.Contains(t, md, "| Scenario | Method | R0 |")
	assert.Contains(t, md, "| classic | rk45 |")
	assert.Contains(t, md, "\n## classic\n")
	assert.Contains(t, md, "\n## lethal\n")
	assert.Contains(t, md, "single infectious individual")
	assert.Contains(t, md, "- Weighting factors: Φβ=")
	assert.Contains(t, md, "- Effective rates: β=0.3, γ=0.1, θ=0, δ=0")
}

func TestMarkdown_UnnamedWithoutRemoval(t *testing.T) {
	sc := classicScenario("")
	sc.Rates.Gamma = 0
	res := runScenario(t, sc)
	require.Nil(t, res.R0)

	md := Markdown("r", []*simulation.Result{res})
	assert.Contains(t, md, "| unnamed | rk45 | n/a |")
	assert.Contains(t, md, "Undefined")
}

func TestComparisonMarkdown(t *testing.T) {
	base := analysis.Summary{PeakInfectious: 100, PeakTime: 10, AttackRate: 0.5}
	cand := analysis.Summary{PeakInfectious: 150, PeakTime: 8, AttackRate: 0.75}

	md := ComparisonMarkdown("base", "cand", analysis.Compare(base, cand))

	assert.Contains(t, md, "# base vs cand")
	assert.Contains(t, md, "| Peak infectious | 100.000 | 150.000 |")
	assert.Contains(t, md, "| Peak time | 10.000 | 8.000 | -2.000 |")
	assert.Contains(t, md, "| Attack rate | 0.500 | 0.750 |")
}

func TestHTML(t *testing.T) {
	md := "# Title\n\n| Scenario | Peak |\n|---|---|\n| a | 1 |\n"

	html, err := HTML("A & B", md)
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>A &amp; B</title>")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<th>Scenario</th>")
	assert.Contains(t, html, "<td>a</td>")
}
