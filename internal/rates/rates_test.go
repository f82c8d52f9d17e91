package rates

import (
	"math"
	"testing"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = models.RateSet{Beta: 0.3, Gamma: 0.1, Theta: 0.05, Delta: 0.01}

func TestCompute_NoSubgroupsIsIdentity(t *testing.T) {
	eff, err := Compute(base, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, base.Beta, eff.Beta)
	assert.Equal(t, base.Gamma, eff.Gamma)
	assert.Equal(t, base.Theta, eff.Theta)
	assert.Equal(t, base.Delta, eff.Delta)
	assert.Equal(t, models.WeightingFactors{Beta: 1, Gamma: 1, Theta: 1, Delta: 1}, eff.Phi)
}

func TestComputeForSubgroups_WeightedSum(t *testing.T) {
	shares := []float64{0, 0.1, 0.25, 0.5, 0.9, 1}
	factors := []float64{0, 0.5, 1, 2, 10}

	for _, tr := range models.Transitions {
		for _, a := range shares {
			for _, x := range factors {
				g := models.NewSubgroup("g", a)
				switch tr {
				case models.TransitionInfection:
					g.InfectionFactor = x
				case models.TransitionRecovery:
					g.RecoveryFactor = x
				case models.TransitionDeath:
					g.DeathFactor = x
				case models.TransitionRelapse:
					g.RelapseFactor = x
				}

				eff, err := ComputeForSubgroups(base, []models.Subgroup{g})
				require.NoError(t, err)

				want := ((1 - a) + a*x) * base.Get(tr)
				got := map[models.Transition]float64{
					models.TransitionInfection: eff.Beta,
					models.TransitionRecovery:  eff.Gamma,
					models.TransitionDeath:     eff.Theta,
					models.TransitionRelapse:   eff.Delta,
				}[tr]
				assert.InDelta(t, want, got, 1e-15, "transition=%s a=%g x=%g", tr, a, x)
			}
		}
	}
}

func TestComputeForSubgroups_ScenarioB(t *testing.T) {
	g := models.NewSubgroup("susceptible-heavy", 0.2)
	g.InfectionFactor = 2

	eff, err := ComputeForSubgroups(models.RateSet{Beta: 0.3, Gamma: 0.1}, []models.Subgroup{g})
	require.NoError(t, err)

	assert.InDelta(t, 0.36, eff.Beta, 1e-15)
	assert.InDelta(t, 1.2, eff.Phi.Beta, 1e-15)
	assert.InDelta(t, 0.1, eff.Gamma, 1e-15)
	assert.Equal(t, 0.0, eff.Theta)
}

func TestComputeForSubgroups_ScenarioC(t *testing.T) {
	g := models.NewSubgroup("frail", 0.3)
	g.DeathFactor = 2

	eff, err := ComputeForSubgroups(models.RateSet{Beta: 0.3, Gamma: 0.1, Theta: 0.05}, []models.Subgroup{g})
	require.NoError(t, err)
	assert.InDelta(t, 0.065, eff.Theta, 1e-15)
	assert.InDelta(t, 0.165, eff.RemovalRate(), 1e-15)
}

func TestCompute_ManySubgroups(t *testing.T) {
	groups := []models.Subgroup{
		{Share: 0.1, InfectionFactor: 3, RecoveryFactor: 0.5, DeathFactor: 2, RelapseFactor: 1},
		{Share: 0.2, InfectionFactor: 0, RecoveryFactor: 2, DeathFactor: 1, RelapseFactor: 4},
		{Share: 0.3, InfectionFactor: 1.5, RecoveryFactor: 1, DeathFactor: 0, RelapseFactor: 0},
	}
	eff, err := Compute(base, 0.4, groups)
	require.NoError(t, err)

	assert.InDelta(t, 0.4+0.3+0+0.45, eff.Phi.Beta, 1e-15)
	assert.InDelta(t, 0.4+0.05+0.4+0.3, eff.Phi.Gamma, 1e-15)
	assert.InDelta(t, 0.4+0.2+0.2+0, eff.Phi.Theta, 1e-15)
	assert.InDelta(t, 0.4+0.1+0.8+0, eff.Phi.Delta, 1e-15)
	assert.InDelta(t, eff.Phi.Beta*base.Beta, eff.Beta, 1e-15)
}

func TestCompute_Deterministic(t *testing.T) {
	groups := []models.Subgroup{
		{Share: 0.123456789, InfectionFactor: 1.1, RecoveryFactor: 0.9, DeathFactor: 1.7, RelapseFactor: 3.3},
		{Share: 0.333333333, InfectionFactor: 2.2, RecoveryFactor: 1.9, DeathFactor: 0.7, RelapseFactor: 0.3},
	}
	first, err := ComputeForSubgroups(base, groups)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ComputeForSubgroups(base, groups)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompute_SharesMustSumToOne(t *testing.T) {
	_, err := Compute(base, 0.5, []models.Subgroup{models.NewSubgroup("g", 0.6)})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "subgroups", cfgErr.Field)

	_, err = Compute(base, 0.3, []models.Subgroup{models.NewSubgroup("g", 0.6)})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = Compute(base, 0.4+1e-12, []models.Subgroup{models.NewSubgroup("g", 0.6)})
	assert.NoError(t, err, "within tolerance")
}

func TestCompute_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		base      models.RateSet
		reference float64
		groups    []models.Subgroup
		field     string
	}{
		{"negative beta", models.RateSet{Beta: -0.1}, 1, nil, "rates.beta"},
		{"negative delta", models.RateSet{Delta: -1}, 1, nil, "rates.delta"},
		{"nan gamma", models.RateSet{Gamma: math.NaN()}, 1, nil, "rates.gamma"},
		{"infinite theta", models.RateSet{Theta: math.Inf(1)}, 1, nil, "rates.theta"},
		{"negative reference", base, -0.2, []models.Subgroup{models.NewSubgroup("g", 1)}, "reference_share"},
		{"reference above one", base, 1.5, nil, "reference_share"},
		{"negative share", base, 1, []models.Subgroup{models.NewSubgroup("g", -0.1)}, "subgroups[0].share"},
		{"share above one", base, 0, []models.Subgroup{models.NewSubgroup("g", 1.2)}, "subgroups[0].share"},
		{"negative factor", base, 0.5, []models.Subgroup{
			models.NewSubgroup("a", 0.25),
			{Share: 0.25, InfectionFactor: 1, RecoveryFactor: -2, DeathFactor: 1, RelapseFactor: 1},
		}, "subgroups[1].recovery_factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.base, tt.reference, tt.groups)
			require.Error(t, err)

			var cfgErr *models.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestCompute_ZeroRatesAreValid(t *testing.T) {
	eff, err := ComputeForSubgroups(models.RateSet{}, []models.Subgroup{models.NewSubgroup("g", 0.5)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, eff.Beta)
	assert.Equal(t, 1.0, eff.Phi.Beta)
}

func TestReferenceShare(t *testing.T) {
	assert.Equal(t, 1.0, ReferenceShare(nil))
	assert.InDelta(t, 0.5, ReferenceShare([]models.Subgroup{{Share: 0.2}, {Share: 0.3}}), 1e-15)
	assert.Less(t, ReferenceShare([]models.Subgroup{{Share: 0.7}, {Share: 0.7}}), 0.0)
}
