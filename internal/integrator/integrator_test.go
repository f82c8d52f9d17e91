package integrator

import (
	"errors"
	"math"
	"testing"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epidemicStart = models.CompartmentState{S: 999, I: 1}

func homogeneous(beta, gamma, theta, delta float64) models.EffectiveRates {
	return models.EffectiveRates{
		Beta: beta, Gamma: gamma, Theta: theta, Delta: delta,
		Phi: models.WeightingFactors{Beta: 1, Gamma: 1, Theta: 1, Delta: 1},
	}
}

func peak(tr *models.Trajectory) (float64, float64) {
	var at, best float64
	for _, s := range tr.Samples() {
		if s.State.I > best {
			at, best = s.Time, s.State.I
		}
	}
	return at, best
}

func TestSimulate_ClassicEpidemic(t *testing.T) {
	tr, err := Simulate(epidemicStart, homogeneous(0.3, 0.1, 0, 0), Config{Horizon: 100, StepSize: 0.1, Population: 1000})
	require.NoError(t, err)

	require.Equal(t, 1001, tr.Len())
	assert.Equal(t, 0.0, tr.Initial().Time)
	assert.Equal(t, epidemicStart, tr.Initial().State)
	assert.Equal(t, 100.0, tr.Final().Time)

	final := tr.Final().State
	assert.InDelta(t, 0.0455, final.I, 1e-3)
	assert.InDelta(t, 999.954, final.R, 1e-2)
	assert.Less(t, final.S, 1e-6)
	assert.Equal(t, 0.0, final.D)

	_, top := peak(tr)
	assert.Greater(t, top, 990.0)
	assert.Empty(t, tr.Warnings())

	info := tr.Info()
	assert.Equal(t, "rk45", info.Method)
	assert.Equal(t, 1000.0, info.Population)
	assert.Greater(t, info.Stats.Steps, 1000)
}

func TestSimulate_FasterInfectionPeaksEarlierAndHigher(t *testing.T) {
	cfg := Config{Horizon: 2, StepSize: 0.001}

	base, err := Simulate(epidemicStart, homogeneous(0.3, 0.1, 0, 0), cfg)
	require.NoError(t, err)
	faster, err := Simulate(epidemicStart, homogeneous(0.36, 0.1, 0, 0), cfg)
	require.NoError(t, err)

	baseAt, baseTop := peak(base)
	fastAt, fastTop := peak(faster)
	assert.Less(t, fastAt, baseAt)
	assert.Greater(t, fastTop, baseTop)
}

func TestSimulate_LethalitySplitsRemoved(t *testing.T) {
	// θ = 0.05 scaled by Φ = 0.7 + 0.3·2.
	tr, err := Simulate(epidemicStart, homogeneous(0.3, 0.1, 0.065, 0), Config{Horizon: 100, StepSize: 0.1})
	require.NoError(t, err)

	final := tr.Final().State
	assert.Greater(t, final.D, 0.0)
	assert.InDelta(t, 1000-final.S, final.R+final.D, 1e-3)
	assert.InDelta(t, 0.1/0.065, final.R/final.D, 1e-6)
}

func TestSimulate_ConservesPopulationAndStaysNonNegative(t *testing.T) {
	for _, m := range Methods() {
		t.Run(string(m), func(t *testing.T) {
			tr, err := Simulate(epidemicStart, homogeneous(0.0003, 0.1, 0.01, 0.05), Config{
				Horizon: 100, StepSize: 0.1, Method: m,
			})
			require.NoError(t, err)
			for _, s := range tr.Samples() {
				assert.InDelta(t, 1000, s.State.Total(), 1e-3, "t=%g", s.Time)
				for _, c := range models.Compartments {
					assert.GreaterOrEqual(t, s.State.Get(c), 0.0, "%s at t=%g", c, s.Time)
				}
			}
		})
	}
}

func TestSimulate_Monotonicity(t *testing.T) {
	t.Run("no infection means infectious never grows", func(t *testing.T) {
		tr, err := Simulate(models.CompartmentState{S: 900, I: 100}, homogeneous(0, 0.1, 0.02, 0.05), Config{Horizon: 50, StepSize: 0.5})
		require.NoError(t, err)
		series := tr.Series(models.Infectious)
		for i := 1; i < len(series); i++ {
			assert.LessOrEqual(t, series[i], series[i-1])
		}
	})

	t.Run("no relapse means recovered never shrinks", func(t *testing.T) {
		tr, err := Simulate(epidemicStart, homogeneous(0.0003, 0.1, 0.01, 0), Config{Horizon: 100, StepSize: 0.1})
		require.NoError(t, err)
		series := tr.Series(models.Recovered)
		for i := 1; i < len(series); i++ {
			assert.GreaterOrEqual(t, series[i], series[i-1])
		}
	})
}

func TestSimulate_MethodsAgreeOnSmoothProblem(t *testing.T) {
	rates := homogeneous(0.0003, 0.1, 0, 0)
	cfg := Config{Horizon: 100, StepSize: 0.1}

	reference, err := Simulate(epidemicStart, rates, cfg)
	require.NoError(t, err)

	tests := []struct {
		method Method
		delta  float64
	}{
		{MethodRK4, 1e-5},
		{MethodHeun, 0.05},
		{MethodEuler, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			c := cfg
			c.Method = tt.method
			tr, err := Simulate(epidemicStart, rates, c)
			require.NoError(t, err)
			require.Equal(t, reference.Len(), tr.Len())
			for _, comp := range models.Compartments {
				assert.InDelta(t, reference.Final().State.Get(comp), tr.Final().State.Get(comp), tt.delta, string(comp))
			}
		})
	}
}

func TestSimulate_StiffFixedStepIsUnstable(t *testing.T) {
	tests := []struct {
		method Method
		step   int
	}{
		{MethodEuler, 3},
		{MethodHeun, 2},
		{MethodRK4, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			_, err := Simulate(epidemicStart, homogeneous(0.3, 0.1, 0, 0), Config{Horizon: 100, StepSize: 0.1, Method: tt.method})
			require.Error(t, err)
			require.ErrorIs(t, err, models.ErrNumericalInstability)

			var instability *models.NumericalInstabilityError
			require.True(t, errors.As(err, &instability))
			assert.Equal(t, tt.step, instability.Step)
			assert.InDelta(t, 0.1*float64(tt.step), instability.Time, 1e-12)
			assert.Equal(t, 1000.0, instability.Expected)
		})
	}
}

func TestSimulate_ClampsNegativeValues(t *testing.T) {
	start := models.CompartmentState{S: 999, I: 1}
	rates := homogeneous(0, 15, 0, 0)

	t.Run("clamp within conservation tolerance", func(t *testing.T) {
		tr, err := Simulate(start, rates, Config{
			Horizon: 0.2, StepSize: 0.1, Method: MethodEuler, ConservationTolerance: 1,
		})
		require.NoError(t, err)

		require.Len(t, tr.Warnings(), 1)
		w := tr.At(1).Warnings[0]
		assert.Equal(t, 1, w.Step)
		assert.Equal(t, models.Infectious, w.Compartment)
		assert.InDelta(t, -0.5, w.Value, 1e-12)
		assert.Equal(t, 0.0, tr.At(1).State.I)
		assert.Empty(t, tr.At(2).Warnings)
		assert.Equal(t, 1, tr.Info().Stats.Clamped)
	})

	t.Run("clamp breaking conservation", func(t *testing.T) {
		_, err := Simulate(start, rates, Config{Horizon: 0.2, StepSize: 0.1, Method: MethodEuler})
		require.ErrorIs(t, err, models.ErrNumericalInstability)
	})

	t.Run("adaptive retries instead of clamping", func(t *testing.T) {
		tr, err := Simulate(start, rates, Config{Horizon: 0.2, StepSize: 0.1})
		require.NoError(t, err)
		assert.Empty(t, tr.Warnings())
		assert.InDelta(t, math.Exp(-3), tr.Final().State.I, 1e-5)
	})
}

func TestSimulate_OutputGrid(t *testing.T) {
	tests := []struct {
		name    string
		horizon float64
		step    float64
		want    []float64
	}{
		{"exact multiple", 1, 0.25, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"non multiple", 1, 0.3, []float64{0, 0.3, 0.6, 0.9}},
		{"single step", 0.5, 0.5, []float64{0, 0.5}},
	}
	for _, tt := range tests {
		for _, m := range Methods() {
			t.Run(tt.name+"/"+string(m), func(t *testing.T) {
				tr, err := Simulate(epidemicStart, homogeneous(0.0003, 0.1, 0, 0), Config{Horizon: tt.horizon, StepSize: tt.step, Method: m})
				require.NoError(t, err)
				require.Len(t, tr.Times(), len(tt.want))
				for i, want := range tt.want {
					assert.InDelta(t, want, tr.Times()[i], 1e-12)
				}
			})
		}
	}
}

func TestSimulate_Degenerate(t *testing.T) {
	t.Run("no infectious", func(t *testing.T) {
		tr, err := Simulate(models.CompartmentState{S: 1000}, homogeneous(0.3, 0.1, 0.05, 0), Config{Horizon: 10, StepSize: 0.1})
		require.NoError(t, err)
		assert.Equal(t, models.CompartmentState{S: 1000}, tr.Final().State)
	})

	t.Run("empty population", func(t *testing.T) {
		tr, err := Simulate(models.CompartmentState{}, homogeneous(0.3, 0.1, 0, 0), Config{Horizon: 10, StepSize: 0.1})
		require.NoError(t, err)
		assert.Equal(t, models.CompartmentState{}, tr.Final().State)
	})

	t.Run("zero rates hold the state", func(t *testing.T) {
		start := models.CompartmentState{S: 500, I: 300, R: 150, D: 50}
		tr, err := Simulate(start, homogeneous(0, 0, 0, 0), Config{Horizon: 5, StepSize: 1, Method: MethodRK4})
		require.NoError(t, err)
		for _, s := range tr.Samples() {
			assert.Equal(t, start, s.State)
		}
	})
}

func TestSimulate_Deterministic(t *testing.T) {
	for _, m := range Methods() {
		t.Run(string(m), func(t *testing.T) {
			cfg := Config{Horizon: 20, StepSize: 0.1, Method: m}
			a, err := Simulate(epidemicStart, homogeneous(0.0003, 0.1, 0.01, 0.02), cfg)
			require.NoError(t, err)
			b, err := Simulate(epidemicStart, homogeneous(0.0003, 0.1, 0.01, 0.02), cfg)
			require.NoError(t, err)
			assert.Equal(t, a.Samples(), b.Samples())
		})
	}
}

func TestSimulate_ConfigurationErrors(t *testing.T) {
	good := Config{Horizon: 10, StepSize: 0.1}
	rates := homogeneous(0.3, 0.1, 0, 0)

	tests := []struct {
		name    string
		initial models.CompartmentState
		rates   models.EffectiveRates
		mutate  func(*Config)
		field   string
	}{
		{"zero horizon", epidemicStart, rates, func(c *Config) { c.Horizon = 0 }, "horizon"},
		{"infinite horizon", epidemicStart, rates, func(c *Config) { c.Horizon = math.Inf(1) }, "horizon"},
		{"negative step", epidemicStart, rates, func(c *Config) { c.StepSize = -1 }, "step"},
		{"NaN step", epidemicStart, rates, func(c *Config) { c.StepSize = math.NaN() }, "step"},
		{"step beyond horizon", epidemicStart, rates, func(c *Config) { c.StepSize = 11 }, "step"},
		{"negative beta", epidemicStart, homogeneous(-0.3, 0.1, 0, 0), func(*Config) {}, "rates.beta"},
		{"NaN delta", epidemicStart, homogeneous(0.3, 0.1, 0, math.NaN()), func(*Config) {}, "rates.delta"},
		{"negative susceptible", models.CompartmentState{S: -1, I: 2}, rates, func(*Config) {}, "initial.susceptible"},
		{"population mismatch", epidemicStart, rates, func(c *Config) { c.Population = 1200 }, "initial"},
		{"unknown method", epidemicStart, rates, func(c *Config) { c.Method = "leapfrog" }, "method"},
		{"too many steps", epidemicStart, rates, func(c *Config) { c.MaxSteps = 10 }, "step"},
		{"negative tolerance", epidemicStart, rates, func(c *Config) { c.RelTol = -1 }, "rtol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := good
			tt.mutate(&cfg)
			_, err := Simulate(tt.initial, tt.rates, cfg)
			require.ErrorIs(t, err, models.ErrConfiguration)

			var cfgErr *models.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestSimulate_MethodNameIsCaseInsensitive(t *testing.T) {
	tr, err := Simulate(epidemicStart, homogeneous(0.0003, 0.1, 0, 0), Config{Horizon: 1, StepSize: 0.1, Method: "RK4"})
	require.NoError(t, err)
	assert.Equal(t, "rk4", tr.Info().Method)
}

func TestDerivative(t *testing.T) {
	state := models.CompartmentState{S: 600, I: 300, R: 80, D: 20}
	d := Derivative(homogeneous(0.001, 0.1, 0.05, 0.2), state)

	assert.InDelta(t, -180+16, d.S, 1e-9)
	assert.InDelta(t, 180-30-15, d.I, 1e-9)
	assert.InDelta(t, 30-16, d.R, 1e-9)
	assert.InDelta(t, 15, d.D, 1e-9)
	assert.InDelta(t, 0, d.Total(), 1e-9)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodRK45, m)

	m, err = ParseMethod(" Heun ")
	require.NoError(t, err)
	assert.Equal(t, MethodHeun, m)

	_, err = ParseMethod("midpoint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "midpoint")

	assert.True(t, MethodRK45.Adaptive())
	assert.False(t, MethodRK4.Adaptive())
}
