// Package integrator solves the SIRD equations
//
//	dS/dt = -λβ·S·I + λδ·R
//	dI/dt =  λβ·S·I - λγ·I - λθ·I
//	dR/dt =  λγ·I   - λδ·R
//	dD/dt =  λθ·I
//
// over [0, T] for fixed effective rates and reports the state on the grid
// t = 0, Δt, 2Δt, ... ≤ T.
//
// Every call is a pure computation: identical inputs give identical
// trajectories, for adaptive methods as well since their tolerances are part
// of [Config].
package integrator

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spboyer/hetsird/internal/models"
)

// run holds the working state of a single Simulate call.
type run struct {
	cfg        Config
	sys        system
	population float64
	n          int
	y          vec

	samples []models.Sample
	stats   models.IntegrationStats
}

// Simulate integrates the SIRD system from initial with the given effective
// rates. Invalid input yields a *models.ConfigurationError before any
// numerical work; a broken conservation invariant yields a
// *models.NumericalInstabilityError.
func Simulate(initial models.CompartmentState, rates models.EffectiveRates, cfg Config) (*models.Trajectory, error) {
	population, err := validate(initial, rates, cfg)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults(population)

	method, err := ParseMethod(string(cfg.Method))
	if err != nil {
		return nil, models.Configf("method", "%v", err)
	}
	cfg.Method = method

	n := int(math.Floor(cfg.Horizon/cfg.StepSize + 1e-9))
	if n > cfg.MaxSteps {
		return nil, models.Configf("step", "%d steps needed for horizon %g at step %g, limit is %d",
			n, cfg.Horizon, cfg.StepSize, cfg.MaxSteps)
	}

	r := &run{
		cfg:        cfg,
		sys:        newSystem(rates),
		population: population,
		n:          n,
		y:          initial.Vector(),
		samples:    make([]models.Sample, 0, n+1),
	}
	r.emit(0, r.y, nil)

	if cfg.Method.Adaptive() {
		err = r.integrateAdaptive()
	} else {
		err = r.integrateFixed(stepperFor(cfg.Method))
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("integration finished",
		"method", cfg.Method,
		"samples", len(r.samples),
		"steps", r.stats.Steps,
		"rejected", r.stats.Rejected,
		"evaluations", r.stats.Evaluations,
		"clamped", r.stats.Clamped,
		"maxDrift", r.stats.MaxDrift)

	rc := rates
	return models.NewTrajectory(models.TrajectoryInfo{
		Population: population,
		Rates:      &rc,
		Method:     string(cfg.Method),
		StepSize:   cfg.StepSize,
		Horizon:    cfg.Horizon,
		Stats:      r.stats,
	}, r.samples), nil
}

// validate checks every input and returns the population N the run must
// conserve.
func validate(initial models.CompartmentState, rates models.EffectiveRates, cfg Config) (float64, error) {
	if !finite(cfg.Horizon) || cfg.Horizon <= 0 {
		return 0, models.Configf("horizon", "must be a finite value > 0, got %g", cfg.Horizon)
	}
	if !finite(cfg.StepSize) || cfg.StepSize <= 0 {
		return 0, models.Configf("step", "must be a finite value > 0, got %g", cfg.StepSize)
	}
	if cfg.StepSize > cfg.Horizon {
		return 0, models.Configf("step", "step %g exceeds horizon %g", cfg.StepSize, cfg.Horizon)
	}

	for _, p := range []struct {
		name  string
		value float64
	}{
		{"rates.beta", rates.Beta},
		{"rates.gamma", rates.Gamma},
		{"rates.theta", rates.Theta},
		{"rates.delta", rates.Delta},
	} {
		if !finite(p.value) || p.value < 0 {
			return 0, models.Configf(p.name, "effective rate must be finite and >= 0, got %g", p.value)
		}
	}

	for _, c := range models.Compartments {
		v := initial.Get(c)
		if !finite(v) || v < 0 {
			return 0, models.Configf("initial."+string(c), "must be finite and >= 0, got %g", v)
		}
	}

	for _, p := range []struct {
		name  string
		value float64
	}{
		{"population", cfg.Population},
		{"rtol", cfg.RelTol},
		{"atol", cfg.AbsTol},
		{"nonnegative_tolerance", cfg.NonNegativeTolerance},
		{"conservation_tolerance", cfg.ConservationTolerance},
		{"min_step", cfg.MinStep},
	} {
		if !finite(p.value) || p.value < 0 {
			return 0, models.Configf(p.name, "must be finite and >= 0, got %g", p.value)
		}
	}
	if cfg.MaxSteps < 0 {
		return 0, models.Configf("max_steps", "must be >= 0, got %d", cfg.MaxSteps)
	}

	total := initial.Total()
	if cfg.Population == 0 {
		return total, nil
	}
	if math.Abs(total-cfg.Population) > PopulationTolerance*math.Max(cfg.Population, 1) {
		return 0, models.Configf("initial", "compartments sum to %g, stated population is %g", total, cfg.Population)
	}
	return cfg.Population, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// timeAt returns the k-th output time. It multiplies rather than
// accumulates so the grid carries no rounding drift.
func (r *run) timeAt(k int) float64 {
	return math.Min(float64(k)*r.cfg.StepSize, r.cfg.Horizon)
}

func (r *run) emit(t float64, y vec, warnings []models.NumericalWarning) {
	r.samples = append(r.samples, models.Sample{
		Time:     t,
		State:    models.StateFromVector(y),
		Warnings: warnings,
	})
}

// clamp sets every compartment below -ε to zero and returns one warning per
// clamped value.
func (r *run) clamp(y *vec, step int, t float64) []models.NumericalWarning {
	var warnings []models.NumericalWarning
	for i, v := range y {
		if v >= -r.cfg.NonNegativeTolerance {
			continue
		}
		w := models.NumericalWarning{Step: step, Time: t, Compartment: models.Compartments[i], Value: v}
		slog.Warn("compartment clamped to zero",
			"step", step, "time", t, "compartment", w.Compartment, "value", v)
		warnings = append(warnings, w)
		y[i] = 0
		r.stats.Clamped++
	}
	return warnings
}

func (r *run) checkConservation(y vec, step int, t float64) error {
	total := sum(y)
	drift := math.Abs(total - r.population)
	if math.IsNaN(drift) || drift > r.cfg.ConservationTolerance {
		return &models.NumericalInstabilityError{
			Step:     step,
			Time:     t,
			Total:    total,
			Expected: r.population,
		}
	}
	r.stats.MaxDrift = math.Max(r.stats.MaxDrift, drift)
	return nil
}

func (r *run) instability(step int, t float64, format string, args ...any) error {
	return &models.NumericalInstabilityError{
		Step:     step,
		Time:     t,
		Total:    sum(r.y),
		Expected: r.population,
		Reason:   fmt.Sprintf(format, args...),
	}
}
