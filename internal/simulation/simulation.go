// Package simulation runs a scenario end to end: effective rates, then the
// integrator, then the summary. The CLI, the sweep runner and the HTTP API
// all go through Run.
package simulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/integrator"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/rates"
)

// Defaults holds project-level solver settings used where a scenario leaves
// its solver section empty.
type Defaults struct {
	Method string
	RelTol float64
	AbsTol float64
}

// Result is the outcome of one scenario run.
type Result struct {
	Scenario   *models.Scenario      `json:"scenario"`
	Rates      models.EffectiveRates `json:"rates"`
	R0         *float64              `json:"r0,omitempty"`
	Trajectory *models.Trajectory    `json:"trajectory"`
	Summary    analysis.Summary      `json:"summary"`
	Duration   time.Duration         `json:"duration_ns"`
}

// Rates computes the effective rates of a scenario.
func Rates(sc *models.Scenario) (models.EffectiveRates, error) {
	return rates.ComputeForSubgroups(sc.Rates, sc.SubgroupList())
}

// Config builds the integrator configuration of a scenario, filling gaps
// from d.
func Config(sc *models.Scenario, d Defaults) integrator.Config {
	cfg := integrator.Config{
		Horizon:               sc.Time.Horizon,
		StepSize:              sc.Time.Step,
		Population:            sc.Population,
		Method:                integrator.Method(sc.Solver.Method),
		RelTol:                sc.Solver.RelTol,
		AbsTol:                sc.Solver.AbsTol,
		NonNegativeTolerance:  sc.Solver.NonNegativeTolerance,
		ConservationTolerance: sc.Solver.ConservationTolerance,
		MaxSteps:              sc.Solver.MaxSteps,
	}
	if cfg.Method == "" {
		cfg.Method = integrator.Method(d.Method)
	}
	if cfg.RelTol == 0 {
		cfg.RelTol = d.RelTol
	}
	if cfg.AbsTol == 0 {
		cfg.AbsTol = d.AbsTol
	}
	return cfg
}

// Run simulates sc. Runs are bounded CPU work, so ctx is only checked
// before starting.
func Run(ctx context.Context, sc *models.Scenario, d Defaults) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	eff, err := Rates(sc)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tr, err := integrator.Simulate(sc.Initial, eff, Config(sc, d))
	if err != nil {
		slog.Debug("simulation failed", "scenario", sc.Name, "error", err)
		return nil, err
	}

	res := &Result{
		Scenario:   sc,
		Rates:      eff,
		Trajectory: tr,
		Summary:    analysis.Summarize(tr),
		Duration:   time.Since(start),
	}
	if r0, err := analysis.BasicReproductionNumber(eff, sc.Initial.S); err == nil {
		res.R0 = &r0
	}
	slog.Debug("simulation finished", "scenario", sc.Name, "samples", tr.Len(), "duration", res.Duration)
	return res, nil
}
