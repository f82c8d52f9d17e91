package webapi

import (
	"time"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/models"
)

// RunSummary is the API response for a single run in the list.
type RunSummary struct {
	ID             string    `json:"id"`
	Scenario       string    `json:"scenario"`
	Method         string    `json:"method"`
	PeakInfectious float64   `json:"peakInfectious"`
	PeakTime       float64   `json:"peakTime"`
	AttackRate     float64   `json:"attackRate"`
	TotalDeaths    float64   `json:"totalDeaths"`
	Duration       float64   `json:"duration"`
	Timestamp      time.Time `json:"timestamp"`
}

// RunDetail is the API response for a single run including its trajectory.
type RunDetail struct {
	RunSummary
	Rates      models.EffectiveRates `json:"rates"`
	R0         *float64              `json:"r0,omitempty"`
	Summary    analysis.Summary      `json:"summary"`
	Trajectory *models.Trajectory    `json:"trajectory,omitempty"`
}

// RatesRequest is the body of POST /api/rates.
type RatesRequest struct {
	Rates     models.RateSet        `json:"rates"`
	Subgroups []models.SubgroupSpec `json:"subgroups,omitempty"`
}

// RatesResponse reports the effective rates of a population split.
type RatesResponse struct {
	ReferenceShare float64               `json:"referenceShare"`
	Rates          models.EffectiveRates `json:"rates"`
}

// MethodsResponse lists the available integration methods.
type MethodsResponse struct {
	Methods []string `json:"methods"`
	Default string   `json:"default"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Field string `json:"field,omitempty"`
}
