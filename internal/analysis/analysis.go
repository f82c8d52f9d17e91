// Package analysis derives epidemiological indicators from trajectories:
// peak infection, final size, the effective reproduction number over time,
// phase-plane points and interpolated states.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/spboyer/hetsird/internal/models"
	"gonum.org/v1/gonum/floats"
)

// ErrNoRemoval is returned when the reproduction number is undefined
// because nobody ever leaves the infectious compartment.
var ErrNoRemoval = errors.New("reproduction number undefined: recovery and death rates are both zero")

// ErrEmptyTrajectory is returned by operations that need at least one sample.
var ErrEmptyTrajectory = errors.New("trajectory has no samples")

// Summary condenses a trajectory into the numbers a report needs.
type Summary struct {
	Samples        int                     `json:"samples"`
	Population     float64                 `json:"population"`
	PeakTime       float64                 `json:"peak_time"`
	PeakInfectious float64                 `json:"peak_infectious"`
	Final          models.CompartmentState `json:"final"`
	TotalDeaths    float64                 `json:"total_deaths"`
	// AttackRate is the share of the population that left S: (N - S_final)/N.
	AttackRate float64 `json:"attack_rate"`
	// MaxConservationError is max |S+I+R+D - N| over all samples.
	MaxConservationError float64 `json:"max_conservation_error"`
	Warnings             int     `json:"warnings"`
}

// Summarize computes the Summary of tr. An empty trajectory yields a zero
// Summary.
func Summarize(tr *models.Trajectory) Summary {
	if tr == nil || tr.Len() == 0 {
		return Summary{}
	}

	population := tr.Info().Population
	if population == 0 {
		population = tr.Initial().State.Total()
	}

	infectious := tr.Series(models.Infectious)
	peak := floats.MaxIdx(infectious)

	totals := make([]float64, tr.Len())
	for i, s := range tr.Samples() {
		totals[i] = math.Abs(s.State.Total() - population)
	}

	final := tr.Final().State
	s := Summary{
		Samples:              tr.Len(),
		Population:           population,
		PeakTime:             tr.At(peak).Time,
		PeakInfectious:       infectious[peak],
		Final:                final,
		TotalDeaths:          final.D,
		MaxConservationError: floats.Max(totals),
		Warnings:             len(tr.Warnings()),
	}
	if population > 0 {
		s.AttackRate = (population - final.S) / population
	}
	return s
}

// BasicReproductionNumber returns λβ·S0 / (λγ + λθ), the expected number of
// secondary infections caused by one infectious individual while s0 people
// are susceptible.
func BasicReproductionNumber(r models.EffectiveRates, s0 float64) (float64, error) {
	removal := r.RemovalRate()
	if removal == 0 {
		return 0, ErrNoRemoval
	}
	return r.Beta * s0 / removal, nil
}

// ReproductionSeries returns the effective reproduction number at every
// sample of tr. The trajectory must carry the effective rates it was
// produced with.
func ReproductionSeries(tr *models.Trajectory) ([]float64, error) {
	rates := tr.Info().Rates
	if rates == nil {
		return nil, fmt.Errorf("trajectory does not carry its effective rates")
	}
	removal := rates.RemovalRate()
	if removal == 0 {
		return nil, ErrNoRemoval
	}
	out := tr.Series(models.Susceptible)
	floats.Scale(rates.Beta/removal, out)
	return out, nil
}

// PhasePoint is one point of the susceptible/infectious phase plane.
type PhasePoint struct {
	Time        float64 `json:"t"`
	Susceptible float64 `json:"susceptible"`
	Infectious  float64 `json:"infectious"`
}

// Phase returns the trajectory projected onto the (S, I) plane.
func Phase(tr *models.Trajectory) []PhasePoint {
	out := make([]PhasePoint, tr.Len())
	for i, s := range tr.Samples() {
		out[i] = PhasePoint{Time: s.Time, Susceptible: s.State.S, Infectious: s.State.I}
	}
	return out
}

// StateAt returns the state at time t, interpolating linearly between the
// two surrounding samples.
func StateAt(tr *models.Trajectory, t float64) (models.CompartmentState, error) {
	if tr.Len() == 0 {
		return models.CompartmentState{}, ErrEmptyTrajectory
	}
	times := tr.Times()
	first, last := times[0], times[len(times)-1]
	if math.IsNaN(t) || t < first || t > last {
		return models.CompartmentState{}, fmt.Errorf("time %g outside trajectory range [%g, %g]", t, first, last)
	}

	i := sort.SearchFloat64s(times, t)
	if times[i] == t {
		return tr.At(i).State, nil
	}
	lo, hi := tr.At(i-1), tr.At(i)
	w := (t - lo.Time) / (hi.Time - lo.Time)

	a, b := lo.State.Vector(), hi.State.Vector()
	var out [4]float64
	for k := range out {
		out[k] = a[k] + w*(b[k]-a[k])
	}
	return models.StateFromVector(out), nil
}

// Comparison holds the differences candidate minus baseline.
type Comparison struct {
	Baseline        Summary `json:"baseline"`
	Candidate       Summary `json:"candidate"`
	PeakTimeDelta   float64 `json:"peak_time_delta"`
	PeakDelta       float64 `json:"peak_delta"`
	FinalSDelta     float64 `json:"final_susceptible_delta"`
	FinalRDelta     float64 `json:"final_recovered_delta"`
	FinalDDelta     float64 `json:"final_deceased_delta"`
	AttackRateDelta float64 `json:"attack_rate_delta"`
}

// Compare reports how candidate differs from baseline.
func Compare(baseline, candidate Summary) Comparison {
	return Comparison{
		Baseline:        baseline,
		Candidate:       candidate,
		PeakTimeDelta:   candidate.PeakTime - baseline.PeakTime,
		PeakDelta:       candidate.PeakInfectious - baseline.PeakInfectious,
		FinalSDelta:     candidate.Final.S - baseline.Final.S,
		FinalRDelta:     candidate.Final.R - baseline.Final.R,
		FinalDDelta:     candidate.Final.D - baseline.Final.D,
		AttackRateDelta: candidate.AttackRate - baseline.AttackRate,
	}
}
