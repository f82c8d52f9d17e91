package integrator

import (
	"math"

	"github.com/spboyer/hetsird/internal/models"
)

// Dormand-Prince 5(4) coefficients.
var (
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// dpE is the difference between the fifth- and fourth-order weights.
	dpE = [7]float64{
		71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40,
	}
)

const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 5.0
)

// dpStep takes one Dormand-Prince step from y with derivative k1 = f(y). It
// returns the fifth-order solution, its derivative (first-same-as-last), and
// the scaled max-norm of the local error estimate.
func (r *run) dpStep(y, k1 vec, h float64) (next, kNext vec, errNorm float64) {
	var k [7]vec
	k[0] = k1
	for stage := 1; stage < 7; stage++ {
		yi := y
		for j := 0; j < stage; j++ {
			if a := dpA[stage][j]; a != 0 {
				yi = axpy(yi, h*a, k[j])
			}
		}
		if stage == 6 {
			next = yi
		}
		k[stage] = r.sys.derivative(yi)
	}
	r.stats.Evaluations += 6

	for i := range y {
		var e float64
		for j := 0; j < 7; j++ {
			e += dpE[j] * k[j][i]
		}
		e *= h
		scale := r.cfg.AbsTol + r.cfg.RelTol*math.Max(math.Abs(y[i]), math.Abs(next[i]))
		errNorm = math.Max(errNorm, math.Abs(e)/scale)
	}
	return next, k[6], errNorm
}

func stepFactor(errNorm float64) float64 {
	if errNorm == 0 {
		return maxFactor
	}
	return math.Min(maxFactor, math.Max(minFactor, safety*math.Pow(errNorm, -0.2)))
}

func (r *run) integrateAdaptive() error {
	y := r.y
	k1 := r.sys.derivative(y)
	r.stats.Evaluations++

	h := r.cfg.StepSize
	for k := 1; k <= r.n; k++ {
		t := r.timeAt(k - 1)
		tEnd := r.timeAt(k)
		var warnings []models.NumericalWarning

		for t < tEnd {
			if r.stats.Steps+r.stats.Rejected >= r.cfg.MaxSteps {
				return r.instability(r.stats.Steps, t, "step budget of %d exhausted", r.cfg.MaxSteps)
			}

			hTry := h
			landing := false
			if t+hTry >= tEnd {
				hTry = tEnd - t
				landing = true
			}

			next, kNext, errNorm := r.dpStep(y, k1, hTry)

			if errNorm > 1 {
				r.stats.Rejected++
				if hTry <= r.cfg.MinStep {
					return r.instability(r.stats.Steps, t, "step size fell below %g", r.cfg.MinStep)
				}
				h = math.Max(hTry*stepFactor(errNorm), r.cfg.MinStep)
				continue
			}

			if r.hasNegative(next) && hTry > r.cfg.MinStep {
				r.stats.Rejected++
				h = math.Max(hTry/2, r.cfg.MinStep)
				continue
			}

			r.stats.Steps++
			if landing {
				t = tEnd
			} else {
				t += hTry
			}

			clamped := r.clamp(&next, r.stats.Steps, t)
			warnings = append(warnings, clamped...)
			if err := r.checkConservation(next, r.stats.Steps, t); err != nil {
				return err
			}

			y = next
			if len(clamped) > 0 {
				k1 = r.sys.derivative(y)
				r.stats.Evaluations++
			} else {
				k1 = kNext
			}

			grown := hTry * stepFactor(errNorm)
			if landing {
				h = math.Max(h, grown)
			} else {
				h = grown
			}
		}
		r.emit(tEnd, y, warnings)
	}
	return nil
}

func (r *run) hasNegative(y vec) bool {
	for _, v := range y {
		if v < -r.cfg.NonNegativeTolerance {
			return true
		}
	}
	return false
}
