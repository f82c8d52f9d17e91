package integrator

import (
	"fmt"
	"strings"
)

// Method selects the numerical scheme.
type Method string

const (
	// MethodEuler is explicit first-order Euler. It is the cheapest scheme and
	// the least accurate; prefer it only for comparison runs.
	MethodEuler Method = "euler"
	// MethodHeun is the explicit trapezoidal (second-order Runge-Kutta) rule.
	MethodHeun Method = "heun"
	// MethodRK4 is the classic fixed-step fourth-order Runge-Kutta scheme.
	MethodRK4 Method = "rk4"
	// MethodRK45 is the adaptive Dormand-Prince 5(4) pair. Output is still
	// reported on the fixed grid k·StepSize.
	MethodRK45 Method = "rk45"
)

// Defaults applied by [Simulate] for zero-valued Config fields.
const (
	DefaultMethod               = MethodRK45
	DefaultRelTol               = 1e-6
	DefaultAbsTol               = 1e-8
	DefaultNonNegativeTolerance = 1e-6
	DefaultMaxSteps             = 1_000_000

	// DefaultConservationFactor scales the population to obtain the default
	// conservation tolerance.
	DefaultConservationFactor = 1e-6

	// PopulationTolerance is the relative slack allowed between the stated
	// population and the sum of the initial compartments.
	PopulationTolerance = 1e-9
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{MethodEuler, MethodHeun, MethodRK4, MethodRK45}
}

// ParseMethod parses a method name; the empty string selects the default.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return DefaultMethod, nil
	}
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q (want one of %v)", s, Methods())
}

// Adaptive reports whether the method controls its own internal step size.
func (m Method) Adaptive() bool {
	return m == MethodRK45
}

// Config holds the time grid, the method and the numerical tolerances of a
// run. Zero values select the defaults above.
type Config struct {
	// Horizon is the end time T of the simulation.
	Horizon float64
	// StepSize is the output spacing Δt. Fixed-step methods also integrate
	// with this step.
	StepSize float64

	// Population is the stated total N. When zero, N is taken from the sum
	// of the initial compartments.
	Population float64

	Method Method

	// RelTol and AbsTol drive the error control of adaptive methods.
	RelTol float64
	AbsTol float64

	// NonNegativeTolerance is ε: values below -ε are clamped (fixed-step
	// methods) or trigger a smaller retry (adaptive methods).
	NonNegativeTolerance float64

	// ConservationTolerance bounds |S+I+R+D - N| after every step. Zero
	// selects DefaultConservationFactor·max(N, 1).
	ConservationTolerance float64

	// MinStep is the smallest internal step an adaptive method may take.
	// Zero selects StepSize·1e-10.
	MinStep float64

	// MaxSteps bounds the number of internal steps.
	MaxSteps int
}

func (c Config) withDefaults(population float64) Config {
	if c.Method == "" {
		c.Method = DefaultMethod
	}
	if c.RelTol == 0 {
		c.RelTol = DefaultRelTol
	}
	if c.AbsTol == 0 {
		c.AbsTol = DefaultAbsTol
	}
	if c.NonNegativeTolerance == 0 {
		c.NonNegativeTolerance = DefaultNonNegativeTolerance
	}
	if c.ConservationTolerance == 0 {
		c.ConservationTolerance = DefaultConservationFactor * max(population, 1)
	}
	if c.MinStep == 0 {
		c.MinStep = c.StepSize * 1e-10
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	return c
}
