package integrator

import "github.com/spboyer/hetsird/internal/models"

type vec [4]float64

// system is the right-hand side of the SIRD equations for fixed effective
// rates. It is autonomous, so time never enters the derivative.
type system struct {
	beta, gamma, theta, delta float64
}

func newSystem(r models.EffectiveRates) system {
	return system{beta: r.Beta, gamma: r.Gamma, theta: r.Theta, delta: r.Delta}
}

func (s system) derivative(y vec) vec {
	infection := s.beta * y[0] * y[1]
	recovery := s.gamma * y[1]
	death := s.theta * y[1]
	relapse := s.delta * y[2]

	return vec{
		-infection + relapse,
		infection - recovery - death,
		recovery - relapse,
		death,
	}
}

// Derivative evaluates dS/dt, dI/dt, dR/dt and dD/dt at the given state.
func Derivative(r models.EffectiveRates, state models.CompartmentState) models.CompartmentState {
	return models.StateFromVector(newSystem(r).derivative(state.Vector()))
}

// axpy returns y + a·x.
func axpy(y vec, a float64, x vec) vec {
	return vec{y[0] + a*x[0], y[1] + a*x[1], y[2] + a*x[2], y[3] + a*x[3]}
}

func sum(y vec) float64 {
	return y[0] + y[1] + y[2] + y[3]
}
