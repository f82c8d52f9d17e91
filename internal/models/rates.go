package models

// ShareTolerance is the slack allowed when checking that the reference share
// and all subgroup shares add up to one.
const ShareTolerance = 1e-9

// Transition identifies one of the four rate-driven transitions.
type Transition string

const (
	TransitionInfection Transition = "beta"
	TransitionRecovery  Transition = "gamma"
	TransitionDeath     Transition = "theta"
	TransitionRelapse   Transition = "delta"
)

// Transitions lists the transitions in a fixed order.
var Transitions = []Transition{TransitionInfection, TransitionRecovery, TransitionDeath, TransitionRelapse}

// RateSet holds the base transition rates of the reference subgroup.
type RateSet struct {
	Beta  float64 `json:"beta" yaml:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Theta float64 `json:"theta" yaml:"theta"`
	Delta float64 `json:"delta" yaml:"delta"`
}

// Get returns the rate for a transition.
func (r RateSet) Get(t Transition) float64 {
	switch t {
	case TransitionInfection:
		return r.Beta
	case TransitionRecovery:
		return r.Gamma
	case TransitionDeath:
		return r.Theta
	case TransitionRelapse:
		return r.Delta
	}
	return 0
}

// Subgroup is a segment of the susceptible population whose transition
// rates diverge from the reference subgroup by the given factors.
type Subgroup struct {
	Name            string  `json:"name,omitempty"`
	Share           float64 `json:"share"`
	InfectionFactor float64 `json:"infection_factor"`
	RecoveryFactor  float64 `json:"recovery_factor"`
	DeathFactor     float64 `json:"death_factor"`
	RelapseFactor   float64 `json:"relapse_factor"`
}

// NewSubgroup returns a subgroup with every factor set to 1, i.e. a subgroup
// that behaves exactly like the reference subgroup.
func NewSubgroup(name string, share float64) Subgroup {
	return Subgroup{
		Name:            name,
		Share:           share,
		InfectionFactor: 1,
		RecoveryFactor:  1,
		DeathFactor:     1,
		RelapseFactor:   1,
	}
}

// Factor returns the multiplier this subgroup applies to a transition.
func (s Subgroup) Factor(t Transition) float64 {
	switch t {
	case TransitionInfection:
		return s.InfectionFactor
	case TransitionRecovery:
		return s.RecoveryFactor
	case TransitionDeath:
		return s.DeathFactor
	case TransitionRelapse:
		return s.RelapseFactor
	}
	return 0
}

// WeightingFactors holds Φ for each transition.
type WeightingFactors struct {
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Delta float64 `json:"delta"`
}

// EffectiveRates are the population-wide rates λ = Φ·base used by the
// integrator.
type EffectiveRates struct {
	Beta  float64          `json:"beta"`
	Gamma float64          `json:"gamma"`
	Theta float64          `json:"theta"`
	Delta float64          `json:"delta"`
	Phi   WeightingFactors `json:"phi"`
}

// RemovalRate is the total outflow rate from the infectious compartment.
func (e EffectiveRates) RemovalRate() float64 {
	return e.Gamma + e.Theta
}
