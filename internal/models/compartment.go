package models

import "math"

// Compartment names one of the four SIRD population buckets.
type Compartment string

const (
	Susceptible Compartment = "susceptible"
	Infectious  Compartment = "infectious"
	Recovered   Compartment = "recovered"
	Deceased    Compartment = "deceased"
)

// Compartments lists the compartments in state-vector order.
var Compartments = []Compartment{Susceptible, Infectious, Recovered, Deceased}

// CompartmentState holds the population sizes of the four compartments at
// one instant.
type CompartmentState struct {
	S float64 `json:"susceptible" yaml:"susceptible"`
	I float64 `json:"infectious" yaml:"infectious"`
	R float64 `json:"recovered" yaml:"recovered"`
	D float64 `json:"deceased" yaml:"deceased"`
}

// Total returns S+I+R+D.
func (c CompartmentState) Total() float64 {
	return c.S + c.I + c.R + c.D
}

// Get returns the value of a single compartment.
func (c CompartmentState) Get(comp Compartment) float64 {
	switch comp {
	case Susceptible:
		return c.S
	case Infectious:
		return c.I
	case Recovered:
		return c.R
	case Deceased:
		return c.D
	default:
		return math.NaN()
	}
}

// Vector returns the state as [S, I, R, D].
func (c CompartmentState) Vector() [4]float64 {
	return [4]float64{c.S, c.I, c.R, c.D}
}

// StateFromVector is the inverse of [CompartmentState.Vector].
func StateFromVector(v [4]float64) CompartmentState {
	return CompartmentState{S: v[0], I: v[1], R: v[2], D: v[3]}
}
