// Package rates turns base transition rates and a population split into
// subgroups into the effective, population-wide rates of the SIRD model.
//
// For each transition t the weighting factor is
//
//	Φ_t = reference_share + Σ_i share_i · factor_{i,t}
//
// and the effective rate is λ_t = Φ_t · base_t. The sum always runs over the
// reference subgroup first and then over the subgroups in input order, so
// identical inputs give bit-identical outputs.
package rates

import (
	"fmt"
	"math"

	"github.com/spboyer/hetsird/internal/models"
)

// ReferenceShare returns 1 - Σ share, the share of the implicit reference
// subgroup. The result is negative when the subgroups claim more than the
// whole population.
func ReferenceShare(subgroups []models.Subgroup) float64 {
	sum := 0.0
	for _, g := range subgroups {
		sum += g.Share
	}
	return 1 - sum
}

// ComputeForSubgroups is [Compute] with the reference share derived from the
// subgroups.
func ComputeForSubgroups(base models.RateSet, subgroups []models.Subgroup) (models.EffectiveRates, error) {
	return Compute(base, ReferenceShare(subgroups), subgroups)
}

// Compute validates its inputs and returns the effective rates. Every
// failure is a *models.ConfigurationError.
func Compute(base models.RateSet, referenceShare float64, subgroups []models.Subgroup) (models.EffectiveRates, error) {
	if err := Validate(base, referenceShare, subgroups); err != nil {
		return models.EffectiveRates{}, err
	}

	phi := models.WeightingFactors{
		Beta:  Phi(referenceShare, subgroups, models.TransitionInfection),
		Gamma: Phi(referenceShare, subgroups, models.TransitionRecovery),
		Theta: Phi(referenceShare, subgroups, models.TransitionDeath),
		Delta: Phi(referenceShare, subgroups, models.TransitionRelapse),
	}

	return models.EffectiveRates{
		Beta:  phi.Beta * base.Beta,
		Gamma: phi.Gamma * base.Gamma,
		Theta: phi.Theta * base.Theta,
		Delta: phi.Delta * base.Delta,
		Phi:   phi,
	}, nil
}

// Phi returns the weighting factor for one transition. It does not validate
// its inputs.
func Phi(referenceShare float64, subgroups []models.Subgroup, t models.Transition) float64 {
	phi := referenceShare
	for _, g := range subgroups {
		phi += g.Share * g.Factor(t)
	}
	return phi
}

// Validate checks rates, shares and factors.
func Validate(base models.RateSet, referenceShare float64, subgroups []models.Subgroup) error {
	for _, t := range models.Transitions {
		if err := checkNonNegative("rates."+string(t), base.Get(t)); err != nil {
			return err
		}
	}

	if math.IsNaN(referenceShare) || math.IsInf(referenceShare, 0) {
		return models.Configf("reference_share", "must be finite, got %g", referenceShare)
	}
	if referenceShare < -models.ShareTolerance {
		return models.Configf("reference_share", "subgroup shares exceed 1 (reference share %g)", referenceShare)
	}
	if referenceShare > 1+models.ShareTolerance {
		return models.Configf("reference_share", "must be <= 1, got %g", referenceShare)
	}

	total := referenceShare
	for i, g := range subgroups {
		field := fmt.Sprintf("subgroups[%d]", i)
		if math.IsNaN(g.Share) || g.Share < 0 || g.Share > 1 {
			return models.Configf(field+".share", "must be in [0, 1], got %g", g.Share)
		}
		for _, t := range models.Transitions {
			if err := checkNonNegative(field+"."+factorName(t), g.Factor(t)); err != nil {
				return err
			}
		}
		total += g.Share
	}

	if math.Abs(total-1) > models.ShareTolerance {
		return models.Configf("subgroups", "shares including the reference subgroup sum to %g, want 1", total)
	}
	return nil
}

func checkNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Configf(field, "must be finite, got %g", v)
	}
	if v < 0 {
		return models.Configf(field, "must be >= 0, got %g", v)
	}
	return nil
}

func factorName(t models.Transition) string {
	switch t {
	case models.TransitionInfection:
		return "infection_factor"
	case models.TransitionRecovery:
		return "recovery_factor"
	case models.TransitionDeath:
		return "death_factor"
	default:
		return "relapse_factor"
	}
}
