package trait

import "math/rand/v2"

// Rates holds the per-class mutation probabilities applied during
// reproduction. Each class fires independently on one child.
type Rates struct {
	Add     float64 // chance to acquire one new trait
	Drop    float64 // chance to lose one existing trait
	Perturb float64 // chance to shift one trait's intensity

	// Sigma is the standard deviation of an intensity perturbation.
	Sigma float64

	// InitIntensity is the starting intensity of a newly acquired trait.
	InitIntensity float64
}

// DefaultRates returns the standard mutation tuning.
func DefaultRates() Rates {
	return Rates{
		Add:           0.04,
		Drop:          0.02,
		Perturb:       0.12,
		Sigma:         0.08,
		InitIntensity: 0.15,
	}
}

// Mutate returns a child trait set derived from parent. It is a pure
// function of the parent set and draws taken from rng, so identical seed
// sequences reproduce identical children. The draw order is fixed:
// add, drop, perturb.
func Mutate(parent Set, rates Rates, rng *rand.Rand) Set {
	child := parent

	if rng.Float64() < rates.Add {
		if id, ok := pickAbsent(&child, rng); ok {
			child.Add(id, rates.InitIntensity+rng.Float64()*rates.Sigma)
		}
	}

	if rng.Float64() < rates.Drop {
		if id, ok := pickPresent(&child, rng); ok {
			child.Remove(id)
		}
	}

	if rng.Float64() < rates.Perturb {
		if id, ok := pickPresent(&child, rng); ok {
			child.Add(id, child.Intensity(id)+rng.NormFloat64()*rates.Sigma)
		}
	}

	return child
}

// pickAbsent selects a uniformly random absent trait whose prerequisites
// are satisfied. Candidates are gathered in catalog order so the draw is
// reproducible.
func pickAbsent(s *Set, rng *rand.Rand) (ID, bool) {
	if s.Count() >= MaxPerCell {
		return 0, false
	}
	var candidates [NumTraits]ID
	n := 0
	for id := 0; id < NumTraits; id++ {
		if !s.Has(ID(id)) && s.PrereqsMet(ID(id)) {
			candidates[n] = ID(id)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return candidates[rng.IntN(n)], true
}

// pickPresent selects a uniformly random present trait.
func pickPresent(s *Set, rng *rand.Rand) (ID, bool) {
	var candidates [NumTraits]ID
	n := 0
	for id := 0; id < NumTraits; id++ {
		if s.Has(ID(id)) {
			candidates[n] = ID(id)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return candidates[rng.IntN(n)], true
}
