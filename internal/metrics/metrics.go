// Package metrics reduces committed grid and atmosphere state into the
// annual observables handed to the recorder.
package metrics

import (
	"math"

	"github.com/talgya/evopix/internal/trait"
	"github.com/talgya/evopix/internal/world"
)

// Metadata is run-level context supplied by the driver, never computed
// here. It is embedded verbatim into every Snapshot.
type Metadata struct {
	RunID     string
	Label     string
	WorldSeed int64
	BioSeed   int64
}

// Snapshot is the immutable aggregate of one sampled year. Field names
// are the compatibility contract with the recorder: one row per year.
type Snapshot struct {
	Tick uint64
	Year int

	Population       int
	AvgEnergy        float64
	VarEnergy        float64
	TraitDiversity   float64
	DistinctSets     int
	AvgTraitsPerCell float64
	MeanInfoOrder    float64
	GlobalO2         float64
	GlobalCO2        float64

	Meta Metadata
}

// Aggregator produces Snapshots. The info-order score is pluggable; the
// default measures how far a cell's trait configuration sits from maximal
// entropy.
type Aggregator struct {
	InfoOrder func(*trait.Set) float64
}

// NewAggregator returns an aggregator with the default info-order score.
func NewAggregator() *Aggregator {
	return &Aggregator{InfoOrder: DefaultInfoOrder}
}

// Summarize reads committed post-tick state and reduces it to one
// Snapshot. It never mutates the grid or atmosphere and must not run
// concurrently with an in-progress tick.
func (a *Aggregator) Summarize(g *world.Grid, atm *world.Atmosphere, tick uint64, year int, md Metadata) Snapshot {
	s := Snapshot{
		Tick:      tick,
		Year:      year,
		GlobalO2:  atm.O2,
		GlobalCO2: atm.CO2,
		Meta:      md,
	}

	cells := g.Cells()

	// Single pass: population, energy moments, trait tallies.
	var sumE, sumSqE float64
	totalTraits := 0
	var sumInfo float64
	sigCounts := make(map[trait.Signature]int)

	for i := range cells {
		c := &cells[i]
		if !c.Alive {
			continue
		}
		s.Population++
		sumE += c.Energy
		sumSqE += c.Energy * c.Energy
		totalTraits += c.Traits.Count()
		sumInfo += a.InfoOrder(&c.Traits)
		sigCounts[c.Traits.Signature()]++
	}

	if s.Population == 0 {
		return s
	}

	n := float64(s.Population)
	s.AvgEnergy = sumE / n
	s.VarEnergy = sumSqE/n - s.AvgEnergy*s.AvgEnergy
	if s.VarEnergy < 0 {
		s.VarEnergy = 0 // floating-point guard near zero variance
	}
	s.AvgTraitsPerCell = float64(totalTraits) / n
	s.MeanInfoOrder = sumInfo / n
	s.DistinctSets = len(sigCounts)
	s.TraitDiversity = setEntropy(sigCounts, s.Population)

	return s
}

// setEntropy is the Shannon entropy (nats) of the frequency distribution
// of distinct trait sets. Zero when every alive cell shares one set;
// bounded above by ln(distinct sets).
func setEntropy(counts map[trait.Signature]int, population int) float64 {
	if len(counts) <= 1 {
		return 0
	}
	h := 0.0
	n := float64(population)
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log(p)
	}
	return h
}

// DefaultInfoOrder scores a trait configuration by its departure from
// maximal entropy: 1 − H(w)/ln(catalog size), where w is the normalized
// intensity distribution. A cell concentrating intensity in one trait
// scores 1; spreading evenly over the whole catalog scores 0; an empty
// set carries no organization and scores 0.
func DefaultInfoOrder(s *trait.Set) float64 {
	var total float64
	for id := 0; id < trait.NumTraits; id++ {
		total += s.Intensity(trait.ID(id))
	}
	if total == 0 {
		return 0
	}

	h := 0.0
	for id := 0; id < trait.NumTraits; id++ {
		if v := s.Intensity(trait.ID(id)); v > 0 {
			p := v / total
			h -= p * math.Log(p)
		}
	}

	return 1 - h/math.Log(float64(trait.NumTraits))
}
