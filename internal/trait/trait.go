// Package trait defines the closed catalog of cell capabilities and the
// mutation operator that evolves them between generations.
package trait

// ID identifies a trait in the catalog.
type ID uint8

// Catalog order is fixed for the lifetime of a run; signatures and
// per-cell random draws depend on it.
const (
	Photosynthesis ID = iota
	Chemosynthesis
	Membrane
	Motility
	Predation
	Cooperation
	Thermoregulation
	NitrogenFixation

	NumTraits int = iota
)

// Intensity bounds. A present trait always carries intensity within
// [MinIntensity, MaxIntensity]; absent traits are stored as zero.
const (
	MinIntensity = 0.05
	MaxIntensity = 1.0
)

// MaxPerCell caps trait-set cardinality.
const MaxPerCell = 5

// Def describes one catalog entry: its upkeep cost per unit intensity per
// tick and the multiplier applied to whatever pathway the trait drives.
type Def struct {
	Name   string
	Cost   float64
	Effect float64

	// Prereqs must all be present before the trait can be acquired by
	// mutation. Dropping a prerequisite prunes its dependents.
	Prereqs []ID
}

// Catalog holds the per-run trait definitions, indexed by ID.
var Catalog = [NumTraits]Def{
	Photosynthesis:   {Name: "photosynthesis", Cost: 0.010, Effect: 0.60, Prereqs: []ID{Membrane}},
	Chemosynthesis:   {Name: "chemosynthesis", Cost: 0.008, Effect: 0.45},
	Membrane:         {Name: "membrane", Cost: 0.004, Effect: 0.20},
	Motility:         {Name: "motility", Cost: 0.012, Effect: 0.30},
	Predation:        {Name: "predation", Cost: 0.018, Effect: 0.80, Prereqs: []ID{Motility}},
	Cooperation:      {Name: "cooperation", Cost: 0.006, Effect: 0.50, Prereqs: []ID{Membrane}},
	Thermoregulation: {Name: "thermoregulation", Cost: 0.009, Effect: 0.35},
	NitrogenFixation: {Name: "nitrogen_fixation", Cost: 0.007, Effect: 0.40, Prereqs: []ID{Membrane}},
}

// Set is a bounded trait set: intensity per catalog slot, zero meaning
// absent. The zero value is the empty set.
type Set struct {
	intensity [NumTraits]float64
}

// Signature is a comparable key identifying which traits are present,
// ignoring intensities. Used to group cells for diversity metrics.
type Signature uint16

// Has reports whether the trait is present.
func (s *Set) Has(id ID) bool { return s.intensity[id] > 0 }

// Intensity returns the trait's intensity, or 0 when absent.
func (s *Set) Intensity(id ID) float64 { return s.intensity[id] }

// Count returns the number of traits present.
func (s *Set) Count() int {
	n := 0
	for _, v := range s.intensity {
		if v > 0 {
			n++
		}
	}
	return n
}

// Add inserts or updates a trait, clamping intensity to the legal range.
// Adding beyond MaxPerCell is a no-op.
func (s *Set) Add(id ID, intensity float64) {
	if !s.Has(id) && s.Count() >= MaxPerCell {
		return
	}
	s.intensity[id] = clampIntensity(intensity)
}

// Remove drops a trait and prunes any present traits whose prerequisites
// no longer hold.
func (s *Set) Remove(id ID) {
	s.intensity[id] = 0
	s.prune()
}

// Signature returns the presence bitmask of the set.
func (s *Set) Signature() Signature {
	var sig Signature
	for id := 0; id < NumTraits; id++ {
		if s.intensity[id] > 0 {
			sig |= 1 << id
		}
	}
	return sig
}

// PrereqsMet reports whether every prerequisite of id is present.
func (s *Set) PrereqsMet(id ID) bool {
	for _, p := range Catalog[id].Prereqs {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// UpkeepCost returns the summed per-tick metabolic cost of the set.
func (s *Set) UpkeepCost() float64 {
	total := 0.0
	for id := 0; id < NumTraits; id++ {
		if v := s.intensity[id]; v > 0 {
			total += Catalog[id].Cost * v
		}
	}
	return total
}

// prune removes traits whose prerequisites are missing, repeating until
// the set is closed. Dependency chains are short so this converges fast.
func (s *Set) prune() {
	for {
		removed := false
		for id := 0; id < NumTraits; id++ {
			if s.intensity[id] > 0 && !s.PrereqsMet(ID(id)) {
				s.intensity[id] = 0
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

func clampIntensity(v float64) float64 {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}
