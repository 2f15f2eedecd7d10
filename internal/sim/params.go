package sim

import "github.com/talgya/evopix/internal/trait"

// Params holds the tunable thresholds and rates of the update rule.
type Params struct {
	// TicksPerYear sets the seasonal period. Snapshot sampling at year
	// boundaries is the driver's job; the engine only uses this for the
	// seasonal phase.
	TicksPerYear int

	// Energy intake.
	BaseIntake  float64 // baseline climate-modulated intake per tick
	IntakeNoise float64 // amplitude of the per-cell resource noise
	SeasonAmp   float64 // seasonal modulation amplitude (scaled by latitude)

	// Metabolic cost.
	BasalCost       float64 // cost paid by every alive cell
	TraitLoadFactor float64 // extra upkeep per additional trait carried
	AgeCostFactor   float64 // upkeep growth toward the senescence bound

	// Lifecycle.
	SenescenceAge  int     // age bound, in ticks
	ReproThreshold float64 // post-intake energy needed to spawn
	ReproCost      float64 // energy the parent pays; becomes child energy
	MaxEnergy      float64 // energy storage ceiling

	// Organic layer.
	OrganicDeposit float64 // biomass deposited by a death
	OrganicDecay   float64 // per-tick decay fraction of the layer
	OrganicBoost   float64 // intake boost per unit of local organics

	// Gas exchange.
	PhotoGasYield float64 // O2 produced / CO2 consumed per photosynthetic gain
	RespGasYield  float64 // O2 consumed / CO2 produced per metabolic cost

	// Mutation tuning applied to children.
	Mutation trait.Rates
}

// DefaultParams returns the standard tuning. Values descend from the
// original model's balance: intake near the basal cost so that complexity
// has to pay for itself.
func DefaultParams() Params {
	return Params{
		TicksPerYear:    12,
		BaseIntake:      0.050,
		IntakeNoise:     0.20,
		SeasonAmp:       0.30,
		BasalCost:       0.030,
		TraitLoadFactor: 0.15,
		AgeCostFactor:   0.50,
		SenescenceAge:   600,
		ReproThreshold:  1.6,
		ReproCost:       0.7,
		MaxEnergy:       4.0,
		OrganicDeposit:  0.30,
		OrganicDecay:    0.002,
		OrganicBoost:    0.25,
		PhotoGasYield:   0.00004,
		RespGasYield:    0.00001,
		Mutation:        trait.DefaultRates(),
	}
}
