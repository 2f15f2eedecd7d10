package world

// Baseline pool levels of the primordial atmosphere. Pools start here
// and relaxation pulls them back toward these values each tick.
const (
	BaselineO2  = 0.02
	BaselineCO2 = 0.04
)

// defaultRelaxRate is the per-tick fraction of the baseline gap closed
// by relaxation.
const defaultRelaxRate = 0.001

// Atmosphere holds the global gas pools shared by every cell. The engine
// owns it exclusively and updates it once per tick from the summed grid
// flux; cells read the start-of-tick values only.
type Atmosphere struct {
	O2  float64
	CO2 float64

	O2Capacity  float64
	CO2Capacity float64

	// RelaxRate pulls each pool toward its baseline once per flux
	// application. Zero disables relaxation.
	RelaxRate float64
}

// Flux is one tick's net gas production (positive) or consumption
// (negative), already summed across all cells.
type Flux struct {
	O2  float64
	CO2 float64
}

// NewAtmosphere returns pools initialized to the primordial baseline:
// almost no free oxygen, trace CO2.
func NewAtmosphere(o2Cap, co2Cap float64) *Atmosphere {
	if o2Cap <= 0 {
		o2Cap = 1.0
	}
	if co2Cap <= 0 {
		co2Cap = 1.0
	}
	return &Atmosphere{
		O2:          BaselineO2,
		CO2:         BaselineCO2,
		O2Capacity:  o2Cap,
		CO2Capacity: co2Cap,
		RelaxRate:   defaultRelaxRate,
	}
}

// ApplyFlux adds the tick's aggregate flux, relaxes each pool a step
// toward its baseline, and clamps to [0, capacity]. Overflow and
// depletion are expected boundary states of the model, never errors.
func (a *Atmosphere) ApplyFlux(f Flux) {
	o2 := a.O2 + f.O2
	co2 := a.CO2 + f.CO2
	o2 += a.RelaxRate * (BaselineO2 - o2)
	co2 += a.RelaxRate * (BaselineCO2 - co2)
	a.O2 = clampPool(o2, a.O2Capacity)
	a.CO2 = clampPool(co2, a.CO2Capacity)
}

// O2Frac returns the oxygen pool as a fraction of capacity.
func (a *Atmosphere) O2Frac() float64 { return a.O2 / a.O2Capacity }

// CO2Frac returns the CO2 pool as a fraction of capacity.
func (a *Atmosphere) CO2Frac() float64 { return a.CO2 / a.CO2Capacity }

func clampPool(v, capacity float64) float64 {
	if v < 0 {
		return 0
	}
	if v > capacity {
		return capacity
	}
	return v
}
