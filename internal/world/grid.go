package world

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/talgya/evopix/internal/trait"
)

// ErrConfig marks invalid initialization input. It is the only error
// class the core raises; everything past initialization clamps instead.
var ErrConfig = errors.New("invalid configuration")

// Cell is one lattice position. The zero value is an empty position; an
// alive cell always has Energy > 0 and a non-empty trait set.
type Cell struct {
	Alive   bool
	Energy  float64
	Age     int
	Lineage uint32
	Traits  trait.Set
}

// Grid owns the 2D lattice of cells plus the static climate map and the
// slow organic layer fed by cell deaths. The lattice is toroidal.
type Grid struct {
	W, H int

	climate *ClimateMap

	cells   []Cell    // committed state, row-major
	next    []Cell    // write buffer for the in-progress sweep
	organic []float64 // deposited biomass, boosts local intake
}

// GridConfig controls initial population seeding.
type GridConfig struct {
	Width, Height int
	Seed          int64

	// InitialOrganisms is the number of founder cells scattered around a
	// randomly chosen origin near water.
	InitialOrganisms int

	// FounderEnergy is the starting energy of founder cells.
	FounderEnergy float64
}

// NewGrid deterministically populates a grid from the world seed and a
// climate map. All founders share one near-neutral trait set; diversity
// emerges only through mutation.
func NewGrid(cfg GridConfig, climate *ClimateMap) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("grid dimensions %dx%d: %w", cfg.Width, cfg.Height, ErrConfig)
	}
	if climate == nil {
		return nil, fmt.Errorf("nil climate map: %w", ErrConfig)
	}
	if err := climate.Validate(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if cfg.InitialOrganisms < 0 {
		return nil, fmt.Errorf("initial organisms %d: %w", cfg.InitialOrganisms, ErrConfig)
	}
	if cfg.FounderEnergy <= 0 {
		cfg.FounderEnergy = 1.0
	}

	total := cfg.Width * cfg.Height
	g := &Grid{
		W:       cfg.Width,
		H:       cfg.Height,
		climate: climate,
		cells:   make([]Cell, total),
		next:    make([]Cell, total),
		organic: make([]float64, total),
	}

	g.seedFounders(cfg)
	return g, nil
}

// seedFounders places the initial organisms in a cluster near water,
// representing a single place of origin per run.
func (g *Grid) seedFounders(cfg GridConfig) {
	if cfg.InitialOrganisms == 0 {
		return
	}
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0))

	// Pick an origin adjacent to water; fall back to a uniform pick when
	// the map has no coast.
	cx, cy := -1, -1
	for attempt := 0; attempt < 2000; attempt++ {
		x := rng.IntN(g.W)
		y := rng.IntN(g.H)
		b := g.climate.At(x, y).Biome
		if b == BiomeBeach || b == BiomeOcean {
			cx, cy = x, y
			break
		}
	}
	if cx < 0 {
		cx = rng.IntN(g.W)
		cy = rng.IntN(g.H)
	}

	sigma := float64(min(g.W, g.H)) * 0.04
	if sigma < 2 {
		sigma = 2
	}

	var founder trait.Set
	founder.Add(trait.Chemosynthesis, 0.2)
	founder.Add(trait.Membrane, trait.MinIntensity)

	var lineage uint32 = 1
	placed := 0
	for attempt := 0; attempt < cfg.InitialOrganisms*20 && placed < cfg.InitialOrganisms; attempt++ {
		x, y := g.Wrap(cx+int(rng.NormFloat64()*sigma), cy+int(rng.NormFloat64()*sigma))
		idx := g.Index(x, y)
		if g.cells[idx].Alive {
			continue
		}
		g.cells[idx] = Cell{
			Alive:   true,
			Energy:  cfg.FounderEnergy,
			Lineage: lineage,
			Traits:  founder,
		}
		lineage++
		placed++
	}
}

// Index returns the row-major slice index for (x, y).
func (g *Grid) Index(x, y int) int { return y*g.W + x }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// Cells exposes the committed cell state. The engine treats this as the
// read snapshot during a sweep; readers outside a sweep see post-tick
// state.
func (g *Grid) Cells() []Cell { return g.cells }

// Next exposes the write buffer for the in-progress sweep.
func (g *Grid) Next() []Cell { return g.next }

// Swap commits the write buffer, making it the new read state.
func (g *Grid) Swap() { g.cells, g.next = g.next, g.cells }

// Climate returns the static climate at (x, y).
func (g *Grid) Climate(x, y int) Climate { return g.climate.At(x, y) }

// ClimateMap returns the grid's static climate map.
func (g *Grid) ClimateMap() *ClimateMap { return g.climate }

// Organic returns the organic layer backing slice.
func (g *Grid) Organic() []float64 { return g.organic }

// Population counts alive cells in the committed state.
func (g *Grid) Population() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Alive {
			n++
		}
	}
	return n
}
