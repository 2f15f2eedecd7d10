// Package world owns the simulation lattice: the static climate map, the
// grid of cell agents, and the global atmosphere pools.
package world

import "fmt"

// Biome classifies a position's static environment.
type Biome uint8

const (
	BiomeOcean Biome = iota
	BiomeBeach
	BiomeGrassland
	BiomeForest
	BiomeDesert
	BiomeMountain
	BiomeSnow
	BiomeVolcanic
)

// BiomeName returns a human-readable biome name.
func BiomeName(b Biome) string {
	switch b {
	case BiomeOcean:
		return "ocean"
	case BiomeBeach:
		return "beach"
	case BiomeGrassland:
		return "grassland"
	case BiomeForest:
		return "forest"
	case BiomeDesert:
		return "desert"
	case BiomeMountain:
		return "mountain"
	case BiomeSnow:
		return "snow"
	case BiomeVolcanic:
		return "volcanic"
	default:
		return "unknown"
	}
}

// Climate is the immutable per-position environment set at initialization.
// Channel values live in [0, 1].
type Climate struct {
	Biome    Biome
	Light    float64 // photosynthetic light availability
	Soup     float64 // dissolved organics baseline
	Heat     float64 // geothermal gradient (vents, volcanic ground)
	Latitude float64 // 0 at the equator row, 1 at the poles
}

// ClimateMap is a grid-shaped static input consumed by Grid initialization.
// Cells are stored row-major.
type ClimateMap struct {
	W, H  int
	Cells []Climate
}

// Validate checks the map shape against the target grid dimensions.
func (m *ClimateMap) Validate(w, h int) error {
	if m.W != w || m.H != h {
		return fmt.Errorf("climate map is %dx%d, grid wants %dx%d: %w",
			m.W, m.H, w, h, ErrConfig)
	}
	if len(m.Cells) != m.W*m.H {
		return fmt.Errorf("climate map has %d cells for %dx%d: %w",
			len(m.Cells), m.W, m.H, ErrConfig)
	}
	return nil
}

// At returns the climate at (x, y). Callers are expected to stay in bounds.
func (m *ClimateMap) At(x, y int) Climate {
	return m.Cells[y*m.W+x]
}

// BiomeCounts tallies positions per biome, mirroring terrain summaries
// printed by drivers at startup.
func (m *ClimateMap) BiomeCounts() map[Biome]int {
	counts := make(map[Biome]int)
	for _, c := range m.Cells {
		counts[c.Biome]++
	}
	return counts
}
