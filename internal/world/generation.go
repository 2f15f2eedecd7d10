// Climate map generation using layered simplex noise.
// Generates elevation, humidity, and temperature fields, then derives
// biomes and the per-position resource channels cells feed on.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds climate generation parameters.
type GenConfig struct {
	Width, Height int
	Seed          int64
	SeaLevel      float64 // elevation threshold for ocean
	MountainLvl   float64 // elevation threshold for mountains
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:       128,
		Height:      128,
		Seed:        1,
		SeaLevel:    0.22,
		MountainLvl: 0.74,
	}
}

// GenerateClimate builds a complete climate map from the world seed.
// The same seed always yields the same map.
func GenerateClimate(cfg GenConfig) *ClimateMap {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	humidNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	tempNoise := opensimplex.NewNormalized(cfg.Seed + 2)

	m := &ClimateMap{
		W:     cfg.Width,
		H:     cfg.Height,
		Cells: make([]Climate, cfg.Width*cfg.Height),
	}

	for y := 0; y < cfg.Height; y++ {
		// Latitude: 0 on the equator row, 1 at either pole.
		lat := 0.0
		if cfg.Height > 1 {
			lat = math.Abs(float64(2*y)/float64(cfg.Height-1) - 1)
		}

		for x := 0; x < cfg.Width; x++ {
			fx := float64(x)
			fy := float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.03, 0.5)
			humid := octaveNoise(humidNoise, fx, fy, 3, 0.025, 0.5)
			temp := octaveNoise(tempNoise, fx, fy, 3, 0.02, 0.5)

			// Temperature falls with latitude and elevation.
			temp = temp*0.5 + (1.0-lat)*0.35 + (1.0-elev)*0.15

			biome := deriveBiome(elev, humid, temp, cfg)

			m.Cells[y*cfg.Width+x] = Climate{
				Biome:    biome,
				Light:    lightFor(biome, lat),
				Soup:     soupFor(biome, humid),
				Heat:     heatFor(biome, elev),
				Latitude: lat,
			}
		}
	}

	return m
}

// octaveNoise samples multi-octave noise for natural-looking fields.
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	f := freq

	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*f, y*f) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		f *= 2.0
	}

	return total / maxValue
}

func deriveBiome(elev, humid, temp float64, cfg GenConfig) Biome {
	switch {
	case elev < cfg.SeaLevel:
		return BiomeOcean
	case elev < cfg.SeaLevel+0.04:
		return BiomeBeach
	case elev > cfg.MountainLvl && temp > 0.62 && humid < 0.35:
		return BiomeVolcanic
	case elev > cfg.MountainLvl && temp < 0.35:
		return BiomeSnow
	case elev > cfg.MountainLvl:
		return BiomeMountain
	case temp > 0.7 && humid < 0.25:
		return BiomeDesert
	case humid > 0.55 && temp > 0.3:
		return BiomeForest
	default:
		return BiomeGrassland
	}
}

// Per-biome channel baselines, shaded by latitude/humidity/elevation.
// Water and lush biomes carry the richest organics; volcanic ground is
// the only strong geothermal source.

func lightFor(b Biome, lat float64) float64 {
	base := 0.5
	switch b {
	case BiomeDesert:
		base = 0.95
	case BiomeGrassland, BiomeBeach:
		base = 0.8
	case BiomeForest:
		base = 0.7
	case BiomeOcean:
		base = 0.75
	case BiomeMountain, BiomeVolcanic:
		base = 0.6
	case BiomeSnow:
		base = 0.35
	}
	return clamp01(base * (1.0 - 0.4*lat))
}

func soupFor(b Biome, humid float64) float64 {
	base := 0.15
	switch b {
	case BiomeForest:
		base = 0.75
	case BiomeOcean:
		base = 0.5
	case BiomeBeach, BiomeGrassland:
		base = 0.4
	case BiomeVolcanic:
		base = 0.25
	case BiomeDesert, BiomeSnow:
		base = 0.05
	case BiomeMountain:
		base = 0.1
	}
	return clamp01(base * (0.6 + 0.4*humid))
}

func heatFor(b Biome, elev float64) float64 {
	switch b {
	case BiomeVolcanic:
		return clamp01(0.7 + 0.3*elev)
	case BiomeOcean:
		// Deep-water vents.
		return clamp01(0.3 * (1.0 - elev/0.25))
	default:
		return 0.05
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
