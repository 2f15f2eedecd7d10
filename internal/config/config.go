// Package config provides run configuration loading for evopix.
// Values come from a YAML file with sane defaults; the CLI may override
// individual fields with flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/evopix/internal/sim"
	"github.com/talgya/evopix/internal/trait"
)

// Config contains all settings for one simulation run.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Run         RunConfig         `yaml:"run"`
	Dynamics    DynamicsConfig    `yaml:"dynamics"`
	Mutation    MutationConfig    `yaml:"mutation"`
	Atmosphere  AtmosphereConfig  `yaml:"atmosphere"`
	Catastrophe CatastropheConfig `yaml:"catastrophe"`
	Output      OutputConfig      `yaml:"output"`
}

// WorldConfig controls the lattice and its climate map.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Seed drives climate generation and founder placement. Holding it
	// fixed while varying run.bio_seed replays different histories on the
	// same world.
	Seed int64 `yaml:"seed"`

	InitialOrganisms int     `yaml:"initial_organisms"`
	FounderEnergy    float64 `yaml:"founder_energy"`
}

// RunConfig controls the driver loop.
type RunConfig struct {
	BioSeed      int64  `yaml:"bio_seed"`
	Years        int    `yaml:"years"`
	TicksPerYear int    `yaml:"ticks_per_year"`
	Workers      int    `yaml:"workers"`
	Label        string `yaml:"label"`
}

// DynamicsConfig exposes the engine's update-rule tunables.
type DynamicsConfig struct {
	BaseIntake      float64 `yaml:"base_intake"`
	IntakeNoise     float64 `yaml:"intake_noise"`
	SeasonAmp       float64 `yaml:"season_amp"`
	BasalCost       float64 `yaml:"basal_cost"`
	TraitLoadFactor float64 `yaml:"trait_load_factor"`
	AgeCostFactor   float64 `yaml:"age_cost_factor"`
	SenescenceAge   int     `yaml:"senescence_age"`
	ReproThreshold  float64 `yaml:"repro_threshold"`
	ReproCost       float64 `yaml:"repro_cost"`
	MaxEnergy       float64 `yaml:"max_energy"`
	OrganicDeposit  float64 `yaml:"organic_deposit"`
	OrganicDecay    float64 `yaml:"organic_decay"`
	OrganicBoost    float64 `yaml:"organic_boost"`
}

// MutationConfig exposes the per-class mutation probabilities.
type MutationConfig struct {
	Add           float64 `yaml:"add"`
	Drop          float64 `yaml:"drop"`
	Perturb       float64 `yaml:"perturb"`
	Sigma         float64 `yaml:"sigma"`
	InitIntensity float64 `yaml:"init_intensity"`
}

// AtmosphereConfig sets the global gas pool capacities and the per-tick
// relaxation toward the primordial baselines. Zero relax_rate disables
// relaxation.
type AtmosphereConfig struct {
	O2Capacity  float64 `yaml:"o2_capacity"`
	CO2Capacity float64 `yaml:"co2_capacity"`
	RelaxRate   float64 `yaml:"relax_rate"`
}

// CatastropheConfig enables the built-in interval blast. Zero interval
// disables it.
type CatastropheConfig struct {
	Interval int `yaml:"interval"`
	Radius   int `yaml:"radius"`
}

// OutputConfig selects recorders. Empty paths disable the corresponding
// output.
type OutputConfig struct {
	CSVPath    string `yaml:"csv_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the standard configuration.
func Default() Config {
	p := sim.DefaultParams()
	m := trait.DefaultRates()
	return Config{
		World: WorldConfig{
			Width:            128,
			Height:           128,
			Seed:             1,
			InitialOrganisms: 200,
			FounderEnergy:    1.0,
		},
		Run: RunConfig{
			BioSeed:      1,
			Years:        500,
			TicksPerYear: p.TicksPerYear,
			Workers:      1,
		},
		Dynamics: DynamicsConfig{
			BaseIntake:      p.BaseIntake,
			IntakeNoise:     p.IntakeNoise,
			SeasonAmp:       p.SeasonAmp,
			BasalCost:       p.BasalCost,
			TraitLoadFactor: p.TraitLoadFactor,
			AgeCostFactor:   p.AgeCostFactor,
			SenescenceAge:   p.SenescenceAge,
			ReproThreshold:  p.ReproThreshold,
			ReproCost:       p.ReproCost,
			MaxEnergy:       p.MaxEnergy,
			OrganicDeposit:  p.OrganicDeposit,
			OrganicDecay:    p.OrganicDecay,
			OrganicBoost:    p.OrganicBoost,
		},
		Mutation: MutationConfig{
			Add:           m.Add,
			Drop:          m.Drop,
			Perturb:       m.Perturb,
			Sigma:         m.Sigma,
			InitIntensity: m.InitIntensity,
		},
		Atmosphere: AtmosphereConfig{
			O2Capacity:  1.0,
			CO2Capacity: 1.0,
			RelaxRate:   0.001,
		},
		Output: OutputConfig{
			CSVPath: "data/metrics/run.csv",
		},
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for configuration errors. These are the only errors
// the core raises; they fail the run before the first tick.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions %dx%d must be positive", c.World.Width, c.World.Height)
	}
	if c.World.InitialOrganisms < 0 {
		return fmt.Errorf("initial_organisms %d must be non-negative", c.World.InitialOrganisms)
	}
	if c.Run.Years <= 0 {
		return fmt.Errorf("years %d must be positive", c.Run.Years)
	}
	if c.Run.TicksPerYear <= 0 {
		return fmt.Errorf("ticks_per_year %d must be positive", c.Run.TicksPerYear)
	}
	if c.Dynamics.SenescenceAge <= 0 {
		return fmt.Errorf("senescence_age %d must be positive", c.Dynamics.SenescenceAge)
	}
	if c.Dynamics.ReproCost <= 0 || c.Dynamics.ReproThreshold <= c.Dynamics.ReproCost {
		return fmt.Errorf("repro_threshold %.3f must exceed repro_cost %.3f (both positive)",
			c.Dynamics.ReproThreshold, c.Dynamics.ReproCost)
	}
	for name, rate := range map[string]float64{
		"mutation.add":     c.Mutation.Add,
		"mutation.drop":    c.Mutation.Drop,
		"mutation.perturb": c.Mutation.Perturb,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s %.3f must be in [0, 1]", name, rate)
		}
	}
	if c.Atmosphere.O2Capacity <= 0 || c.Atmosphere.CO2Capacity <= 0 {
		return fmt.Errorf("atmosphere capacities must be positive")
	}
	if c.Atmosphere.RelaxRate < 0 || c.Atmosphere.RelaxRate > 1 {
		return fmt.Errorf("atmosphere relax_rate %.3f must be in [0, 1]", c.Atmosphere.RelaxRate)
	}
	if c.Catastrophe.Interval < 0 || c.Catastrophe.Radius < 0 {
		return fmt.Errorf("catastrophe interval/radius must be non-negative")
	}
	return nil
}

// Params assembles the engine parameter block.
func (c *Config) Params() sim.Params {
	return sim.Params{
		TicksPerYear:    c.Run.TicksPerYear,
		BaseIntake:      c.Dynamics.BaseIntake,
		IntakeNoise:     c.Dynamics.IntakeNoise,
		SeasonAmp:       c.Dynamics.SeasonAmp,
		BasalCost:       c.Dynamics.BasalCost,
		TraitLoadFactor: c.Dynamics.TraitLoadFactor,
		AgeCostFactor:   c.Dynamics.AgeCostFactor,
		SenescenceAge:   c.Dynamics.SenescenceAge,
		ReproThreshold:  c.Dynamics.ReproThreshold,
		ReproCost:       c.Dynamics.ReproCost,
		MaxEnergy:       c.Dynamics.MaxEnergy,
		OrganicDeposit:  c.Dynamics.OrganicDeposit,
		OrganicDecay:    c.Dynamics.OrganicDecay,
		OrganicBoost:    c.Dynamics.OrganicBoost,
		PhotoGasYield:   sim.DefaultParams().PhotoGasYield,
		RespGasYield:    sim.DefaultParams().RespGasYield,
		Mutation: trait.Rates{
			Add:           c.Mutation.Add,
			Drop:          c.Mutation.Drop,
			Perturb:       c.Mutation.Perturb,
			Sigma:         c.Mutation.Sigma,
			InitIntensity: c.Mutation.InitIntensity,
		},
	}
}
