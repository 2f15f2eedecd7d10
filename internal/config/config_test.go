package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 128, cfg.World.Width)
	assert.Equal(t, 12, cfg.Run.TicksPerYear)
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
world:
  width: 64
  height: 32
  seed: 77
run:
  bio_seed: 5
  years: 100
  label: experiment
dynamics:
  repro_threshold: 2.0
  repro_cost: 0.9
output:
  csv_path: ""
  sqlite_path: out.db
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 64, cfg.World.Width)
	assert.Equal(t, 32, cfg.World.Height)
	assert.Equal(t, int64(77), cfg.World.Seed)
	assert.Equal(t, int64(5), cfg.Run.BioSeed)
	assert.Equal(t, 100, cfg.Run.Years)
	assert.Equal(t, "experiment", cfg.Run.Label)
	assert.Equal(t, 2.0, cfg.Dynamics.ReproThreshold)
	assert.Equal(t, "", cfg.Output.CSVPath)
	assert.Equal(t, "out.db", cfg.Output.SQLitePath)

	// Untouched fields keep their defaults.
	assert.Equal(t, Default().Run.TicksPerYear, cfg.Run.TicksPerYear)
	assert.Equal(t, Default().Dynamics.BaseIntake, cfg.Dynamics.BaseIntake)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }},
		{"negative organisms", func(c *Config) { c.World.InitialOrganisms = -1 }},
		{"zero years", func(c *Config) { c.Run.Years = 0 }},
		{"zero ticks per year", func(c *Config) { c.Run.TicksPerYear = 0 }},
		{"zero senescence", func(c *Config) { c.Dynamics.SenescenceAge = 0 }},
		{"threshold below cost", func(c *Config) { c.Dynamics.ReproThreshold = 0.5; c.Dynamics.ReproCost = 0.7 }},
		{"zero repro cost", func(c *Config) { c.Dynamics.ReproCost = 0 }},
		{"mutation rate above one", func(c *Config) { c.Mutation.Add = 1.5 }},
		{"negative mutation rate", func(c *Config) { c.Mutation.Drop = -0.1 }},
		{"zero o2 capacity", func(c *Config) { c.Atmosphere.O2Capacity = 0 }},
		{"relax rate above one", func(c *Config) { c.Atmosphere.RelaxRate = 1.5 }},
		{"negative relax rate", func(c *Config) { c.Atmosphere.RelaxRate = -0.1 }},
		{"negative catastrophe interval", func(c *Config) { c.Catastrophe.Interval = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParamsAssembly(t *testing.T) {
	cfg := Default()
	cfg.Run.TicksPerYear = 24
	cfg.Dynamics.ReproThreshold = 3.0
	cfg.Mutation.Add = 0.1

	p := cfg.Params()
	assert.Equal(t, 24, p.TicksPerYear)
	assert.Equal(t, 3.0, p.ReproThreshold)
	assert.Equal(t, 0.1, p.Mutation.Add)
	assert.Equal(t, cfg.Dynamics.MaxEnergy, p.MaxEnergy)
}
