package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/evopix/internal/config"
	"github.com/talgya/evopix/internal/metrics"
	"github.com/talgya/evopix/internal/recorder"
	"github.com/talgya/evopix/internal/sim"
	"github.com/talgya/evopix/internal/world"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and record annual snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runOnce(cfg)
		},
	}

	cmd.Flags().Int("years", 0, "Override years to simulate")
	cmd.Flags().Int64("world-seed", 0, "Override world-generation seed")
	cmd.Flags().Int64("bio-seed", 0, "Override biological-dynamics seed")
	cmd.Flags().Int("workers", 0, "Override compute workers per tick")
	cmd.Flags().String("csv", "", "Override CSV output path")
	cmd.Flags().String("sqlite", "", "Override SQLite output path")

	return cmd
}

// loadConfig reads the YAML config, applies flag overrides, validates.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetInt("years"); v > 0 {
		cfg.Run.Years = v
	}
	if v, _ := cmd.Flags().GetInt64("world-seed"); v != 0 {
		cfg.World.Seed = v
	}
	if v, _ := cmd.Flags().GetInt64("bio-seed"); v != 0 {
		cfg.Run.BioSeed = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Run.Workers = v
	}
	if v, _ := cmd.Flags().GetString("csv"); v != "" {
		cfg.Output.CSVPath = v
	}
	if v, _ := cmd.Flags().GetString("sqlite"); v != "" {
		cfg.Output.SQLitePath = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildSimulation assembles grid, atmosphere, and engine from the config.
// bioSeed is passed separately so sweeps can vary it per run.
func buildSimulation(cfg config.Config, bioSeed int64) (*world.Grid, *world.Atmosphere, *sim.Engine, error) {
	gen := world.DefaultGenConfig()
	gen.Width = cfg.World.Width
	gen.Height = cfg.World.Height
	gen.Seed = cfg.World.Seed
	climate := world.GenerateClimate(gen)

	grid, err := world.NewGrid(world.GridConfig{
		Width:            cfg.World.Width,
		Height:           cfg.World.Height,
		Seed:             cfg.World.Seed,
		InitialOrganisms: cfg.World.InitialOrganisms,
		FounderEnergy:    cfg.World.FounderEnergy,
	}, climate)
	if err != nil {
		return nil, nil, nil, err
	}

	atmos := world.NewAtmosphere(cfg.Atmosphere.O2Capacity, cfg.Atmosphere.CO2Capacity)
	atmos.RelaxRate = cfg.Atmosphere.RelaxRate

	opts := []sim.Option{sim.WithWorkers(cfg.Run.Workers)}
	if blast := sim.IntervalBlast(cfg.Catastrophe.Interval, cfg.Catastrophe.Radius,
		cfg.World.Width, cfg.World.Height); blast != nil {
		opts = append(opts, sim.WithCatastrophe(blast))
	}

	engine := sim.New(grid, atmos, cfg.Params(), bioSeed, opts...)
	return grid, atmos, engine, nil
}

func runOnce(cfg config.Config) error {
	md := metrics.Metadata{
		RunID:     uuid.New().String(),
		Label:     cfg.Run.Label,
		WorldSeed: cfg.World.Seed,
		BioSeed:   cfg.Run.BioSeed,
	}

	grid, atmos, engine, err := buildSimulation(cfg, cfg.Run.BioSeed)
	if err != nil {
		return err
	}

	for biome, count := range grid.ClimateMap().BiomeCounts() {
		slog.Debug("climate", "biome", world.BiomeName(biome), "positions", count)
	}
	slog.Info("world initialized",
		"run_id", md.RunID,
		"size", fmt.Sprintf("%dx%d", cfg.World.Width, cfg.World.Height),
		"world_seed", cfg.World.Seed,
		"bio_seed", cfg.Run.BioSeed,
		"population", grid.Population(),
	)

	var recorders recorder.Multi
	if cfg.Output.CSVPath != "" {
		csv, err := recorder.NewCSV(cfg.Output.CSVPath, md)
		if err != nil {
			return err
		}
		recorders = append(recorders, csv)
	}
	if cfg.Output.SQLitePath != "" {
		db, err := recorder.NewSQLite(cfg.Output.SQLitePath, md)
		if err != nil {
			return err
		}
		recorders = append(recorders, db)
	}

	agg := metrics.NewAggregator()
	start := time.Now()

	for year := 1; year <= cfg.Run.Years; year++ {
		for t := 0; t < cfg.Run.TicksPerYear; t++ {
			engine.Tick()
		}

		snap := agg.Summarize(grid, atmos, engine.TickCount(), year, md)
		if err := recorders.Record(snap); err != nil {
			recorders.Close()
			return fmt.Errorf("record year %d: %w", year, err)
		}

		if year%50 == 0 || year == cfg.Run.Years {
			slog.Info("yearly report",
				"year", year,
				"population", humanize.Comma(int64(snap.Population)),
				"avg_energy", fmt.Sprintf("%.3f", snap.AvgEnergy),
				"trait_diversity", fmt.Sprintf("%.3f", snap.TraitDiversity),
				"avg_traits", fmt.Sprintf("%.2f", snap.AvgTraitsPerCell),
				"info_order", fmt.Sprintf("%.3f", snap.MeanInfoOrder),
				"o2", fmt.Sprintf("%.4f", snap.GlobalO2),
				"co2", fmt.Sprintf("%.4f", snap.GlobalCO2),
			)
		}

		if snap.Population == 0 {
			slog.Info("population extinct", "year", year)
			break
		}
	}

	slog.Info("run complete",
		"ticks", humanize.Comma(int64(engine.TickCount())),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return recorders.Close()
}
