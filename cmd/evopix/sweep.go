package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/evopix/internal/config"
	"github.com/talgya/evopix/internal/metrics"
)

// sweepResult summarizes one history of the shared world.
type sweepResult struct {
	bioSeed int64
	final   metrics.Snapshot
	peak    int // largest population observed at a year boundary
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Replay one world under many biological seeds",
		Long: `sweep holds the world-generation seed fixed and runs the simulation
once per biological seed, in parallel. Each run is an independent
"different history" of the same world; results are ranked by final
population.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runs, _ := cmd.Flags().GetInt("runs")
			workers, _ := cmd.Flags().GetInt("sweep-workers")
			return runSweep(cfg, runs, workers)
		},
	}

	cmd.Flags().Int("runs", 16, "Number of biological seeds to sweep")
	cmd.Flags().Int("sweep-workers", runtime.NumCPU(), "Concurrent simulations")
	cmd.Flags().Int("years", 0, "Override years to simulate")
	cmd.Flags().Int64("world-seed", 0, "Override world-generation seed")
	cmd.Flags().Int64("bio-seed", 0, "Override base biological seed")
	cmd.Flags().Int("workers", 0, "Override compute workers per tick")
	cmd.Flags().String("csv", "", "Unused in sweeps")
	cmd.Flags().String("sqlite", "", "Unused in sweeps")

	return cmd
}

func runSweep(cfg config.Config, runs, workers int) error {
	if runs <= 0 {
		return fmt.Errorf("invalid configuration: runs %d must be positive", runs)
	}
	if workers <= 0 {
		workers = 1
	}

	slog.Info("sweep starting",
		"world_seed", cfg.World.Seed,
		"base_bio_seed", cfg.Run.BioSeed,
		"runs", runs,
		"workers", workers,
		"years", cfg.Run.Years,
	)

	jobs := make(chan int64)
	results := make(chan sweepResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for bioSeed := range jobs {
				res, err := sweepOne(cfg, bioSeed)
				if err != nil {
					slog.Error("sweep run failed", "bio_seed", bioSeed, "error", err)
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for i := 0; i < runs; i++ {
			jobs <- cfg.Run.BioSeed + int64(i)
		}
		close(jobs)
	}()

	start := time.Now()
	var all []sweepResult
	for res := range results {
		all = append(all, res)
		slog.Info("history complete",
			"bio_seed", res.bioSeed,
			"final_population", res.final.Population,
			"peak_population", res.peak,
			"trait_diversity", fmt.Sprintf("%.3f", res.final.TraitDiversity),
		)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].final.Population != all[j].final.Population {
			return all[i].final.Population > all[j].final.Population
		}
		return all[i].bioSeed < all[j].bioSeed
	})

	fmt.Printf("\nTop histories of world %d (elapsed %s):\n",
		cfg.World.Seed, time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(all) && i < 10; i++ {
		res := all[i]
		fmt.Printf("%2d) bio_seed=%d pop=%s peak=%s diversity=%.3f traits/cell=%.2f info=%.3f o2=%.4f\n",
			i+1, res.bioSeed,
			humanize.Comma(int64(res.final.Population)),
			humanize.Comma(int64(res.peak)),
			res.final.TraitDiversity, res.final.AvgTraitsPerCell,
			res.final.MeanInfoOrder, res.final.GlobalO2)
	}
	return nil
}

// sweepOne runs a single history in memory, no recorder attached.
func sweepOne(cfg config.Config, bioSeed int64) (sweepResult, error) {
	md := metrics.Metadata{
		RunID:     uuid.New().String(),
		Label:     cfg.Run.Label,
		WorldSeed: cfg.World.Seed,
		BioSeed:   bioSeed,
	}

	grid, atmos, engine, err := buildSimulation(cfg, bioSeed)
	if err != nil {
		return sweepResult{}, err
	}

	agg := metrics.NewAggregator()
	res := sweepResult{bioSeed: bioSeed}

	for year := 1; year <= cfg.Run.Years; year++ {
		for t := 0; t < cfg.Run.TicksPerYear; t++ {
			engine.Tick()
		}
		snap := agg.Summarize(grid, atmos, engine.TickCount(), year, md)
		res.final = snap
		if snap.Population > res.peak {
			res.peak = snap.Population
		}
		if snap.Population == 0 {
			break
		}
	}
	return res, nil
}
