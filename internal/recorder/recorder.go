// Package recorder persists annual snapshots. The engine never touches
// this; the driver hands each sampled Snapshot to one or more recorders.
package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/talgya/evopix/internal/metrics"
)

// Recorder consumes one Snapshot per sampled year.
type Recorder interface {
	Record(metrics.Snapshot) error
	Close() error
}

// csvColumns is the stable column order of the CSV output.
var csvColumns = []string{
	"tick", "year", "population", "avg_energy", "var_energy",
	"trait_diversity", "distinct_trait_sets", "avg_traits_per_cell",
	"mean_info_order", "global_o2", "global_co2", "world_seed", "bio_seed",
	"run_id",
}

// CSV writes snapshots as rows of a single CSV file, preceded by a
// self-describing comment header so the file carries its own run context.
type CSV struct {
	f *os.File
	w *csv.Writer
}

// NewCSV creates the output file (and its directory) and writes the
// metadata header plus the column header.
func NewCSV(path string, md metrics.Metadata) (*CSV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create metrics dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create metrics file: %w", err)
	}

	fmt.Fprintf(f, "# datetime=%s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(f, "# run_id=%s\n", md.RunID)
	fmt.Fprintf(f, "# world_seed=%d\n", md.WorldSeed)
	fmt.Fprintf(f, "# bio_seed=%d\n", md.BioSeed)
	if md.Label != "" {
		fmt.Fprintf(f, "# label=%s\n", md.Label)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	return &CSV{f: f, w: w}, nil
}

// Record appends one row.
func (c *CSV) Record(s metrics.Snapshot) error {
	row := []string{
		strconv.FormatUint(s.Tick, 10),
		strconv.Itoa(s.Year),
		strconv.Itoa(s.Population),
		formatFloat(s.AvgEnergy),
		formatFloat(s.VarEnergy),
		formatFloat(s.TraitDiversity),
		strconv.Itoa(s.DistinctSets),
		formatFloat(s.AvgTraitsPerCell),
		formatFloat(s.MeanInfoOrder),
		formatFloat(s.GlobalO2),
		formatFloat(s.GlobalCO2),
		strconv.FormatInt(s.Meta.WorldSeed, 10),
		strconv.FormatInt(s.Meta.BioSeed, 10),
		s.Meta.RunID,
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (c *CSV) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return c.f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 9, 64)
}

// Multi fans each snapshot out to several recorders; the first error wins.
type Multi []Recorder

// Record forwards to every recorder.
func (m Multi) Record(s metrics.Snapshot) error {
	for _, r := range m {
		if err := r.Record(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every recorder, returning the first failure.
func (m Multi) Close() error {
	var first error
	for _, r := range m {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
