package recorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/evopix/internal/metrics"
)

// SQLite stores snapshots in a SQLite database, one row per sampled year,
// with run metadata in a key/value side table. Multiple runs can share a
// database; rows are distinguished by run_id.
type SQLite struct {
	conn *sqlx.DB
}

// NewSQLite opens or creates the database and records the run metadata.
func NewSQLite(path string, md metrics.Metadata) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := db.saveRunMeta(md); err != nil {
		conn.Close()
		return nil, fmt.Errorf("save run meta: %w", err)
	}
	return db, nil
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		year INTEGER NOT NULL,
		population INTEGER NOT NULL,
		avg_energy REAL NOT NULL,
		var_energy REAL NOT NULL,
		trait_diversity REAL NOT NULL,
		distinct_trait_sets INTEGER NOT NULL,
		avg_traits_per_cell REAL NOT NULL,
		mean_info_order REAL NOT NULL,
		global_o2 REAL NOT NULL,
		global_co2 REAL NOT NULL,
		PRIMARY KEY (run_id, year)
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_year ON snapshots(year);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func (db *SQLite) saveRunMeta(md metrics.Metadata) error {
	pairs := map[string]string{
		"label":      md.Label,
		"world_seed": fmt.Sprintf("%d", md.WorldSeed),
		"bio_seed":   fmt.Sprintf("%d", md.BioSeed),
	}
	for k, v := range pairs {
		_, err := db.conn.Exec(
			"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
			md.RunID, k, v,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Record inserts one snapshot row.
func (db *SQLite) Record(s metrics.Snapshot) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO snapshots
		(run_id, tick, year, population, avg_energy, var_energy,
		 trait_diversity, distinct_trait_sets, avg_traits_per_cell,
		 mean_info_order, global_o2, global_co2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Meta.RunID, s.Tick, s.Year, s.Population, s.AvgEnergy, s.VarEnergy,
		s.TraitDiversity, s.DistinctSets, s.AvgTraitsPerCell,
		s.MeanInfoOrder, s.GlobalO2, s.GlobalCO2,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot year %d: %w", s.Year, err)
	}
	return nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

// Snapshots reads back all rows for a run in year order. Used by analysis
// tooling and tests.
func (db *SQLite) Snapshots(runID string) ([]metrics.Snapshot, error) {
	rows, err := db.conn.Queryx(
		`SELECT tick, year, population, avg_energy, var_energy,
		        trait_diversity, distinct_trait_sets, avg_traits_per_cell,
		        mean_info_order, global_o2, global_co2
		 FROM snapshots WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []metrics.Snapshot
	for rows.Next() {
		var s metrics.Snapshot
		s.Meta.RunID = runID
		if err := rows.Scan(&s.Tick, &s.Year, &s.Population, &s.AvgEnergy,
			&s.VarEnergy, &s.TraitDiversity, &s.DistinctSets,
			&s.AvgTraitsPerCell, &s.MeanInfoOrder, &s.GlobalO2,
			&s.GlobalCO2); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
