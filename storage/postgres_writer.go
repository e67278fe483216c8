package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"padi-scraper/models"
	"padi-scraper/utils"
)

const insertColumns = 7

// PostgresWriter persists deduplicated listings to PostgreSQL. Rows are
// unique on their five fields; a rerun refreshes run_id on rows it sees
// again.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn, runID string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dive_shops (
			id               SERIAL PRIMARY KEY,
			run_id           UUID        NOT NULL,
			name             TEXT        NOT NULL,
			category         TEXT        NOT NULL,
			center_category  TEXT        NOT NULL,
			location_country TEXT        NOT NULL,
			location_city    TEXT        NOT NULL,
			defaulted_fields SMALLINT    NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (name, category, center_category, location_country, location_city)
		);

		CREATE INDEX IF NOT EXISTS idx_dive_shops_country ON dive_shops(location_country);
		CREATE INDEX IF NOT EXISTS idx_dive_shops_run_id  ON dive_shops(run_id);
	`)
	return err
}

// Write batch-inserts the listings.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}

		query, args := buildInsert(pw.runID, listings[i:end])
		if _, err := pw.db.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

func buildInsert(runID string, batch []*models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*insertColumns)

	for idx, l := range batch {
		base := idx * insertColumns
		placeholders := make([]string, insertColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			runID, l.Name, l.Category, l.CenterCategory, l.LocationCountry, l.LocationCity, l.DefaultedCount())
	}

	query := fmt.Sprintf(`
		INSERT INTO dive_shops (run_id, name, category, center_category, location_country, location_city, defaulted_fields)
		VALUES %s
		ON CONFLICT (name, category, center_category, location_country, location_city)
		DO UPDATE SET run_id = EXCLUDED.run_id
	`, strings.Join(valueStrings, ","))

	return query, valueArgs
}

// CountRun returns how many stored rows were seen by this run.
func (pw *PostgresWriter) CountRun() (int, error) {
	var n int
	err := pw.db.QueryRow(`SELECT COUNT(*) FROM dive_shops WHERE run_id = $1`, pw.runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count run: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
