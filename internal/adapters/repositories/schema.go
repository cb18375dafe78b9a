package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"pipeline-profile-service/internal/adapters/survey"
	"pipeline-profile-service/internal/platform/db"
)

// InitSchema creates the survey tables and the profile result cache table.
// Statements are idempotent.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		label TEXT PRIMARY KEY
	);
	`

	createSeriesQuery := `
	CREATE TABLE IF NOT EXISTS series_points (
		route TEXT NOT NULL REFERENCES routes(label) ON DELETE CASCADE,
		series TEXT NOT NULL,
		seq INTEGER NOT NULL,
		distance DOUBLE PRECISION NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (route, series, seq)
	);
	`

	createEquipmentQuery := `
	CREATE TABLE IF NOT EXISTS equipment (
		route TEXT NOT NULL REFERENCES routes(label) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		distance DOUBLE PRECISION NOT NULL,
		outlets INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL DEFAULT '',
		static_level DOUBLE PRECISION,
		PRIMARY KEY (route, seq)
	);
	`

	createCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS profile_cache (
		cache_key TEXT PRIMARY KEY,
		route TEXT NOT NULL,
		payload %s NOT NULL,
		created_at BIGINT NOT NULL
	);
	`, dialect.BlobType())

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_profile_cache_route
	ON profile_cache(route);
	`

	statements := []string{
		createRoutesQuery,
		createSeriesQuery,
		createEquipmentQuery,
		createCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromJSON loads profile documents (a single object or an array) from
// jsonPath and stores each one, replacing routes that already exist.
func SeedFromJSON(ctx context.Context, repo *SQLProfileRepository, jsonPath string) (int, error) {
	f, err := os.Open(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed profiles: open %q: %w", jsonPath, err)
	}
	defer f.Close()

	docs, err := survey.DecodeDocuments(f)
	if err != nil {
		return 0, fmt.Errorf("seed profiles: %w", err)
	}

	for i := range docs {
		in, err := docs[i].ToInput()
		if err != nil {
			return i, fmt.Errorf("seed profiles: document #%d: %w", i+1, err)
		}
		if err := repo.SaveProfile(ctx, in); err != nil {
			return i, fmt.Errorf("seed profiles: %w", err)
		}
	}

	return len(docs), nil
}
