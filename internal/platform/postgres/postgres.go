// Package postgres opens the lib/pq connection pool and owns the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"afi/internal/platform/config"
)

// Schema creates the record table. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS district_afi_data (
	id                  uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	period              text NOT NULL,
	state_canonical     text NOT NULL,
	district_clean      text NOT NULL,
	pincode             text,
	afi_composite_score double precision NOT NULL,
	enrol_total         bigint,
	demo_total          bigint,
	bio_total           bigint,
	aadhaar_base        bigint,
	age_mismatch_score  double precision,
	cluster_id          integer,
	cluster_name        text,
	created_at          timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS district_afi_data_score_idx ON district_afi_data (afi_composite_score DESC);
`

// Open connects to PostgreSQL. Returns nil if the URL is empty.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
