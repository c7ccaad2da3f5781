package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool for bid-package state.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	-- One row per received bid package (a month's trip text for one fleet).
	CREATE TABLE IF NOT EXISTS bid_packages (
		id              SERIAL PRIMARY KEY,
		source          TEXT NOT NULL,
		fleet           TEXT NOT NULL,
		bid_month       INTEGER NOT NULL,
		bid_year        INTEGER NOT NULL,
		raw_text        TEXT NOT NULL,
		trip_count      INTEGER NOT NULL DEFAULT 0,
		received_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		analyzed_at     TIMESTAMPTZ,
		UNIQUE(source, fleet, bid_month, bid_year)
	);

	CREATE INDEX IF NOT EXISTS idx_bid_packages_month ON bid_packages(bid_year, bid_month);
	CREATE INDEX IF NOT EXISTS idx_bid_packages_fleet ON bid_packages(fleet);

	-- One row per analysis pass over a package, with its full result.
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id              SERIAL PRIMARY KEY,
		package_id      INTEGER NOT NULL REFERENCES bid_packages(id) ON DELETE CASCADE,
		base_filter     TEXT NOT NULL,
		front_minutes   INTEGER NOT NULL,
		back_minutes    INTEGER NOT NULL,
		result          JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_runs_package ON analysis_runs(package_id);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_created ON analysis_runs(created_at);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

// BidPackage is a stored bid package's metadata.
type BidPackage struct {
	ID         int
	Source     string
	Fleet      string
	BidMonth   int
	BidYear    int
	TripCount  int
	ReceivedAt time.Time
	AnalyzedAt *time.Time
}

// UpsertPackage stores a bid package, replacing the text of an existing
// package with the same source, fleet and month. Returns its row id.
func (d *PostgresDB) UpsertPackage(ctx context.Context, source, fleet string, month time.Month, year int, rawText string) (int, error) {
	var id int
	err := d.pool.QueryRow(ctx, `
		INSERT INTO bid_packages (source, fleet, bid_month, bid_year, raw_text)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, fleet, bid_month, bid_year)
		DO UPDATE SET raw_text = EXCLUDED.raw_text, received_at = NOW(), analyzed_at = NULL
		RETURNING id
	`, source, fleet, int(month), year, rawText).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert package: %w", err)
	}
	return id, nil
}

// MarkAnalyzed records that a package was analyzed and how many trips it
// produced.
func (d *PostgresDB) MarkAnalyzed(ctx context.Context, packageID, tripCount int) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE bid_packages SET analyzed_at = NOW(), trip_count = $2 WHERE id = $1
	`, packageID, tripCount)
	if err != nil {
		return fmt.Errorf("mark analyzed: %w", err)
	}
	return nil
}

// RecordRun stores one analysis result for a package.
func (d *PostgresDB) RecordRun(ctx context.Context, packageID int, baseFilter string, frontMinutes, backMinutes int, result interface{}) (int, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("marshal result: %w", err)
	}

	var id int
	err = d.pool.QueryRow(ctx, `
		INSERT INTO analysis_runs (package_id, base_filter, front_minutes, back_minutes, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, packageID, baseFilter, frontMinutes, backMinutes, payload).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recent analysis result payload for a package,
// or nil when the package has never been analyzed.
func (d *PostgresDB) LatestRun(ctx context.Context, packageID int) ([]byte, error) {
	var payload []byte
	err := d.pool.QueryRow(ctx, `
		SELECT result FROM analysis_runs
		WHERE package_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, packageID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return payload, nil
}

// ListPackages returns all stored packages, newest first.
func (d *PostgresDB) ListPackages(ctx context.Context) ([]BidPackage, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, source, fleet, bid_month, bid_year, trip_count, received_at, analyzed_at
		FROM bid_packages
		ORDER BY received_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var out []BidPackage
	for rows.Next() {
		var p BidPackage
		if err := rows.Scan(&p.ID, &p.Source, &p.Fleet, &p.BidMonth, &p.BidYear,
			&p.TripCount, &p.ReceivedAt, &p.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
