package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"bidpack_parser/internal/analysis"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for trip analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS trip_occurrences (
		fleet           LowCardinality(String),
		bid_month       UInt8,
		bid_year        UInt16,
		trip_number     String,
		base            LowCardinality(String),
		length          UInt8,
		occurrences     UInt16,
		credit          Float64,
		has_redeye      UInt8,
		report_minutes  Int32,
		release_minutes Int32,
		leg_count       UInt16,
		detail_json     String,
		raw_text        String,
		created_at      DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY (bid_year, bid_month)
	ORDER BY (fleet, base, length, trip_number)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Bloom filter index for raw-text search (ignore error if already exists).
	_ = d.conn.Exec(ctx, `ALTER TABLE trip_occurrences ADD INDEX IF NOT EXISTS idx_raw_text_bloom raw_text TYPE tokenbf_v1(32768, 3, 0) GRANULARITY 1`)

	return nil
}

// InsertDetails stores a batch of trip details for one package.
func (d *ClickHouseDB) InsertDetails(ctx context.Context, fleet string, month time.Month, year int, details []analysis.TripDetail) error {
	if len(details) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO trip_occurrences (fleet, bid_month, bid_year, trip_number, base, length, occurrences, credit, has_redeye, report_minutes, release_minutes, leg_count, detail_json, raw_text)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, det := range details {
		detailJSON, err := json.Marshal(det)
		if err != nil {
			return fmt.Errorf("marshal detail: %w", err)
		}
		credit := 0.0
		if det.Credit != nil {
			credit, _ = det.Credit.Float64()
		}
		err = batch.Append(fleet, uint8(month), uint16(year), det.TripNumber, det.Base,
			uint8(det.Length), uint16(det.Occurrences), credit, boolToUint8(det.HasRedEye),
			int32(det.ReportMinutes), int32(det.ReleaseMinutes), uint16(len(det.Legs)),
			string(detailJSON), det.Raw)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// BaseTotal is one base's occurrence total for a bid month.
type BaseTotal struct {
	Base        string
	Occurrences uint64
}

// OccurrencesByBase sums stored trip occurrences per base for one fleet
// and month.
func (d *ClickHouseDB) OccurrencesByBase(ctx context.Context, fleet string, month time.Month, year int) ([]BaseTotal, error) {
	rows, err := d.conn.Query(ctx, `
		SELECT base, sum(occurrences) AS total
		FROM trip_occurrences
		WHERE fleet = ? AND bid_month = ? AND bid_year = ?
		GROUP BY base
		ORDER BY total DESC, base
	`, fleet, uint8(month), uint16(year))
	if err != nil {
		return nil, fmt.Errorf("occurrences by base: %w", err)
	}
	defer rows.Close()

	var out []BaseTotal
	for rows.Next() {
		var t BaseTotal
		if err := rows.Scan(&t.Base, &t.Occurrences); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
