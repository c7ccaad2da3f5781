// Package storage persists analyzed bid-package trips.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bidpack_parser/internal/analysis"
)

// TripRow is a stored trip record with its full detail payload.
type TripRow struct {
	ID             int64
	TripNumber     string
	Base           string
	BidMonth       int
	BidYear        int
	Length         int
	Occurrences    int
	Credit         string // decimal hours as text, empty when unknown
	HasRedEye      bool
	ReportMinutes  int
	ReleaseMinutes int
	DetailJSON     string
	RawText        string
	CreatedAt      string
}

// SQLiteDB wraps a local SQLite database for trip storage.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS trips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_number TEXT NOT NULL,
		base TEXT NOT NULL,
		bid_month INTEGER NOT NULL,
		bid_year INTEGER NOT NULL,
		length INTEGER NOT NULL,
		occurrences INTEGER NOT NULL,
		credit TEXT,
		has_redeye INTEGER NOT NULL DEFAULT 0,
		report_minutes INTEGER,
		release_minutes INTEGER,
		detail_json TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_trips_base ON trips(base);
	CREATE INDEX IF NOT EXISTS idx_trips_length ON trips(length);
	CREATE INDEX IF NOT EXISTS idx_trips_month ON trips(bid_year, bid_month);
	CREATE INDEX IF NOT EXISTS idx_trips_number ON trips(trip_number);

	-- FTS5 virtual table for full-text search on raw trip text.
	CREATE VIRTUAL TABLE IF NOT EXISTS trips_fts USING fts5(
		raw_text,
		content='trips',
		content_rowid='id'
	);

	-- Triggers to keep FTS index in sync.
	CREATE TRIGGER IF NOT EXISTS trips_ai AFTER INSERT ON trips BEGIN
		INSERT INTO trips_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS trips_ad AFTER DELETE ON trips BEGIN
		INSERT INTO trips_fts(trips_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS trips_au AFTER UPDATE ON trips BEGIN
		INSERT INTO trips_fts(trips_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
		INSERT INTO trips_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;
	`

	_, err := db.Exec(schema)
	return err
}

// InsertDetails stores a batch of trip details in one transaction.
func (d *SQLiteDB) InsertDetails(month time.Month, year int, details []analysis.TripDetail) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO trips (trip_number, base, bid_month, bid_year, length, occurrences,
			credit, has_redeye, report_minutes, release_minutes, detail_json, raw_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, det := range details {
		detailJSON, err := json.Marshal(det)
		if err != nil {
			return fmt.Errorf("marshal detail: %w", err)
		}
		credit := ""
		if det.Credit != nil {
			credit = det.Credit.String()
		}
		if _, err := stmt.Exec(det.TripNumber, det.Base, int(month), year, det.Length,
			det.Occurrences, credit, boolToInt(det.HasRedEye), det.ReportMinutes,
			det.ReleaseMinutes, string(detailJSON), det.Raw); err != nil {
			return fmt.Errorf("insert trip %s: %w", det.TripNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TripQuery contains filtering options for querying stored trips.
type TripQuery struct {
	Base       string
	Length     int
	TripNumber string
	BidMonth   int
	BidYear    int
	FullText   string // FTS5 match query against raw trip text
	Limit      int
	Offset     int
}

// QueryTrips retrieves stored trips matching the given filters, newest
// first.
func (d *SQLiteDB) QueryTrips(q TripQuery) ([]TripRow, error) {
	var conditions []string
	var args []interface{}

	query := "SELECT t.id, t.trip_number, t.base, t.bid_month, t.bid_year, t.length, t.occurrences, t.credit, t.has_redeye, t.report_minutes, t.release_minutes, t.detail_json, t.raw_text, t.created_at FROM trips t"

	if q.FullText != "" {
		query += " JOIN trips_fts f ON f.rowid = t.id"
		conditions = append(conditions, "trips_fts MATCH ?")
		args = append(args, q.FullText)
	}
	if q.Base != "" {
		conditions = append(conditions, "t.base = ?")
		args = append(args, q.Base)
	}
	if q.Length != 0 {
		conditions = append(conditions, "t.length = ?")
		args = append(args, q.Length)
	}
	if q.TripNumber != "" {
		conditions = append(conditions, "t.trip_number LIKE ?")
		args = append(args, "%"+q.TripNumber+"%")
	}
	if q.BidMonth != 0 {
		conditions = append(conditions, "t.bid_month = ?")
		args = append(args, q.BidMonth)
	}
	if q.BidYear != 0 {
		conditions = append(conditions, "t.bid_year = ?")
		args = append(args, q.BidYear)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.id DESC"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var out []TripRow
	for rows.Next() {
		var r TripRow
		var redeye int
		var credit sql.NullString
		var report, release sql.NullInt64
		if err := rows.Scan(&r.ID, &r.TripNumber, &r.Base, &r.BidMonth, &r.BidYear,
			&r.Length, &r.Occurrences, &credit, &redeye, &report, &release,
			&r.DetailJSON, &r.RawText, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		r.Credit = credit.String
		r.HasRedEye = redeye != 0
		r.ReportMinutes = nullMinutes(report)
		r.ReleaseMinutes = nullMinutes(release)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByBase returns stored trip occurrence totals per base.
func (d *SQLiteDB) CountByBase() (map[string]int, error) {
	rows, err := d.db.Query("SELECT base, SUM(occurrences) FROM trips GROUP BY base")
	if err != nil {
		return nil, fmt.Errorf("count by base: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var base string
		var n int
		if err := rows.Scan(&base, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[base] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullMinutes(n sql.NullInt64) int {
	if !n.Valid {
		return -1
	}
	return int(n.Int64)
}
