// Package history provides the append-only quote history and the
// trailing-average price index backed by SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidRecord = errors.New("invalid history record")
)

// Config holds the matching parameters for the price index.
type Config struct {
	// WeightTolerancePct is the ± band around the query weight, in percent.
	WeightTolerancePct float64
	// WindowMonths is the trailing lookup window.
	WindowMonths int
}

// DefaultConfig returns the default index settings.
func DefaultConfig() Config {
	return Config{
		WeightTolerancePct: 10,
		WindowMonths:       12,
	}
}

// SQLiteStore implements service.HistoryStore using SQLite. The single
// write connection serializes appends from concurrent pricing runs.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	config Config
	now    func() time.Time
}

// NewSQLiteStore creates a new SQLite history store instance.
func NewSQLiteStore(dbPath string, cfg Config) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	if cfg.WeightTolerancePct <= 0 {
		cfg.WeightTolerancePct = DefaultConfig().WeightTolerancePct
	}
	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = DefaultConfig().WindowMonths
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and a single
	// connection keeps appends atomic across runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		config: cfg,
		now:    time.Now,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append durably records one completed quote. The append commits before
// returning so the run can report success only once the row is durable.
func (s *SQLiteStore) Append(ctx context.Context, record model.HistoricalQuoteRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quote_history (
			booked_at, carrier, tariff,
			origin_zip, origin_prefix, dest_zip, dest_prefix,
			weight, freight_class, cost, price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.BookedAt, record.Carrier, record.Tariff,
		record.OriginZip, record.OriginPrefix, record.DestZip, record.DestPrefix,
		record.Weight, record.FreightClass,
		record.Cost.String(), record.Price.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// AveragePrice returns the mean realized price over records matching the
// query lane at 3-digit-prefix granularity, with an exact freight-class
// match, weight within the configured tolerance band, booked within the
// trailing window. Rows with unparsable prices are skipped, never fatal.
func (s *SQLiteStore) AveragePrice(ctx context.Context, q model.HistoricalQuery) (*decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(q.FreightClass, "freightClass"); err != nil {
		return nil, err
	}

	tolerance := q.Weight * s.config.WeightTolerancePct / 100
	cutoff := s.now().AddDate(0, -s.config.WindowMonths, 0)

	rows, err := s.db.QueryContext(ctx, `
		SELECT price FROM quote_history
		WHERE origin_prefix = ?
		  AND dest_prefix = ?
		  AND freight_class = ?
		  AND weight BETWEEN ? AND ?
		  AND booked_at >= ?`,
		model.ZipPrefix(q.OriginZip),
		model.ZipPrefix(q.DestZip),
		q.FreightClass,
		q.Weight-tolerance, q.Weight+tolerance,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sum := decimal.Zero
	count := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			slog.Warn("Skipping unreadable history row", "error", err)
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			slog.Warn("Skipping malformed history price", "price", raw, "error", err)
			continue
		}
		sum = sum.Add(price)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	if count == 0 {
		return nil, nil
	}

	avg := sum.Div(decimal.NewFromInt(int64(count))).Round(2)
	return &avg, nil
}

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if s == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRecord(r model.HistoricalQuoteRecord) error {
	switch {
	case r.Carrier == "":
		return fmt.Errorf("%w: carrier", ErrInvalidRecord)
	case r.Tariff == "":
		return fmt.Errorf("%w: tariff", ErrInvalidRecord)
	case r.OriginPrefix == "" || r.DestPrefix == "":
		return fmt.Errorf("%w: lane", ErrInvalidRecord)
	case r.Weight <= 0:
		return fmt.Errorf("%w: weight", ErrInvalidRecord)
	case r.FreightClass == "":
		return fmt.Errorf("%w: freight class", ErrInvalidRecord)
	case !r.Price.IsPositive():
		return fmt.Errorf("%w: price", ErrInvalidRecord)
	case r.BookedAt.IsZero():
		return fmt.Errorf("%w: booked date", ErrInvalidRecord)
	}
	return nil
}
