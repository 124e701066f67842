// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

// HistoryStore defines the contract for the append-only quote history and
// its trailing-average price index.
type HistoryStore interface {
	// Append durably records one completed quote. Appends from concurrent
	// pricing runs are serialized by the implementation.
	Append(ctx context.Context, record model.HistoricalQuoteRecord) error

	// AveragePrice returns the mean realized price of historical quotes
	// matching the query's lane, class, and weight band within the trailing
	// window, rounded to 2 decimals. A nil result means no match.
	AveragePrice(ctx context.Context, q model.HistoricalQuery) (*decimal.Decimal, error)

	// Migrate brings the backing schema up to date.
	Migrate(ctx context.Context) error

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
