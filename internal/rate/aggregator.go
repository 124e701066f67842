// Package rate aggregates per-tariff carrier quotes into a best cost.
package rate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/freightwise/rateshop/internal/carrier"
	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/model"
	"github.com/freightwise/rateshop/internal/service"

	"github.com/shopspring/decimal"
)

// Config holds aggregation settings.
type Config struct {
	// CallTimeout bounds each individual carrier call.
	CallTimeout time.Duration
	// MaxConcurrent caps in-flight calls per aggregation.
	MaxConcurrent int
	// RetryAttempts is the total attempts per call; 1 means no retry.
	// Only transport failures are retried.
	RetryAttempts int
}

// DefaultConfig returns the default aggregation settings.
func DefaultConfig() Config {
	return Config{
		CallTimeout:   30 * time.Second,
		MaxConcurrent: 4,
		RetryAttempts: 1,
	}
}

// Aggregator fans quote calls out across a carrier's permitted tariffs and
// selects the cheapest valid response.
type Aggregator struct {
	adapter carrier.Adapter
	config  Config
}

// New creates an aggregator for one carrier adapter.
func New(adapter carrier.Adapter, cfg Config) *Aggregator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig().CallTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	return &Aggregator{adapter: adapter, config: cfg}
}

// BestRate is the winning tariff and cost for one carrier.
type BestRate struct {
	Tariff string
	Cost   decimal.Decimal
}

// BestCost quotes every permitted tariff concurrently and returns the
// minimum strictly-positive cost, with ties broken by tariff name
// ascending. A nil BestRate means no tariff produced a valid cost; the
// per-tariff results are returned alongside for observability.
func (a *Aggregator) BestCost(ctx context.Context, tariffs map[string]model.TariffAccount, req model.ShipmentRequest) (*BestRate, []model.CarrierQuoteResult) {
	if len(tariffs) == 0 {
		return nil, nil
	}

	results := make([]model.CarrierQuoteResult, 0, len(tariffs))
	resultCh := make(chan model.CarrierQuoteResult, len(tariffs))
	sem := make(chan struct{}, a.config.MaxConcurrent)

	var wg sync.WaitGroup
	for name, account := range tariffs {
		wg.Add(1)
		go func(name string, account model.TariffAccount) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resultCh <- a.quoteOne(ctx, name, account, req)
		}(name, account)
	}
	wg.Wait()
	close(resultCh)

	for r := range resultCh {
		results = append(results, r)
	}

	var best *BestRate
	for _, r := range results {
		if !r.OK() {
			slog.Debug("Tariff produced no quote",
				"carrier", r.Carrier,
				"tariff", r.Tariff,
				"error", r.Err)
			continue
		}
		switch {
		case best == nil,
			r.Cost.LessThan(best.Cost),
			r.Cost.Equal(best.Cost) && r.Tariff < best.Tariff:
			best = &BestRate{Tariff: r.Tariff, Cost: r.Cost}
		}
	}

	return best, results
}

// quoteOne runs a single bounded carrier call, retrying transport failures
// when configured to.
func (a *Aggregator) quoteOne(ctx context.Context, name string, account model.TariffAccount, req model.ShipmentRequest) model.CarrierQuoteResult {
	result := model.CarrierQuoteResult{Carrier: a.adapter.Carrier(), Tariff: name}

	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
		defer cancel()

		cost, err := a.adapter.Quote(callCtx, account, req)
		if err != nil {
			return err
		}
		result.Cost = cost
		return nil
	}, service.RetryOptions{MaxAttempts: a.config.RetryAttempts})
	if err != nil {
		result.Err = common.NewQuoteError(result.Carrier, name, err)
	}

	return result
}
