// Package pricing implements the quote pricing engine that orchestrates
// permission resolution, rate aggregation, historical lookups, and the
// final sell-price computation.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/freightwise/rateshop/internal/carrier"
	"github.com/freightwise/rateshop/internal/model"
	"github.com/freightwise/rateshop/internal/permission"
	"github.com/freightwise/rateshop/internal/rate"
	"github.com/freightwise/rateshop/internal/service"

	"golang.org/x/sync/errgroup"
)

// Context is the immutable per-run pricing context: everything a run needs,
// built once from configuration and passed through every call.
type Context struct {
	// Tariffs maps carrier id to that carrier's full tariff set by name.
	Tariffs map[string]map[string]model.TariffAccount
	// Allowed maps carrier id to the customer's tariff allow-list.
	Allowed map[string][]string
	// Adapters maps carrier id to its wire adapter.
	Adapters map[string]carrier.Adapter
	// Aggregation carries per-call timeout, concurrency, and retry settings.
	Aggregation rate.Config
}

// Engine prices shipments across all configured carriers.
type Engine struct {
	history service.HistoryStore
	now     func() time.Time
}

// New creates a pricing engine backed by the given history store.
func New(history service.HistoryStore) *Engine {
	return &Engine{history: history, now: time.Now}
}

// Skip records why a carrier produced no quote.
type Skip struct {
	Carrier string
	Reason  string
}

// Result is the outcome of one pricing run: a FinalQuote per carrier that
// rated, plus the carriers that were skipped and why.
type Result struct {
	Quotes  []model.FinalQuote
	Skipped []Skip
}

// Shop prices one shipment across every carrier in the pricing context.
// Carriers run concurrently; each carrier's pipeline is the straight-line
// sequence permission -> aggregate -> historical lookup -> price -> log.
// Per-carrier failures degrade to a skip and never abort the run. Only a
// structurally invalid request is a fatal error.
func (e *Engine) Shop(ctx context.Context, pctx Context, req model.ShipmentRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid shipment request: %w", err)
	}

	slog.Info("Starting pricing run",
		"origin", req.Origin.PostalCode,
		"destination", req.Destination.PostalCode,
		"weight", req.TotalWeight(),
		"carriers", len(pctx.Adapters))

	type outcome struct {
		quote *model.FinalQuote
		skip  *Skip
	}
	outcomes := make([]outcome, len(pctx.Adapters))

	carrierIDs := make([]string, 0, len(pctx.Adapters))
	for id := range pctx.Adapters {
		carrierIDs = append(carrierIDs, id)
	}
	sort.Strings(carrierIDs)

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range carrierIDs {
		i, id := i, id
		g.Go(func() error {
			quote, skipReason := e.priceCarrier(gctx, pctx, id, req)
			if quote != nil {
				outcomes[i] = outcome{quote: quote}
			} else {
				outcomes[i] = outcome{skip: &Skip{Carrier: id, Reason: skipReason}}
			}
			return nil
		})
	}
	// Workers never return errors; the group is joined for the barrier and
	// context propagation only.
	_ = g.Wait()

	var result Result
	for _, o := range outcomes {
		if o.quote != nil {
			result.Quotes = append(result.Quotes, *o.quote)
		} else if o.skip != nil {
			result.Skipped = append(result.Skipped, *o.skip)
		}
	}

	// Appends are serialized and must be durable before the run reports
	// success.
	for _, q := range result.Quotes {
		record := model.NewHistoryRecord(q, req)
		if err := e.history.Append(ctx, record); err != nil {
			return result, fmt.Errorf("failed to append history record for %s: %w", q.Carrier, err)
		}
	}

	slog.Info("Pricing run complete",
		"quotes", len(result.Quotes),
		"skipped", len(result.Skipped))

	return result, nil
}

// priceCarrier runs the per-carrier pipeline. A nil quote means the
// carrier is skipped for the returned reason.
func (e *Engine) priceCarrier(ctx context.Context, pctx Context, carrierID string, req model.ShipmentRequest) (*model.FinalQuote, string) {
	adapter := pctx.Adapters[carrierID]

	permitted := permission.Resolve(pctx.Tariffs[carrierID], pctx.Allowed[carrierID])
	if len(permitted) == 0 {
		return nil, "no permitted tariffs"
	}

	aggregator := rate.New(adapter, pctx.Aggregation)
	best, results := aggregator.BestCost(ctx, permitted, req)
	if best == nil {
		for _, r := range results {
			if r.Err != nil {
				slog.Warn("Tariff skipped", "error", r.Err)
			}
		}
		return nil, "no rate available"
	}

	margin := permitted[best.Tariff].Margin

	avg, err := e.history.AveragePrice(ctx, model.HistoricalQuery{
		OriginZip:    req.Origin.PostalCode,
		DestZip:      req.Destination.PostalCode,
		Weight:       req.TotalWeight(),
		FreightClass: req.PrimaryClass(),
	})
	if err != nil {
		// The index is advisory; pricing falls back to the margin formula.
		slog.Warn("Historical price lookup failed", "carrier", carrierID, "error", err)
		avg = nil
	}

	price, rationale, err := Price(best.Cost, margin, avg)
	if err != nil {
		slog.Warn("Pricing failed for carrier", "carrier", carrierID, "error", err)
		return nil, err.Error()
	}

	slog.Info("Carrier priced",
		"carrier", carrierID,
		"tariff", best.Tariff,
		"cost", best.Cost,
		"price", price,
		"rationale", rationale)

	return &model.FinalQuote{
		Carrier:   carrierID,
		Tariff:    best.Tariff,
		Cost:      best.Cost,
		Price:     price,
		Rationale: rationale,
		QuotedAt:  e.now(),
	}, ""
}
