package pricing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/freightwise/rateshop/internal/carrier"
	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/history"
	"github.com/freightwise/rateshop/internal/model"
	"github.com/freightwise/rateshop/internal/rate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *history.SQLiteStore {
	t.Helper()

	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), history.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testShipment() model.ShipmentRequest {
	return model.ShipmentRequest{
		Origin:      model.Stop{PostalCode: "30301", City: "Atlanta", State: "GA"},
		Destination: model.Stop{PostalCode: "90210", City: "Beverly Hills", State: "CA"},
		Commodities: []model.CommodityLine{
			{FreightClass: "70", Weight: 500, Length: 48, Width: 40, Height: 36},
		},
		Payer: model.PayerShipper,
	}
}

func singleCarrierContext(adapter carrier.Adapter, margin float64) Context {
	id := adapter.Carrier()
	return Context{
		Tariffs: map[string]map[string]model.TariffAccount{
			id: {"STANDARD": {Carrier: id, Name: "STANDARD", Margin: margin}},
		},
		Allowed:     map[string][]string{id: {"STANDARD"}},
		Adapters:    map[string]carrier.Adapter{id: adapter},
		Aggregation: rate.DefaultConfig(),
	}
}

func seedHistory(t *testing.T, store *history.SQLiteStore, price string) {
	t.Helper()
	require.NoError(t, store.Append(context.Background(), model.HistoricalQuoteRecord{
		BookedAt:     time.Now().AddDate(0, -1, 0),
		Carrier:      "prior",
		Tariff:       "PRIOR",
		OriginZip:    "30301",
		OriginPrefix: "303",
		DestZip:      "90210",
		DestPrefix:   "902",
		Weight:       500,
		FreightClass: "70",
		Cost:         decimal.RequireFromString(price),
		Price:        decimal.RequireFromString(price),
	}))
}

func TestShopStandardPriceWins(t *testing.T) {
	store := newTestHistory(t)
	seedHistory(t, store, "230.00")

	adapter := &mockAdapter{
		carrierID: "mockline",
		costs:     map[string]decimal.Decimal{"STANDARD": decimal.RequireFromString("200.00")},
	}

	engine := New(store)
	result, err := engine.Shop(context.Background(), singleCarrierContext(adapter, 20), testShipment())
	require.NoError(t, err)

	require.Len(t, result.Quotes, 1)
	q := result.Quotes[0]
	assert.Equal(t, "mockline", q.Carrier)
	assert.Equal(t, "STANDARD", q.Tariff)
	assert.Equal(t, "200", q.Cost.String())
	assert.Equal(t, "250", q.Price.String())
	assert.Equal(t, model.SourceStandard, q.Rationale)
}

func TestShopHistoricalPriceWins(t *testing.T) {
	store := newTestHistory(t)
	seedHistory(t, store, "275.00")

	adapter := &mockAdapter{
		carrierID: "mockline",
		costs:     map[string]decimal.Decimal{"STANDARD": decimal.RequireFromString("200.00")},
	}

	engine := New(store)
	result, err := engine.Shop(context.Background(), singleCarrierContext(adapter, 20), testShipment())
	require.NoError(t, err)

	require.Len(t, result.Quotes, 1)
	assert.Equal(t, "275", result.Quotes[0].Price.String())
	assert.Equal(t, model.SourceHistorical, result.Quotes[0].Rationale)
}

func TestShopAppendsHistory(t *testing.T) {
	store := newTestHistory(t)

	adapter := &mockAdapter{
		carrierID: "mockline",
		costs:     map[string]decimal.Decimal{"STANDARD": decimal.RequireFromString("200.00")},
	}

	engine := New(store)
	_, err := engine.Shop(context.Background(), singleCarrierContext(adapter, 20), testShipment())
	require.NoError(t, err)

	// The appended quote must be visible to a subsequent average on the
	// same lane, weight, and class.
	avg, err := store.AveragePrice(context.Background(), model.HistoricalQuery{
		OriginZip:    "30301",
		DestZip:      "90210",
		Weight:       500,
		FreightClass: "70",
	})
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, "250", avg.String())
}

func TestShopDegradesPerCarrier(t *testing.T) {
	store := newTestHistory(t)

	healthy := &mockAdapter{
		carrierID: "healthy",
		costs:     map[string]decimal.Decimal{"STANDARD": decimal.RequireFromString("98.10")},
	}
	down := &mockAdapter{
		carrierID: "down",
		errs:      map[string]error{"STANDARD": common.ErrNetwork},
	}

	pctx := Context{
		Tariffs: map[string]map[string]model.TariffAccount{
			"healthy": {"STANDARD": {Carrier: "healthy", Name: "STANDARD", Margin: 20}},
			"down":    {"STANDARD": {Carrier: "down", Name: "STANDARD", Margin: 20}},
		},
		Allowed: map[string][]string{
			"healthy": {"STANDARD"},
			"down":    {"STANDARD"},
		},
		Adapters: map[string]carrier.Adapter{
			"healthy": healthy,
			"down":    down,
		},
		Aggregation: rate.DefaultConfig(),
	}

	engine := New(store)
	result, err := engine.Shop(context.Background(), pctx, testShipment())
	require.NoError(t, err)

	require.Len(t, result.Quotes, 1)
	assert.Equal(t, "healthy", result.Quotes[0].Carrier)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "down", result.Skipped[0].Carrier)
	assert.Equal(t, "no rate available", result.Skipped[0].Reason)
}

func TestShopNoPermittedTariffs(t *testing.T) {
	store := newTestHistory(t)

	adapter := &mockAdapter{
		carrierID: "mockline",
		costs:     map[string]decimal.Decimal{"STANDARD": decimal.RequireFromString("200.00")},
	}

	pctx := singleCarrierContext(adapter, 20)
	pctx.Allowed["mockline"] = []string{"RENAMED-TARIFF"}

	engine := New(store)
	result, err := engine.Shop(context.Background(), pctx, testShipment())
	require.NoError(t, err)

	assert.Empty(t, result.Quotes)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "no permitted tariffs", result.Skipped[0].Reason)
}

func TestShopInvalidRequestIsFatal(t *testing.T) {
	store := newTestHistory(t)

	adapter := &mockAdapter{carrierID: "mockline"}
	engine := New(store)

	req := testShipment()
	req.Commodities = nil

	_, err := engine.Shop(context.Background(), singleCarrierContext(adapter, 20), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoCommodities)
}

func TestShopBestTariffMarginApplies(t *testing.T) {
	store := newTestHistory(t)

	// Cheapest tariff wins and its margin, not another tariff's, prices
	// the quote.
	adapter := &mockAdapter{
		carrierID: "mockline",
		costs: map[string]decimal.Decimal{
			"EXPENSIVE": decimal.RequireFromString("120.50"),
			"CHEAP":     decimal.RequireFromString("98.10"),
		},
	}

	pctx := Context{
		Tariffs: map[string]map[string]model.TariffAccount{
			"mockline": {
				"EXPENSIVE": {Carrier: "mockline", Name: "EXPENSIVE", Margin: 50},
				"CHEAP":     {Carrier: "mockline", Name: "CHEAP", Margin: 10},
			},
		},
		Allowed:     map[string][]string{"mockline": {"EXPENSIVE", "CHEAP"}},
		Adapters:    map[string]carrier.Adapter{"mockline": adapter},
		Aggregation: rate.DefaultConfig(),
	}

	engine := New(store)
	result, err := engine.Shop(context.Background(), pctx, testShipment())
	require.NoError(t, err)

	require.Len(t, result.Quotes, 1)
	q := result.Quotes[0]
	assert.Equal(t, "CHEAP", q.Tariff)
	// 98.10 / (1 - 0.10) = 109.00
	assert.Equal(t, "109", q.Price.String())
}
