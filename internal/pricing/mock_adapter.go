package pricing

import (
	"context"

	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

// mockAdapter is a test double returning canned costs or errors per tariff.
type mockAdapter struct {
	carrierID string
	costs     map[string]decimal.Decimal
	errs      map[string]error
}

func (m *mockAdapter) Carrier() string { return m.carrierID }

func (m *mockAdapter) Quote(_ context.Context, account model.TariffAccount, _ model.ShipmentRequest) (decimal.Decimal, error) {
	if err, ok := m.errs[account.Name]; ok {
		return decimal.Zero, err
	}
	return m.costs[account.Name], nil
}
