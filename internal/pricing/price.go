package pricing

import (
	"fmt"

	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// StandardPrice computes the margin-floor sell price cost/(1 - margin/100),
// rounded to 2 decimals. Margins at or above 100% are undefined.
func StandardPrice(cost decimal.Decimal, margin float64) (decimal.Decimal, error) {
	if margin < 0 || margin >= 100 {
		return decimal.Zero, fmt.Errorf("%w: margin %.2f%% out of range", common.ErrCalculation, margin)
	}
	if !cost.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive cost", common.ErrCalculation)
	}

	divisor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(margin).Div(hundred))
	return cost.DivRound(divisor, 2), nil
}

// Price combines the margin formula with the historical lane average.
// When both exist the higher wins, so the quote never undercuts either the
// margin floor or recent realized pricing. With neither available the
// carrier gets no quote.
func Price(cost decimal.Decimal, margin float64, historicalAvg *decimal.Decimal) (decimal.Decimal, model.PriceSource, error) {
	standard, stdErr := StandardPrice(cost, margin)
	hasStandard := stdErr == nil
	hasHistorical := historicalAvg != nil && historicalAvg.IsPositive()

	switch {
	case hasStandard && hasHistorical:
		if historicalAvg.GreaterThan(standard) {
			return historicalAvg.Round(2), model.SourceHistorical, nil
		}
		return standard, model.SourceStandard, nil
	case hasStandard:
		return standard, model.SourceStandard, nil
	case hasHistorical:
		return historicalAvg.Round(2), model.SourceHistorical, nil
	default:
		return decimal.Zero, "", fmt.Errorf("%w: no pricing source available", common.ErrCalculation)
	}
}
