package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CarrierQuoteResult is the outcome of one per-tariff quote call.
// Either Cost is a positive decimal or Err classifies the failure.
// Results are ephemeral, scoped to a single aggregation.
type CarrierQuoteResult struct {
	Carrier string
	Tariff  string
	Cost    decimal.Decimal
	Err     error
}

// OK reports whether this result carries a usable cost.
func (r CarrierQuoteResult) OK() bool {
	return r.Err == nil && r.Cost.IsPositive()
}

// PriceSource identifies which pricing input won the final price.
type PriceSource string

// Pricing rationale values recorded on a FinalQuote.
const (
	SourceStandard   PriceSource = "standard-margin"
	SourceHistorical PriceSource = "historical-average"
)

// FinalQuote is the customer-facing output of one pricing run for one
// carrier. It is persisted to the history log.
type FinalQuote struct {
	Carrier   string
	Tariff    string
	Cost      decimal.Decimal
	Price     decimal.Decimal
	Rationale PriceSource
	QuotedAt  time.Time
}
