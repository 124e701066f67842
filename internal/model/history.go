package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoricalQuoteRecord is one row of the append-only quote history.
// Lane zips are stored both in full and at 3-digit-prefix granularity so
// the index can match lanes without string slicing at query time.
type HistoricalQuoteRecord struct {
	BookedAt     time.Time
	Carrier      string
	Tariff       string
	OriginZip    string
	OriginPrefix string
	DestZip      string
	DestPrefix   string
	Weight       float64
	FreightClass string
	Cost         decimal.Decimal
	Price        decimal.Decimal
}

// NewHistoryRecord builds the history row for a completed quote.
func NewHistoryRecord(q FinalQuote, req ShipmentRequest) HistoricalQuoteRecord {
	return HistoricalQuoteRecord{
		BookedAt:     q.QuotedAt,
		Carrier:      q.Carrier,
		Tariff:       q.Tariff,
		OriginZip:    req.Origin.PostalCode,
		OriginPrefix: ZipPrefix(req.Origin.PostalCode),
		DestZip:      req.Destination.PostalCode,
		DestPrefix:   ZipPrefix(req.Destination.PostalCode),
		Weight:       req.TotalWeight(),
		FreightClass: req.PrimaryClass(),
		Cost:         q.Cost,
		Price:        q.Price,
	}
}

// HistoricalQuery describes one lane lookup against the price index.
type HistoricalQuery struct {
	OriginZip    string
	DestZip      string
	Weight       float64
	FreightClass string
}
