package model

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors for shipment input.
var (
	ErrNoCommodities = errors.New("shipment has no commodity lines")
	ErrInvalidWeight = errors.New("commodity weight must be positive")
	ErrMissingZip    = errors.New("postal code is required")
	ErrMissingClass  = errors.New("freight class is required")
)

// Stop describes one end of a lane.
type Stop struct {
	PostalCode string
	City       string
	State      string
	Country    string
}

// CommodityLine is a single rated commodity on a shipment.
type CommodityLine struct {
	Description  string
	FreightClass string
	Weight       float64 // pounds
	Pieces       int
	// Optional; carriers that rate dimensionally require these.
	Length, Width, Height float64 // inches
	Packaging             string
	Stackable             bool
}

// HasDimensions reports whether all three dimensions are set.
func (c CommodityLine) HasDimensions() bool {
	return c.Length > 0 && c.Width > 0 && c.Height > 0
}

// PayerType identifies who pays the freight charges.
type PayerType string

// Payer designations accepted by carriers that require one.
const (
	PayerShipper    PayerType = "Shipper"
	PayerConsignee  PayerType = "Consignee"
	PayerThirdParty PayerType = "ThirdParty"
)

// ShipmentRequest is the canonical rate-quote input passed to every carrier.
type ShipmentRequest struct {
	Origin      Stop
	Destination Stop
	Commodities []CommodityLine
	Payer       PayerType
}

// Validate checks the structural invariants every carrier depends on.
// A request failing here is a fatal input error, not a degradable one.
func (r ShipmentRequest) Validate() error {
	if strings.TrimSpace(r.Origin.PostalCode) == "" {
		return fmt.Errorf("origin: %w", ErrMissingZip)
	}
	if strings.TrimSpace(r.Destination.PostalCode) == "" {
		return fmt.Errorf("destination: %w", ErrMissingZip)
	}
	if len(r.Commodities) == 0 {
		return ErrNoCommodities
	}
	for i, c := range r.Commodities {
		if c.Weight <= 0 {
			return fmt.Errorf("commodity %d: %w", i, ErrInvalidWeight)
		}
		if strings.TrimSpace(c.FreightClass) == "" {
			return fmt.Errorf("commodity %d: %w", i, ErrMissingClass)
		}
	}
	return nil
}

// TotalWeight sums the weight of all commodity lines.
func (r ShipmentRequest) TotalWeight() float64 {
	var total float64
	for _, c := range r.Commodities {
		total += c.Weight
	}
	return total
}

// PrimaryClass returns the freight class of the heaviest commodity line,
// used as the class key for historical lane matching.
func (r ShipmentRequest) PrimaryClass() string {
	var class string
	var heaviest float64
	for _, c := range r.Commodities {
		if c.Weight > heaviest {
			heaviest = c.Weight
			class = c.FreightClass
		}
	}
	return class
}

// ZipPrefix returns the first 3 digits of a postal code, the granularity
// used for lane comparison.
func ZipPrefix(zip string) string {
	zip = strings.TrimSpace(zip)
	if len(zip) <= 3 {
		return zip
	}
	return zip[:3]
}
