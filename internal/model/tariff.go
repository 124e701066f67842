package model

// TariffAccount is a named carrier credential bundle with its margin.
// Accounts are loaded from configuration once and treated as immutable for
// the duration of a pricing run.
type TariffAccount struct {
	Carrier string // carrier id, e.g. "estes", "daylight", "saia"
	Name    string // unique tariff/account name

	// Auth material; which fields are required depends on the carrier.
	APIKey         string
	Username       string
	Password       string
	AccessCode     string
	CustomerNumber string

	// Margin is the markup percentage applied to carrier cost,
	// 0 <= Margin < 100.
	Margin float64

	// Optional free-form metadata (contract number, notes).
	Metadata map[string]string
}
