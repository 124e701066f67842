// Package carrier implements the per-carrier rate quote adapters.
//
// Each adapter translates the canonical ShipmentRequest plus a tariff
// account's credentials into that carrier's wire protocol, issues one
// synchronous call, and parses the response into a cost or a classified
// failure. Adapters never abort a run: every failure maps onto the
// taxonomy in internal/common and degrades to "no quote from this tariff".
package carrier

import (
	"context"
	"net/http"
	"time"

	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

// Carrier ids. The factory dispatches on these and they key the
// carriers.<id>.endpoint configuration.
const (
	Estes    = "estes"
	Daylight = "daylight"
	Saia     = "saia"
)

// All lists every supported carrier id.
var All = []string{Estes, Daylight, Saia}

// Adapter is the contract every carrier implements.
type Adapter interface {
	// Carrier returns the adapter's carrier id.
	Carrier() string

	// Quote rates one shipment on one tariff account. The returned cost is
	// always strictly positive; any other outcome is a classified error.
	Quote(ctx context.Context, account model.TariffAccount, req model.ShipmentRequest) (decimal.Decimal, error)
}

// Config holds per-adapter settings supplied from configuration.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

const defaultTimeout = 30 * time.Second

// newHTTPClient builds the shared HTTP client shape used by all adapters.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
