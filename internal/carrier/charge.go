package carrier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/freightwise/rateshop/internal/common"

	"github.com/shopspring/decimal"
)

// parseCharge converts a carrier-formatted charge string into a strictly
// positive fixed-point decimal. Carriers format charges inconsistently:
// "$1,234.56", "1234.56 USD", "1,234.56". Anything non-positive or
// unparsable classifies as an invalid response.
func parseCharge(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty charge", common.ErrInvalidResponse)
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "USD")
	s = strings.TrimPrefix(s, "USD")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: unparsable charge %q", common.ErrInvalidResponse, raw)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive charge %q", common.ErrInvalidResponse, raw)
	}
	return d, nil
}

// classifyTransportError maps an http.Client error onto the failure
// taxonomy, distinguishing deadline expiry from other transport failures.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", common.ErrNetwork, err)
}
