package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

// daylightAdapter speaks the Daylight JSON rate API. The API key travels
// as a query parameter and the response carries an explicit status
// enumeration: PASS, WARNING, or FAIL.
type daylightAdapter struct {
	httpClient *http.Client
	endpoint   string
}

func newDaylightAdapter(cfg Config) (Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: daylight endpoint", common.ErrMissingConfig)
	}
	return &daylightAdapter{
		endpoint:   cfg.Endpoint,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

func (a *daylightAdapter) Carrier() string { return Daylight }

type daylightRequest struct {
	OriginZip      string         `json:"originZip"`
	DestinationZip string         `json:"destinationZip"`
	Items          []daylightItem `json:"items"`
}

type daylightItem struct {
	FreightClass string  `json:"freightClass"`
	Weight       float64 `json:"weight"`
	Pieces       int     `json:"pieces"`
}

type daylightResponse struct {
	Status    string   `json:"status"`
	Messages  []string `json:"messages"`
	NetCharge string   `json:"netCharge"`
}

func (a *daylightAdapter) Quote(ctx context.Context, account model.TariffAccount, req model.ShipmentRequest) (decimal.Decimal, error) {
	if account.APIKey == "" {
		return decimal.Zero, fmt.Errorf("%w: daylight requires an API key", common.ErrCredential)
	}

	items := make([]daylightItem, len(req.Commodities))
	for i, c := range req.Commodities {
		pieces := c.Pieces
		if pieces == 0 {
			pieces = 1
		}
		items[i] = daylightItem{FreightClass: c.FreightClass, Weight: c.Weight, Pieces: pieces}
	}

	body, err := json.Marshal(daylightRequest{
		OriginZip:      req.Origin.PostalCode,
		DestinationZip: req.Destination.PostalCode,
		Items:          items,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint, err := url.Parse(a.endpoint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: daylight endpoint: %v", common.ErrInvalidConfig, err)
	}
	query := endpoint.Query()
	query.Set("apikey", account.APIKey)
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(string(body)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: daylight returned status %d", common.ErrNetwork, resp.StatusCode)
	}

	var parsed daylightResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("%w: unparsable response: %v", common.ErrInvalidResponse, err)
	}

	switch strings.ToUpper(parsed.Status) {
	case "PASS":
	case "WARNING":
		// Advisory only; the quote still rates.
		slog.Warn("Daylight returned quote with warnings",
			"tariff", account.Name,
			"messages", parsed.Messages)
	case "FAIL":
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrCarrierRejected, strings.Join(parsed.Messages, "; "))
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown status %q", common.ErrInvalidResponse, parsed.Status)
	}

	return parseCharge(parsed.NetCharge)
}
