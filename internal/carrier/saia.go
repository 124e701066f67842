package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

// saiaAdapter speaks the Saia JSON rate API. Authentication is an access
// code header plus a customer number in the body; Saia rates dimensionally
// and requires per-item dimensions and a payer designation. Failures come
// back as a non-empty errors array rather than a status enum.
type saiaAdapter struct {
	httpClient *http.Client
	endpoint   string
}

func newSaiaAdapter(cfg Config) (Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: saia endpoint", common.ErrMissingConfig)
	}
	return &saiaAdapter{
		endpoint:   cfg.Endpoint,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

func (a *saiaAdapter) Carrier() string { return Saia }

type saiaRequest struct {
	CustomerNumber string     `json:"customerNumber"`
	Payer          string     `json:"paymentTerms"`
	OriginZip      string     `json:"originZipcode"`
	DestinationZip string     `json:"destinationZipcode"`
	Details        []saiaItem `json:"details"`
}

type saiaItem struct {
	FreightClass string  `json:"class"`
	Weight       float64 `json:"weight"`
	Length       float64 `json:"length"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Stackable    bool    `json:"stackable"`
}

type saiaResponse struct {
	Errors      []saiaError `json:"errors"`
	RateDetails *struct {
		NetCharge string `json:"netCharge"`
	} `json:"rateDetails"`
}

type saiaError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *saiaAdapter) Quote(ctx context.Context, account model.TariffAccount, req model.ShipmentRequest) (decimal.Decimal, error) {
	if account.AccessCode == "" || account.CustomerNumber == "" {
		return decimal.Zero, fmt.Errorf("%w: saia requires access code and customer number", common.ErrCredential)
	}
	if err := a.validate(req); err != nil {
		return decimal.Zero, err
	}

	details := make([]saiaItem, len(req.Commodities))
	for i, c := range req.Commodities {
		details[i] = saiaItem{
			FreightClass: c.FreightClass,
			Weight:       c.Weight,
			Length:       c.Length,
			Width:        c.Width,
			Height:       c.Height,
			Stackable:    c.Stackable,
		}
	}

	body, err := json.Marshal(saiaRequest{
		CustomerNumber: account.CustomerNumber,
		Payer:          string(req.Payer),
		OriginZip:      req.Origin.PostalCode,
		DestinationZip: req.Destination.PostalCode,
		Details:        details,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Access-Code", account.AccessCode)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}

	return a.parseResponse(resp.StatusCode, respBody)
}

// validate checks the fields Saia mandates beyond the canonical request.
func (a *saiaAdapter) validate(req model.ShipmentRequest) error {
	if req.Payer == "" {
		return fmt.Errorf("%w: saia requires a payer designation", common.ErrValidation)
	}
	for i, c := range req.Commodities {
		if !c.HasDimensions() {
			return fmt.Errorf("%w: saia requires dimensions on commodity %d", common.ErrValidation, i)
		}
	}
	return nil
}

// Saia signals request-level errors in the body, sometimes alongside a
// 4xx status, so the errors array wins over the status code.
func (a *saiaAdapter) parseResponse(status int, body []byte) (decimal.Decimal, error) {
	var parsed saiaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if status != http.StatusOK {
			return decimal.Zero, fmt.Errorf("%w: saia returned status %d", common.ErrNetwork, status)
		}
		return decimal.Zero, fmt.Errorf("%w: unparsable response: %v", common.ErrInvalidResponse, err)
	}

	if len(parsed.Errors) > 0 {
		msgs := make([]string, len(parsed.Errors))
		for i, e := range parsed.Errors {
			msgs[i] = fmt.Sprintf("%s: %s", e.Code, e.Message)
		}
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrCarrierRejected, strings.Join(msgs, "; "))
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: saia returned status %d", common.ErrNetwork, status)
	}
	if parsed.RateDetails == nil {
		return decimal.Zero, fmt.Errorf("%w: no rate details in response", common.ErrInvalidResponse)
	}

	return parseCharge(parsed.RateDetails.NetCharge)
}
