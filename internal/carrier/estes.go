package carrier

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/shopspring/decimal"
)

// estesAdapter speaks the Estes rate quote SOAP 1.1 service. Requests are
// authenticated with a username/password pair carried in the SOAP header,
// and Estes requires city and state on both stops in addition to zips.
type estesAdapter struct {
	httpClient *http.Client
	endpoint   string
}

func newEstesAdapter(cfg Config) (Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: estes endpoint", common.ErrMissingConfig)
	}
	return &estesAdapter{
		endpoint:   cfg.Endpoint,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

func (a *estesAdapter) Carrier() string { return Estes }

// SOAP request envelope. encoding/xml escapes every user-derived string
// during marshaling.
type estesEnvelope struct {
	XMLName xml.Name    `xml:"soapenv:Envelope"`
	NSSoap  string      `xml:"xmlns:soapenv,attr"`
	NSRate  string      `xml:"xmlns:rat,attr"`
	Header  estesHeader `xml:"soapenv:Header"`
	Body    estesBody   `xml:"soapenv:Body"`
}

type estesHeader struct {
	Auth estesAuth `xml:"rat:auth"`
}

type estesAuth struct {
	User     string `xml:"rat:user"`
	Password string `xml:"rat:password"`
}

type estesBody struct {
	Request estesRateRequest `xml:"rat:rateRequest"`
}

type estesRateRequest struct {
	Account     string      `xml:"rat:requestID"`
	Origin      estesStop   `xml:"rat:originPoint"`
	Destination estesStop   `xml:"rat:destinationPoint"`
	Items       []estesItem `xml:"rat:fullCommodities>rat:commodity"`
}

type estesStop struct {
	City       string `xml:"rat:city"`
	State      string `xml:"rat:stateProvince"`
	PostalCode string `xml:"rat:postalCode"`
	Country    string `xml:"rat:country"`
}

type estesItem struct {
	Class  string  `xml:"rat:class"`
	Weight float64 `xml:"rat:weight"`
	Pieces int     `xml:"rat:pieces"`
}

// Response envelope. Local names only; Go's decoder matches regardless of
// the namespace prefix the carrier emits.
type estesResponseEnvelope struct {
	Body struct {
		Fault *struct {
			Code   string `xml:"faultcode"`
			Reason string `xml:"faultstring"`
		} `xml:"Fault"`
		RateResponse *struct {
			Quotes []struct {
				TotalCharge string `xml:"ratedCharges>totalCharges"`
			} `xml:"quoteInfo>quote"`
		} `xml:"rateResponse"`
	} `xml:"Body"`
}

func (a *estesAdapter) Quote(ctx context.Context, account model.TariffAccount, req model.ShipmentRequest) (decimal.Decimal, error) {
	if account.Username == "" || account.Password == "" {
		return decimal.Zero, fmt.Errorf("%w: estes requires username and password", common.ErrCredential)
	}
	if err := a.validate(req); err != nil {
		return decimal.Zero, err
	}

	envelope := estesEnvelope{
		NSSoap: "http://schemas.xmlsoap.org/soap/envelope/",
		NSRate: "http://ws.estesexpress.com/ratequote",
		Header: estesHeader{
			Auth: estesAuth{User: account.Username, Password: account.Password},
		},
		Body: estesBody{
			Request: estesRateRequest{
				Account:     account.Name,
				Origin:      estesStopFrom(req.Origin),
				Destination: estesStopFrom(req.Destination),
				Items:       estesItemsFrom(req.Commodities),
			},
		},
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal request: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", "http://ws.estesexpress.com/ratequote/getQuote")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}

	return a.parseResponse(resp.StatusCode, body)
}

// validate checks the fields Estes mandates beyond the canonical request.
func (a *estesAdapter) validate(req model.ShipmentRequest) error {
	for _, stop := range []struct {
		name string
		stop model.Stop
	}{{"origin", req.Origin}, {"destination", req.Destination}} {
		if strings.TrimSpace(stop.stop.City) == "" {
			return fmt.Errorf("%w: estes requires %s city", common.ErrValidation, stop.name)
		}
		if len(strings.TrimSpace(stop.stop.State)) != 2 {
			return fmt.Errorf("%w: estes requires a 2-letter %s state", common.ErrValidation, stop.name)
		}
	}
	return nil
}

// SOAP faults frequently arrive with a 500 status, so the body is parsed
// for a Fault before the status code is considered.
func (a *estesAdapter) parseResponse(status int, body []byte) (decimal.Decimal, error) {
	var envelope estesResponseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		if status != http.StatusOK {
			return decimal.Zero, fmt.Errorf("%w: estes returned status %d", common.ErrNetwork, status)
		}
		return decimal.Zero, fmt.Errorf("%w: unparsable SOAP response: %v", common.ErrInvalidResponse, err)
	}

	if fault := envelope.Body.Fault; fault != nil {
		return decimal.Zero, fmt.Errorf("%w: %s (%s)", common.ErrCarrierRejected, fault.Reason, fault.Code)
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: estes returned status %d", common.ErrNetwork, status)
	}

	rr := envelope.Body.RateResponse
	if rr == nil || len(rr.Quotes) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no quote in response", common.ErrInvalidResponse)
	}

	return parseCharge(rr.Quotes[0].TotalCharge)
}

func estesStopFrom(s model.Stop) estesStop {
	country := s.Country
	if country == "" {
		country = "US"
	}
	return estesStop{
		City:       s.City,
		State:      s.State,
		PostalCode: s.PostalCode,
		Country:    country,
	}
}

func estesItemsFrom(lines []model.CommodityLine) []estesItem {
	items := make([]estesItem, len(lines))
	for i, c := range lines {
		pieces := c.Pieces
		if pieces == 0 {
			pieces = 1
		}
		items[i] = estesItem{Class: c.FreightClass, Weight: c.Weight, Pieces: pieces}
	}
	return items
}
