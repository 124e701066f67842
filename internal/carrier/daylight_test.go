package carrier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daylightAccount() model.TariffAccount {
	return model.TariffAccount{
		Carrier: Daylight,
		Name:    "DAYLIGHT-PRIMARY",
		APIKey:  "test-key",
		Margin:  18,
	}
}

func daylightRequestFixture() model.ShipmentRequest {
	return model.ShipmentRequest{
		Origin:      model.Stop{PostalCode: "30301"},
		Destination: model.Stop{PostalCode: "90210"},
		Commodities: []model.CommodityLine{
			{FreightClass: "70", Weight: 500},
		},
	}
}

func TestDaylightQuote(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantCost string
		wantErr  error
	}{
		{
			name:     "pass status",
			response: `{"status":"PASS","netCharge":"845.12"}`,
			wantCost: "845.12",
		},
		{
			name:     "warning status still rates",
			response: `{"status":"WARNING","messages":["Lane subject to capacity surcharge"],"netCharge":"$910.40"}`,
			wantCost: "910.4",
		},
		{
			name:     "fail status",
			response: `{"status":"FAIL","messages":["Destination zip not serviced"]}`,
			wantErr:  common.ErrCarrierRejected,
		},
		{
			name:     "unknown status",
			response: `{"status":"MAYBE","netCharge":"100.00"}`,
			wantErr:  common.ErrInvalidResponse,
		},
		{
			name:     "pass with unparsable charge",
			response: `{"status":"PASS","netCharge":"call for rate"}`,
			wantErr:  common.ErrInvalidResponse,
		},
		{
			name:     "pass with negative charge",
			response: `{"status":"PASS","netCharge":"-12.00"}`,
			wantErr:  common.ErrInvalidResponse,
		},
		{
			name:     "not json",
			response: `<html>gateway error</html>`,
			wantErr:  common.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

				var body daylightRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "30301", body.OriginZip)
				assert.Equal(t, "90210", body.DestinationZip)
				require.Len(t, body.Items, 1)
				assert.Equal(t, "70", body.Items[0].FreightClass)

				_, _ = io.WriteString(w, tt.response)
			}))
			defer server.Close()

			adapter, err := newDaylightAdapter(Config{Endpoint: server.URL})
			require.NoError(t, err)

			cost, err := adapter.Quote(context.Background(), daylightAccount(), daylightRequestFixture())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cost.String())
		})
	}
}

func TestDaylightQuoteMissingAPIKey(t *testing.T) {
	adapter, err := newDaylightAdapter(Config{Endpoint: "http://unreachable.invalid"})
	require.NoError(t, err)

	account := daylightAccount()
	account.APIKey = ""

	_, err = adapter.Quote(context.Background(), account, daylightRequestFixture())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCredential)
}

func TestDaylightQuoteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter, err := newDaylightAdapter(Config{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = adapter.Quote(context.Background(), daylightAccount(), daylightRequestFixture())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNetwork)
}
