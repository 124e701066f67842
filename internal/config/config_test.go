package config

import (
	"testing"

	"github.com/freightwise/rateshop/internal/common"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTariffs(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("pricing.default_margin", 18.0)
	viper.Set("tariffs", []map[string]any{
		{
			"carrier":  "estes",
			"name":     "ESTES-STANDARD",
			"username": "broker",
			"password": "secret",
			"margin":   22.5,
		},
		{
			"carrier": "daylight",
			"name":    "DAYLIGHT-PRIMARY",
			"api_key": "key-1",
		},
	})

	tariffs, err := LoadTariffs()
	require.NoError(t, err)

	require.Contains(t, tariffs, "estes")
	require.Contains(t, tariffs, "daylight")

	estes := tariffs["estes"]["ESTES-STANDARD"]
	assert.Equal(t, "broker", estes.Username)
	assert.InDelta(t, 22.5, estes.Margin, 0.001)

	// Missing margin inherits the default.
	daylight := tariffs["daylight"]["DAYLIGHT-PRIMARY"]
	assert.InDelta(t, 18.0, daylight.Margin, 0.001)
}

func TestLoadTariffsRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		tariffs []map[string]any
	}{
		{
			name:    "none configured",
			tariffs: nil,
		},
		{
			name: "missing name",
			tariffs: []map[string]any{
				{"carrier": "estes"},
			},
		},
		{
			name: "margin out of range",
			tariffs: []map[string]any{
				{"carrier": "estes", "name": "X", "margin": 100.0},
			},
		},
		{
			name: "duplicate names",
			tariffs: []map[string]any{
				{"carrier": "estes", "name": "X", "margin": 20.0},
				{"carrier": "estes", "name": "X", "margin": 25.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			viper.Set("tariffs", tt.tariffs)

			_, err := LoadTariffs()
			require.Error(t, err)
		})
	}
}

func TestLoadAllowed(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("permissions.default", map[string][]string{
		"estes": {"ESTES-STANDARD"},
	})
	viper.Set("permissions.customers.acme", map[string][]string{
		"estes":    {"ESTES-STANDARD", "ESTES-VOLUME"},
		"daylight": {"DAYLIGHT-PRIMARY"},
	})

	assert.Equal(t, []string{"ESTES-STANDARD"}, LoadAllowed("")["estes"])
	assert.Equal(t, []string{"ESTES-STANDARD"}, LoadAllowed("unknown-customer")["estes"])

	acme := LoadAllowed("acme")
	assert.ElementsMatch(t, []string{"ESTES-STANDARD", "ESTES-VOLUME"}, acme["estes"])
	assert.ElementsMatch(t, []string{"DAYLIGHT-PRIMARY"}, acme["daylight"])
}

func TestBuildAdaptersRequiresEndpoints(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := BuildAdapters()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("carriers.estes.endpoint", "https://rates.example.com/soap")
	adapters, err := BuildAdapters()
	require.NoError(t, err)
	require.Len(t, adapters, 1)
	assert.Contains(t, adapters, "estes")
}
