package config

import (
	"fmt"
	"time"

	"github.com/freightwise/rateshop/internal/carrier"
	"github.com/freightwise/rateshop/internal/common"
	"github.com/freightwise/rateshop/internal/history"
	"github.com/freightwise/rateshop/internal/model"
	"github.com/freightwise/rateshop/internal/rate"

	"github.com/spf13/viper"
)

// tariffEntry mirrors one item of the tariffs list in the config file.
type tariffEntry struct {
	Carrier        string            `mapstructure:"carrier"`
	Name           string            `mapstructure:"name"`
	APIKey         string            `mapstructure:"api_key"`
	Username       string            `mapstructure:"username"`
	Password       string            `mapstructure:"password"`
	AccessCode     string            `mapstructure:"access_code"`
	CustomerNumber string            `mapstructure:"customer_number"`
	Margin         *float64          `mapstructure:"margin"`
	Metadata       map[string]string `mapstructure:"metadata"`
}

// LoadTariffs reads the configured tariff accounts into per-carrier maps
// keyed by tariff name. Accounts without an explicit margin inherit
// pricing.default_margin.
func LoadTariffs() (map[string]map[string]model.TariffAccount, error) {
	var entries []tariffEntry
	if err := viper.UnmarshalKey("tariffs", &entries); err != nil {
		return nil, fmt.Errorf("%w: tariffs: %v", common.ErrInvalidConfig, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no tariffs configured", common.ErrMissingConfig)
	}

	defaultMargin := viper.GetFloat64("pricing.default_margin")

	tariffs := make(map[string]map[string]model.TariffAccount)
	for _, e := range entries {
		if e.Carrier == "" || e.Name == "" {
			return nil, fmt.Errorf("%w: tariff entries need carrier and name", common.ErrInvalidConfig)
		}
		margin := defaultMargin
		if e.Margin != nil {
			margin = *e.Margin
		}
		if margin < 0 || margin >= 100 {
			return nil, fmt.Errorf("%w: tariff %s margin %.2f out of range", common.ErrInvalidConfig, e.Name, margin)
		}

		if tariffs[e.Carrier] == nil {
			tariffs[e.Carrier] = make(map[string]model.TariffAccount)
		}
		if _, dup := tariffs[e.Carrier][e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate tariff name %s", common.ErrInvalidConfig, e.Name)
		}
		tariffs[e.Carrier][e.Name] = model.TariffAccount{
			Carrier:        e.Carrier,
			Name:           e.Name,
			APIKey:         e.APIKey,
			Username:       e.Username,
			Password:       e.Password,
			AccessCode:     e.AccessCode,
			CustomerNumber: e.CustomerNumber,
			Margin:         margin,
			Metadata:       e.Metadata,
		}
	}
	return tariffs, nil
}

// LoadAllowed returns a customer's per-carrier tariff allow-list. An
// unknown customer falls back to permissions.default. Names that no
// longer match a configured tariff are passed through; the permission
// resolver warns about and drops them.
func LoadAllowed(customer string) map[string][]string {
	key := "permissions.default"
	if customer != "" && viper.IsSet("permissions.customers."+customer) {
		key = "permissions.customers." + customer
	}
	return viper.GetStringMapStringSlice(key)
}

// BuildAdapters constructs an adapter for every carrier with a configured
// endpoint. Carriers without endpoints are left out rather than failing
// the whole run.
func BuildAdapters() (map[string]carrier.Adapter, error) {
	timeout := time.Duration(viper.GetInt("quoting.timeout_seconds")) * time.Second

	adapters := make(map[string]carrier.Adapter)
	for _, id := range carrier.All {
		endpoint := viper.GetString("carriers." + id + ".endpoint")
		if endpoint == "" {
			continue
		}
		adapter, err := carrier.NewAdapter(id, carrier.Config{Endpoint: endpoint, Timeout: timeout})
		if err != nil {
			return nil, fmt.Errorf("failed to build %s adapter: %w", id, err)
		}
		adapters[id] = adapter
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no carrier endpoints configured", common.ErrMissingConfig)
	}
	return adapters, nil
}

// AggregationConfig reads the per-run quoting settings.
func AggregationConfig() rate.Config {
	cfg := rate.DefaultConfig()
	if v := viper.GetInt("quoting.timeout_seconds"); v > 0 {
		cfg.CallTimeout = time.Duration(v) * time.Second
	}
	if v := viper.GetInt("quoting.max_concurrent"); v > 0 {
		cfg.MaxConcurrent = v
	}
	if v := viper.GetInt("quoting.retry_attempts"); v > 0 {
		cfg.RetryAttempts = v
	}
	return cfg
}

// HistoryConfig reads the historical-matching settings.
func HistoryConfig() history.Config {
	cfg := history.DefaultConfig()
	if v := viper.GetFloat64("history.weight_tolerance_pct"); v > 0 {
		cfg.WeightTolerancePct = v
	}
	if v := viper.GetInt("history.window_months"); v > 0 {
		cfg.WindowMonths = v
	}
	return cfg
}
