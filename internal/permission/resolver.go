// Package permission filters a carrier's tariff set down to those a
// customer is allowed to use.
package permission

import (
	"log/slog"

	"github.com/freightwise/rateshop/internal/model"
)

// Resolve returns the subset of available tariffs named by the allow-list.
// Allowed names with no matching tariff are dropped with a warning rather
// than an error: permission lists routinely reference renamed or deleted
// tariffs. An empty result is valid and means the carrier is unavailable
// for this customer.
func Resolve(available map[string]model.TariffAccount, allowed []string) map[string]model.TariffAccount {
	permitted := make(map[string]model.TariffAccount, len(allowed))
	for _, name := range allowed {
		account, ok := available[name]
		if !ok {
			slog.Warn("Allowed tariff not found, skipping", "tariff", name)
			continue
		}
		permitted[name] = account
	}
	return permitted
}
