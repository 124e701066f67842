package carrier

import (
	"fmt"
	"strings"
)

// NewAdapter creates the adapter for a carrier id.
func NewAdapter(carrierID string, cfg Config) (Adapter, error) {
	switch strings.ToLower(carrierID) {
	case Estes:
		return newEstesAdapter(cfg)
	case Daylight:
		return newDaylightAdapter(cfg)
	case Saia:
		return newSaiaAdapter(cfg)
	default:
		return nil, fmt.Errorf("unsupported carrier: %s", carrierID)
	}
}
