package permission

import (
	"testing"

	"github.com/freightwise/rateshop/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	rec1 := model.TariffAccount{Carrier: "estes", Name: "X", Margin: 20}
	rec2 := model.TariffAccount{Carrier: "estes", Name: "Z", Margin: 15}

	tests := []struct {
		name      string
		available map[string]model.TariffAccount
		allowed   []string
		want      map[string]model.TariffAccount
	}{
		{
			name:      "unknown names dropped, unlisted excluded",
			available: map[string]model.TariffAccount{"X": rec1, "Z": rec2},
			allowed:   []string{"X", "Y"},
			want:      map[string]model.TariffAccount{"X": rec1},
		},
		{
			name:      "all allowed",
			available: map[string]model.TariffAccount{"X": rec1, "Z": rec2},
			allowed:   []string{"X", "Z"},
			want:      map[string]model.TariffAccount{"X": rec1, "Z": rec2},
		},
		{
			name:      "empty allow list",
			available: map[string]model.TariffAccount{"X": rec1},
			allowed:   nil,
			want:      map[string]model.TariffAccount{},
		},
		{
			name:      "empty result is valid",
			available: map[string]model.TariffAccount{"X": rec1},
			allowed:   []string{"Y"},
			want:      map[string]model.TariffAccount{},
		},
		{
			name:      "no tariffs configured",
			available: nil,
			allowed:   []string{"X"},
			want:      map[string]model.TariffAccount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.available, tt.allowed)
			assert.Equal(t, tt.want, got)
		})
	}
}
