package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeModel(t *testing.T) {
	t.Parallel()

	fees := DefaultFees()

	tests := []struct {
		name     string
		notional float64
		kind     OrderKind
		want     float64
	}{
		{"maker_limit", 1000, Limit, 0.25},
		{"taker_market", 1000, Market, 0.75},
		{"taker_stop", 1000, Stop, 0.75},
		{"zero_notional", 0, Market, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, fees.Fee(tt.notional, tt.kind), 1e-12)
		})
	}
}
