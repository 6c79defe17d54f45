package cart

import (
	"testing"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShippingFee_Boundary(t *testing.T) {
	tests := map[string]string{
		"100.01": "0",
		"100.00": "9.90",
		"100":    "9.90",
		"0":      "9.90",
		"145.00": "0",
		"99.99":  "9.90",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got := ShippingFee(decimal.RequireFromString(in))
			assert.True(t, got.Equal(decimal.RequireFromString(want)), "got %s", got)
		})
	}
}

func TestTotals_EndToEndCart(t *testing.T) {
	snap := domain.CartSnapshot{Lines: []domain.CartLine{
		{ItemID: "wine-001", Price: decimal.RequireFromString("89.00"), Quantity: 1},
		{ItemID: "wine-004", Price: decimal.RequireFromString("28.00"), Quantity: 2},
	}}

	assert.True(t, Subtotal(snap).Equal(decimal.RequireFromString("145.00")))
	assert.True(t, ShippingFee(Subtotal(snap)).IsZero())
	assert.True(t, Total(snap).Equal(decimal.RequireFromString("145.00")))
	assert.Equal(t, 3, ItemCount(snap))
}

func TestTotals_EmptyCart(t *testing.T) {
	var snap domain.CartSnapshot

	assert.True(t, Subtotal(snap).IsZero())
	assert.Equal(t, 0, ItemCount(snap))
	assert.True(t, Total(snap).Equal(FlatShippingFee))
}

func TestSubtotal_NoFloatDrift(t *testing.T) {
	snap := domain.CartSnapshot{Lines: []domain.CartLine{
		{ItemID: "a", Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{ItemID: "b", Price: decimal.RequireFromString("0.20"), Quantity: 1},
	}}

	assert.Equal(t, "0.5", Subtotal(snap).String())
}
