package cart

import (
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// FlatShippingFee is charged on every order that does not qualify for free shipping.
	FlatShippingFee = decimal.RequireFromString("9.90")
	// FreeShippingThreshold must be strictly exceeded for shipping to be free.
	FreeShippingThreshold = decimal.RequireFromString("100.00")
)

// Subtotal sums quantity × price over every line. Nothing is rounded here.
func Subtotal(snap domain.CartSnapshot) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range snap.Lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

func Total(snap domain.CartSnapshot) decimal.Decimal {
	sub := Subtotal(snap)
	return sub.Add(ShippingFee(sub))
}

// ItemCount is the badge number: the sum of all quantities.
func ItemCount(snap domain.CartSnapshot) int {
	n := 0
	for _, l := range snap.Lines {
		n += l.Quantity
	}
	return n
}
