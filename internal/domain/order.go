package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryDays is how many calendar days after the order date delivery is expected.
const DeliveryDays = 3

type OrderLine struct {
	ItemID   string
	Name     string
	Vintage  string
	Quantity int
	Price    decimal.Decimal
}

type OrderRecord struct {
	OrderID   string
	CreatedAt time.Time
	Customer  CheckoutForm
	Lines     []OrderLine
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

func (o *OrderRecord) EstimatedDelivery() time.Time {
	return o.CreatedAt.AddDate(0, 0, DeliveryDays)
}

func (o *OrderRecord) FreeShipping() bool {
	return o.Shipping.IsZero()
}
