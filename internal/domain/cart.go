package domain

import "github.com/shopspring/decimal"

// CartLine is a cart entry with the item's name, price and vintage captured when it was first added.
type CartLine struct {
	ItemID   string
	Name     string
	Price    decimal.Decimal
	Vintage  string
	Quantity int
}

// CartSnapshot represents the cart lines in insertion order
type CartSnapshot struct {
	Lines []CartLine
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Find returns the index of the line for itemID or -1.
func (s CartSnapshot) Find(itemID string) int {
	for i, l := range s.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s CartSnapshot) Clone() CartSnapshot {
	if s.Lines == nil {
		return CartSnapshot{}
	}
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	return CartSnapshot{Lines: lines}
}
