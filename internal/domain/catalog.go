package domain

import "github.com/shopspring/decimal"

type CatalogItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Vintage     string
	Region      string
	Type        string
	InStock     bool
	Rating      float64
	ReviewCount int
	ImageRef    string
}
