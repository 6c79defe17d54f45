package http

import (
	"time"

	"github.com/fjod/go_cellar/internal/cart"
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/money"
	"github.com/shopspring/decimal"
)

// MoneyDTO carries an amount both as a plain decimal and formatted for display.
type MoneyDTO struct {
	Amount    string `json:"amount"`
	Formatted string `json:"formatted"`
}

func newMoney(d decimal.Decimal) MoneyDTO {
	return MoneyDTO{Amount: d.StringFixed(2), Formatted: money.Format(d)}
}

type CatalogItemDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       MoneyDTO `json:"price"`
	Vintage     string   `json:"vintage"`
	Region      string   `json:"region"`
	Type        string   `json:"type"`
	InStock     bool     `json:"in_stock"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	ImageURL    string   `json:"image_url"`
}

type CatalogResponse struct {
	Items []CatalogItemDTO `json:"items"`
}

type CartLineDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Vintage   string   `json:"vintage"`
	Price     MoneyDTO `json:"price"`
	Quantity  int      `json:"quantity"`
	LineTotal MoneyDTO `json:"line_total"`
}

type CartResponse struct {
	Lines        []CartLineDTO `json:"lines"`
	ItemCount    int           `json:"item_count"`
	Subtotal     MoneyDTO      `json:"subtotal"`
	Shipping     MoneyDTO      `json:"shipping"`
	Total        MoneyDTO      `json:"total"`
	FreeShipping bool          `json:"free_shipping"`
}

type HomeResponse struct {
	Items []CatalogItemDTO `json:"items"`
	Cart  CartResponse     `json:"cart"`
}

type CheckoutPageResponse struct {
	State      string              `json:"state"`
	Form       domain.CheckoutForm `json:"form"`
	Errors     map[string]string   `json:"errors"`
	FirstError string              `json:"first_error,omitempty"`
	Cart       CartResponse        `json:"cart"`
}

type OrderLineDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Vintage   string   `json:"vintage"`
	Price     MoneyDTO `json:"price"`
	Quantity  int      `json:"quantity"`
	LineTotal MoneyDTO `json:"line_total"`
}

type OrderResponse struct {
	OrderID           string              `json:"order_id"`
	CreatedAt         time.Time           `json:"created_at"`
	EstimatedDelivery string              `json:"estimated_delivery"`
	Customer          domain.CheckoutForm `json:"customer"`
	Lines             []OrderLineDTO      `json:"lines"`
	Subtotal          MoneyDTO            `json:"subtotal"`
	Shipping          MoneyDTO            `json:"shipping"`
	Total             MoneyDTO            `json:"total"`
	FreeShipping      bool                `json:"free_shipping"`
}

func catalogItemsDTO(items []domain.CatalogItem) []CatalogItemDTO {
	out := make([]CatalogItemDTO, len(items))
	for i, it := range items {
		out[i] = catalogItemDTO(it)
	}
	return out
}

func catalogItemDTO(it domain.CatalogItem) CatalogItemDTO {
	return CatalogItemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       newMoney(it.Price),
		Vintage:     it.Vintage,
		Region:      it.Region,
		Type:        it.Type,
		InStock:     it.InStock,
		Rating:      it.Rating,
		ReviewCount: it.ReviewCount,
		ImageURL:    it.ImageRef,
	}
}

func cartDTO(snap domain.CartSnapshot) CartResponse {
	lines := make([]CartLineDTO, len(snap.Lines))
	for i, l := range snap.Lines {
		lines[i] = CartLineDTO{
			ID:        l.ItemID,
			Name:      l.Name,
			Vintage:   l.Vintage,
			Price:     newMoney(l.Price),
			Quantity:  l.Quantity,
			LineTotal: newMoney(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		}
	}
	subtotal := cart.Subtotal(snap)
	shipping := cart.ShippingFee(subtotal)
	return CartResponse{
		Lines:        lines,
		ItemCount:    cart.ItemCount(snap),
		Subtotal:     newMoney(subtotal),
		Shipping:     newMoney(shipping),
		Total:        newMoney(subtotal.Add(shipping)),
		FreeShipping: shipping.IsZero(),
	}
}

func orderDTO(o *domain.OrderRecord) OrderResponse {
	lines := make([]OrderLineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineDTO{
			ID:        l.ItemID,
			Name:      l.Name,
			Vintage:   l.Vintage,
			Price:     newMoney(l.Price),
			Quantity:  l.Quantity,
			LineTotal: newMoney(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		}
	}
	return OrderResponse{
		OrderID:           o.OrderID,
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery().Format(time.DateOnly),
		Customer:          o.Customer,
		Lines:             lines,
		Subtotal:          newMoney(o.Subtotal),
		Shipping:          newMoney(o.Shipping),
		Total:             newMoney(o.Total),
		FreeShipping:      o.FreeShipping(),
	}
}

func fieldErrorsDTO(errs domain.FieldErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for f, msg := range errs {
		out[string(f)] = msg
	}
	return out
}
