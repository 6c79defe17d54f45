package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/metrics"
	"github.com/fjod/go_cellar/internal/storage"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// StorageKey holds the most recent completed order.
const StorageKey = "lastOrder"

// ErrNoOrder means there is nothing to confirm: no order was placed or the stored one is unreadable.
var ErrNoOrder = errors.New("no order to confirm")

type Repository struct {
	kv storage.Store
}

func NewRepository(kv storage.Store) *Repository {
	return &Repository{kv: kv}
}

// SaveLast replaces the stored order with record.
func (r *Repository) SaveLast(ctx context.Context, record *domain.OrderRecord) error {
	data, err := json.Marshal(toWire(record))
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if err := r.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("save last order: %w", err)
	}
	return nil
}

func (r *Repository) Last(ctx context.Context) (*domain.OrderRecord, error) {
	data, err := r.kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("load last order: %w", err)
	}

	record, err := fromWire(data)
	if err != nil {
		metrics.StorageCorrupt.WithLabelValues(StorageKey).Inc()
		log.WithError(err).Warn("discarding corrupt order record")
		return nil, ErrNoOrder
	}
	return record, nil
}

type wireCustomer struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	Notes       string `json:"notes"`
	AcceptTerms bool   `json:"acceptTerms"`
}

type wireItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Vintage  string      `json:"vintage"`
}

type wireOrder struct {
	OrderID  string       `json:"orderId"`
	Date     time.Time    `json:"date"`
	Customer wireCustomer `json:"customer"`
	Items    []wireItem   `json:"items"`
	Subtotal json.Number  `json:"subtotal"`
	Shipping json.Number  `json:"shipping"`
	Total    json.Number  `json:"total"`
}

func toWire(o *domain.OrderRecord) wireOrder {
	w := wireOrder{
		OrderID:  o.OrderID,
		Date:     o.CreatedAt,
		Customer: wireCustomer(o.Customer),
		Items:    make([]wireItem, 0, len(o.Lines)),
		Subtotal: json.Number(o.Subtotal.String()),
		Shipping: json.Number(o.Shipping.String()),
		Total:    json.Number(o.Total.String()),
	}
	for _, l := range o.Lines {
		w.Items = append(w.Items, wireItem{
			ID:       l.ItemID,
			Name:     l.Name,
			Price:    json.Number(l.Price.String()),
			Quantity: l.Quantity,
			Vintage:  l.Vintage,
		})
	}
	return w
}

func fromWire(data []byte) (*domain.OrderRecord, error) {
	var w wireOrder
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.OrderID == "" {
		return nil, errors.New("order record has no id")
	}

	o := &domain.OrderRecord{
		OrderID:   w.OrderID,
		CreatedAt: w.Date,
		Customer:  domain.CheckoutForm(w.Customer),
		Lines:     make([]domain.OrderLine, 0, len(w.Items)),
	}
	var err error
	if o.Subtotal, err = decimal.NewFromString(w.Subtotal.String()); err != nil {
		return nil, fmt.Errorf("subtotal: %w", err)
	}
	if o.Shipping, err = decimal.NewFromString(w.Shipping.String()); err != nil {
		return nil, fmt.Errorf("shipping: %w", err)
	}
	if o.Total, err = decimal.NewFromString(w.Total.String()); err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}
	for _, it := range w.Items {
		price, err := decimal.NewFromString(it.Price.String())
		if err != nil {
			return nil, fmt.Errorf("item %s price: %w", it.ID, err)
		}
		o.Lines = append(o.Lines, domain.OrderLine{
			ItemID:   it.ID,
			Name:     it.Name,
			Vintage:  it.Vintage,
			Quantity: it.Quantity,
			Price:    price,
		})
	}
	return o, nil
}
