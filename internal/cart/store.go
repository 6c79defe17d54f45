package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/metrics"
	"github.com/fjod/go_cellar/internal/storage"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// StorageKey is where the cart snapshot is persisted. Its absence means there is no active cart.
const StorageKey = "wineCart"

var (
	// ErrOutOfStock rejects adding an item the catalog marks as unavailable.
	ErrOutOfStock = errors.New("item is out of stock")

	// ErrFrozen rejects edits to a cart whose order is being placed.
	ErrFrozen = errors.New("cart is frozen while its order is placed")
)

// Store holds one session's cart. Every mutation is written to storage before it becomes
// visible, so a failed write leaves the cart as it was.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	catalog  catalog.Catalog
	snapshot domain.CartSnapshot
	active   bool
	frozen   bool
}

// Restore loads the persisted cart. A missing or malformed snapshot yields an empty, inactive
// cart. A failed read is returned as an error so the stored cart is never mistaken for absent.
func Restore(ctx context.Context, kv storage.Store, cat catalog.Catalog) (*Store, error) {
	s := &Store{kv: kv, catalog: cat}

	data, err := kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}

	snap, dropped, err := decodeSnapshot(data)
	if err != nil {
		metrics.StorageCorrupt.WithLabelValues(StorageKey).Inc()
		log.WithError(err).Warn("discarding corrupt cart snapshot")
		return s, nil
	}
	if dropped > 0 {
		log.WithField("dropped", dropped).Warn("cart snapshot had invalid or duplicate lines")
	}

	s.snapshot = snap
	s.active = true
	return s, nil
}

// Add puts one more bottle of itemID in the cart. A new line captures the catalog's current
// name, price and vintage; later catalog changes do not affect it.
func (s *Store) Add(ctx context.Context, itemID string) error {
	item, err := s.catalog.Get(itemID)
	if err != nil {
		metrics.CartMutations.WithLabelValues("add", "rejected").Inc()
		return err
	}
	if !item.InStock {
		metrics.CartMutations.WithLabelValues("add", "rejected").Inc()
		return ErrOutOfStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEditable("add"); err != nil {
		return err
	}
	next := s.snapshot.Clone()
	if i := next.Find(itemID); i >= 0 {
		next.Lines[i].Quantity++
	} else {
		next.Lines = append(next.Lines, domain.CartLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Vintage:  item.Vintage,
			Quantity: 1,
		})
	}
	return s.commit(ctx, "add", next)
}

// SetQuantity sets a line's quantity. n <= 0 removes the line; an absent line is left alone.
func (s *Store) SetQuantity(ctx context.Context, itemID string, n int) error {
	if n <= 0 {
		return s.Remove(ctx, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEditable("set_quantity"); err != nil {
		return err
	}
	i := s.snapshot.Find(itemID)
	if i < 0 {
		metrics.CartMutations.WithLabelValues("set_quantity", "noop").Inc()
		return nil
	}
	next := s.snapshot.Clone()
	next.Lines[i].Quantity = n
	return s.commit(ctx, "set_quantity", next)
}

func (s *Store) Remove(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEditable("remove"); err != nil {
		return err
	}
	i := s.snapshot.Find(itemID)
	if i < 0 {
		metrics.CartMutations.WithLabelValues("remove", "noop").Inc()
		return nil
	}
	next := domain.CartSnapshot{Lines: make([]domain.CartLine, 0, len(s.snapshot.Lines)-1)}
	next.Lines = append(next.Lines, s.snapshot.Lines[:i]...)
	next.Lines = append(next.Lines, s.snapshot.Lines[i+1:]...)
	return s.commit(ctx, "remove", next)
}

// Clear empties the cart and deletes the persisted snapshot, leaving no active cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEditable("clear"); err != nil {
		return err
	}
	return s.clear(ctx)
}

// Freeze stops further edits and returns the lines the order will be placed for. Edits that
// finished before Freeze are included; later ones fail with ErrFrozen.
func (s *Store) Freeze() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
	return s.snapshot.Clone()
}

// Unfreeze allows edits again after an order could not be placed.
func (s *Store) Unfreeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
}

// Settle clears a frozen cart once its order is placed and allows edits again. The cart is
// unfrozen even when clearing fails.
func (s *Store) Settle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
	return s.clear(ctx)
}

// Frozen reports whether an order for this cart is being placed.
func (s *Store) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// checkEditable must be called with s.mu held.
func (s *Store) checkEditable(op string) error {
	if s.frozen {
		metrics.CartMutations.WithLabelValues(op, "rejected").Inc()
		return ErrFrozen
	}
	return nil
}

// clear must be called with s.mu held.
func (s *Store) clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		metrics.CartMutations.WithLabelValues("clear", "error").Inc()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.snapshot = domain.CartSnapshot{}
	s.active = false
	metrics.CartMutations.WithLabelValues("clear", "ok").Inc()
	return nil
}

// commit must be called with s.mu held.
func (s *Store) commit(ctx context.Context, op string, next domain.CartSnapshot) error {
	data, err := encodeSnapshot(next)
	if err != nil {
		metrics.CartMutations.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		metrics.CartMutations.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("persist cart: %w", err)
	}
	s.snapshot = next
	s.active = true
	metrics.CartMutations.WithLabelValues(op, "ok").Inc()
	return nil
}

// Snapshot returns a copy of the current lines.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.IsEmpty()
}

// Active reports whether a persisted snapshot exists, even an empty one.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Store) Subtotal() decimal.Decimal {
	return Subtotal(s.Snapshot())
}

func (s *Store) Shipping() decimal.Decimal {
	return ShippingFee(s.Subtotal())
}

func (s *Store) Total() decimal.Decimal {
	return Total(s.Snapshot())
}

func (s *Store) ItemCount() int {
	return ItemCount(s.Snapshot())
}
