package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cellar/internal/cart"
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/metrics"
	"github.com/fjod/go_cellar/internal/order"
	log "github.com/sirupsen/logrus"
)

// DefaultProcessingTimeout bounds a single order processing run.
const DefaultProcessingTimeout = 10 * time.Second

type Option func(*Transition)

// WithClock replaces time.Now for order ids and dates.
func WithClock(now func() time.Time) Option {
	return func(t *Transition) { t.now = now }
}

func WithProcessingTimeout(d time.Duration) Option {
	return func(t *Transition) { t.timeout = d }
}

// Transition is one session's checkout state machine: EDITING -> SUBMITTING -> COMPLETED,
// falling back to EDITING when processing fails.
type Transition struct {
	mu     sync.Mutex
	state  domain.CheckoutState
	draft  domain.CheckoutForm
	errors domain.FieldErrors

	cart      *cart.Store
	orders    *order.Repository
	processor Processor
	timeout   time.Duration
	now       func() time.Time
}

func NewTransition(c *cart.Store, orders *order.Repository, p Processor, opts ...Option) *Transition {
	t := &Transition{
		state:     domain.CheckoutStateEditing,
		draft:     domain.NewCheckoutForm(),
		errors:    domain.FieldErrors{},
		cart:      c,
		orders:    orders,
		processor: p,
		timeout:   DefaultProcessingTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transition) State() domain.CheckoutState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transition) Draft() domain.CheckoutForm {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// Errors returns the field errors of the last rejected submission that the user has not yet edited.
func (t *Transition) Errors() domain.FieldErrors {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(domain.FieldErrors, len(t.errors))
	for f, msg := range t.errors {
		out[f] = msg
	}
	return out
}

// UpdateDraft applies field edits to the draft. Editing a field clears its error. The patch
// is applied entirely or not at all.
func (t *Transition) UpdateDraft(patch map[domain.Field]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.IsBusy() {
		return ErrSubmissionInProgress
	}

	next := t.draft
	for field, value := range patch {
		if err := next.Set(field, value); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
	}
	for field := range patch {
		t.errors.Clear(field)
	}
	t.draft = next
	return nil
}

// Submit validates form and, when valid, places the order for the current cart. The cart is
// frozen for the whole submission, so the order covers exactly the lines it ends up clearing.
// Processing outlives the caller's context: once started it is bounded only by the processing
// timeout.
func (t *Transition) Submit(ctx context.Context, form domain.CheckoutForm) (*domain.OrderRecord, error) {
	t.mu.Lock()
	if t.state.IsBusy() {
		t.mu.Unlock()
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, ErrSubmissionInProgress
	}
	t.draft = form

	if t.cart.IsEmpty() {
		t.mu.Unlock()
		return nil, ErrEmptyCart
	}

	if errs := Validate(form); !errs.Valid() {
		t.errors = errs
		if t.state != domain.CheckoutStateEditing {
			t.setState(domain.CheckoutStateEditing)
		}
		t.mu.Unlock()
		metrics.OrdersTotal.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Fields: errs}
	}

	snap := t.cart.Freeze()
	if snap.IsEmpty() {
		t.cart.Unfreeze()
		t.mu.Unlock()
		return nil, ErrEmptyCart
	}

	t.errors = domain.FieldErrors{}
	t.setState(domain.CheckoutStateSubmitting)
	t.mu.Unlock()

	record := t.newRecord(form, snap)
	logger := log.WithField("order_id", record.OrderID)
	logger.WithField("total", record.Total.StringFixed(2)).Info("Processing order")

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	if err := t.process(pctx, record); err != nil {
		logger.WithError(err).Warn("Order processing failed")
		t.fail()
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := t.orders.SaveLast(pctx, record); err != nil {
		logger.WithError(err).Error("Failed to save order")
		t.fail()
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := t.cart.Settle(pctx); err != nil {
		logger.WithError(err).Error("Order placed but cart could not be cleared")
	}

	t.mu.Lock()
	t.draft = domain.NewCheckoutForm()
	t.setState(domain.CheckoutStateCompleted)
	t.mu.Unlock()

	metrics.OrdersTotal.WithLabelValues("completed").Inc()
	logger.Info("Order completed successfully")
	return record, nil
}

func (t *Transition) process(ctx context.Context, record *domain.OrderRecord) error {
	err := t.processor.Process(ctx, record)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrProcessingTimeout, t.timeout)
	}
	return err
}

// fail returns to EDITING with the cart editable and intact.
func (t *Transition) fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cart.Unfreeze()
	t.setState(domain.CheckoutStateEditing)
}

// setState must be called with t.mu held.
func (t *Transition) setState(to domain.CheckoutState) {
	if !domain.CanTransitionTo(t.state, to) {
		log.WithFields(log.Fields{"from": t.state, "to": to}).Warn("unexpected checkout transition")
	}
	t.state = to
}

func (t *Transition) newRecord(form domain.CheckoutForm, snap domain.CartSnapshot) *domain.OrderRecord {
	now := t.now()
	lines := make([]domain.OrderLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, domain.OrderLine{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Vintage:  l.Vintage,
			Quantity: l.Quantity,
			Price:    l.Price,
		})
	}
	subtotal := cart.Subtotal(snap)
	shipping := cart.ShippingFee(subtotal)

	return &domain.OrderRecord{
		OrderID:   fmt.Sprintf("ORD-%d", now.UnixMilli()),
		CreatedAt: now,
		Customer:  form,
		Lines:     lines,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
	}
}
