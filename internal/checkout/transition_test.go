package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_cellar/internal/cart"
	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/order"
	"github.com/fjod/go_cellar/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	cart   *cart.Store
	orders *order.Repository
	tr     *Transition
}

func newFixture(t *testing.T, p Processor, opts ...Option) *fixture {
	t.Helper()
	kv := storage.NewMemoryStore()
	c, err := cart.Restore(context.Background(), kv, catalog.NewStatic(catalog.DefaultItems()))
	require.NoError(t, err)
	orders := order.NewRepository(kv)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{cart: c, orders: orders, tr: NewTransition(c, orders, p, opts...)}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.cart.Add(ctx, "wine-001"))
	require.NoError(t, f.cart.Add(ctx, "wine-004"))
	require.NoError(t, f.cart.Add(ctx, "wine-004"))
}

func TestSubmit_PlacesOrder(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))
	f.fillCart(t)

	record, err := f.tr.Submit(context.Background(), validForm())

	require.NoError(t, err)
	assert.Equal(t, "ORD-1715333400000", record.OrderID)
	assert.True(t, record.Subtotal.Equal(decimal.RequireFromString("145.00")))
	assert.True(t, record.Shipping.IsZero())
	assert.True(t, record.Total.Equal(decimal.RequireFromString("145.00")))
	assert.Len(t, record.Lines, 2)
	assert.Equal(t, "Giulia", record.Customer.FirstName)
	assert.Equal(t, domain.CheckoutStateCompleted, f.tr.State())

	assert.Equal(t, 0, f.cart.ItemCount())
	assert.False(t, f.cart.Active())

	last, err := f.orders.Last(context.Background())
	require.NoError(t, err)
	assert.Equal(t, record.OrderID, last.OrderID)
	assert.True(t, last.Total.Equal(record.Total))
}

func TestSubmit_ChargesShippingUnderThreshold(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))
	require.NoError(t, f.cart.Add(context.Background(), "wine-006"))

	record, err := f.tr.Submit(context.Background(), validForm())

	require.NoError(t, err)
	assert.True(t, record.Shipping.Equal(decimal.RequireFromString("9.90")))
	assert.True(t, record.Total.Equal(decimal.RequireFromString("33.90")))
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))

	_, err := f.tr.Submit(context.Background(), validForm())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, domain.CheckoutStateEditing, f.tr.State())
}

func TestSubmit_InvalidFormStaysEditing(t *testing.T) {
	called := false
	f := newFixture(t, ProcessorFunc(func(context.Context, *domain.OrderRecord) error {
		called = true
		return nil
	}))
	f.fillCart(t)
	form := validForm()
	form.Email = "nope"
	form.ZipCode = "123"

	_, err := f.tr.Submit(context.Background(), form)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.FieldEmail, verr.First())
	assert.Len(t, verr.Fields, 2)
	assert.Equal(t, verr.Fields, f.tr.Errors())
	assert.Equal(t, "nope", f.tr.Draft().Email)
	assert.Equal(t, domain.CheckoutStateEditing, f.tr.State())
	assert.False(t, called)
	assert.Equal(t, 3, f.cart.ItemCount())
}

func TestUpdateDraft_ClearsEditedFieldErrors(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))
	f.fillCart(t)
	_, err := f.tr.Submit(context.Background(), domain.NewCheckoutForm())
	require.Error(t, err)
	require.Len(t, f.tr.Errors(), 9)

	require.NoError(t, f.tr.UpdateDraft(map[domain.Field]string{
		domain.FieldFirstName:   "Giulia",
		domain.FieldAcceptTerms: "true",
	}))

	errs := f.tr.Errors()
	assert.Len(t, errs, 7)
	assert.NotContains(t, errs, domain.FieldFirstName)
	assert.NotContains(t, errs, domain.FieldAcceptTerms)
	assert.Equal(t, "Giulia", f.tr.Draft().FirstName)
	assert.True(t, f.tr.Draft().AcceptTerms)
}

func TestUpdateDraft_UnknownFieldChangesNothing(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))

	err := f.tr.UpdateDraft(map[domain.Field]string{
		domain.FieldCity: "Alba",
		"favouriteWine":  "Barolo",
	})

	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Empty(t, f.tr.Draft().City)
	assert.Equal(t, domain.DefaultCountry, f.tr.Draft().Country)
}

func TestSubmit_ResubmissionWhileProcessingIsRejected(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, ProcessorFunc(func(ctx context.Context, _ *domain.OrderRecord) error {
		<-release
		return nil
	}))
	f.fillCart(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.tr.Submit(context.Background(), validForm())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return f.tr.State() == domain.CheckoutStateSubmitting
	}, time.Second, time.Millisecond)

	_, err := f.tr.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, f.tr.UpdateDraft(map[domain.Field]string{domain.FieldNotes: "x"}), ErrSubmissionInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, domain.CheckoutStateCompleted, f.tr.State())
}

func TestSubmit_ProcessorFailureReturnsToEditing(t *testing.T) {
	for _, want := range []error{ErrPaymentDeclined, ErrInventoryConflict} {
		t.Run(want.Error(), func(t *testing.T) {
			f := newFixture(t, ProcessorFunc(func(context.Context, *domain.OrderRecord) error {
				return want
			}))
			f.fillCart(t)

			_, err := f.tr.Submit(context.Background(), validForm())

			assert.ErrorIs(t, err, want)
			assert.Equal(t, domain.CheckoutStateEditing, f.tr.State())
			assert.Equal(t, 3, f.cart.ItemCount())
			_, err = f.orders.Last(context.Background())
			assert.ErrorIs(t, err, order.ErrNoOrder)
		})
	}
}

func TestSubmit_ProcessingTimeout(t *testing.T) {
	f := newFixture(t, ProcessorFunc(func(ctx context.Context, _ *domain.OrderRecord) error {
		<-ctx.Done()
		return ctx.Err()
	}), WithProcessingTimeout(20*time.Millisecond))
	f.fillCart(t)

	_, err := f.tr.Submit(context.Background(), validForm())

	assert.ErrorIs(t, err, ErrProcessingTimeout)
	assert.Equal(t, domain.CheckoutStateEditing, f.tr.State())
	assert.Equal(t, 3, f.cart.ItemCount())
}

func TestSubmit_CallerCancellationDoesNotAbort(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(10*time.Millisecond))
	f.fillCart(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	record, err := f.tr.Submit(ctx, validForm())

	require.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, domain.CheckoutStateCompleted, f.tr.State())
}

func TestSubmit_AgainAfterCompletion(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))
	f.fillCart(t)
	_, err := f.tr.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, domain.NewCheckoutForm(), f.tr.Draft())

	_, err = f.tr.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, f.cart.Add(context.Background(), "wine-002"))
	record, err := f.tr.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, record.Total.Equal(decimal.RequireFromString("84.90")))
}

func TestSubmit_CartIsFrozenWhileProcessing(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, ProcessorFunc(func(ctx context.Context, _ *domain.OrderRecord) error {
		<-release
		return nil
	}))
	f.fillCart(t)
	ctx := context.Background()

	done := make(chan *domain.OrderRecord, 1)
	go func() {
		record, err := f.tr.Submit(ctx, validForm())
		assert.NoError(t, err)
		done <- record
	}()

	require.Eventually(t, func() bool {
		return f.tr.State() == domain.CheckoutStateSubmitting
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, f.cart.Add(ctx, "wine-006"), cart.ErrFrozen)
	assert.ErrorIs(t, f.cart.SetQuantity(ctx, "wine-001", 5), cart.ErrFrozen)
	assert.ErrorIs(t, f.cart.Remove(ctx, "wine-004"), cart.ErrFrozen)
	assert.ErrorIs(t, f.cart.Clear(ctx), cart.ErrFrozen)
	assert.Equal(t, 3, f.cart.ItemCount())

	close(release)
	record := <-done
	require.NotNil(t, record)
	assert.Len(t, record.Lines, 2)
	assert.Equal(t, 0, f.cart.ItemCount())
	assert.False(t, f.cart.Frozen())

	require.NoError(t, f.cart.Add(ctx, "wine-006"))
	assert.Equal(t, 1, f.cart.ItemCount())
}

func TestSubmit_FailureUnfreezesCart(t *testing.T) {
	f := newFixture(t, ProcessorFunc(func(context.Context, *domain.OrderRecord) error {
		return ErrPaymentDeclined
	}))
	f.fillCart(t)

	_, err := f.tr.Submit(context.Background(), validForm())
	require.ErrorIs(t, err, ErrPaymentDeclined)

	assert.False(t, f.cart.Frozen())
	require.NoError(t, f.cart.Add(context.Background(), "wine-002"))
	assert.Equal(t, 4, f.cart.ItemCount())
}

func TestSubmit_InvalidFormAfterCompletionReturnsToEditing(t *testing.T) {
	f := newFixture(t, NewDelayProcessor(0))
	f.fillCart(t)
	_, err := f.tr.Submit(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, domain.CheckoutStateCompleted, f.tr.State())

	require.NoError(t, f.cart.Add(context.Background(), "wine-002"))
	form := validForm()
	form.Email = "not-an-email"
	_, err = f.tr.Submit(context.Background(), form)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.CheckoutStateEditing, f.tr.State())
	assert.False(t, f.cart.Frozen())
}
