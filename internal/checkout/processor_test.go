package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayProcessor_Waits(t *testing.T) {
	p := NewDelayProcessor(30 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Process(context.Background(), &domain.OrderRecord{}))

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDelayProcessor_HonoursContext(t *testing.T) {
	p := NewDelayProcessor(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Process(ctx, &domain.OrderRecord{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBreakerProcessor_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	boom := errors.New("processor down")
	b := NewBreakerProcessor("test-open", ProcessorFunc(func(context.Context, *domain.OrderRecord) error {
		calls++
		return boom
	}))

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Process(context.Background(), &domain.OrderRecord{}), boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Process(context.Background(), &domain.OrderRecord{})
	assert.ErrorIs(t, err, ErrProcessorUnavailable)
	assert.Equal(t, 3, calls)
}

func TestBreakerProcessor_BusinessRejectionsDoNotTrip(t *testing.T) {
	b := NewBreakerProcessor("test-declines", ProcessorFunc(func(context.Context, *domain.OrderRecord) error {
		return ErrPaymentDeclined
	}))

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, b.Process(context.Background(), &domain.OrderRecord{}), ErrPaymentDeclined)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestRandomDecline(t *testing.T) {
	ok := ProcessorFunc(func(context.Context, *domain.OrderRecord) error { return nil })

	tests := []struct {
		percent int
		roll    int
		want    error
	}{
		{0, 0, nil},
		{5, 4, ErrPaymentDeclined},
		{5, 5, nil},
		{100, 99, ErrPaymentDeclined},
		{-10, 0, nil},
		{250, 99, ErrPaymentDeclined},
	}

	for _, tt := range tests {
		p := NewRandomDecline(ok, tt.percent)
		p.roll = func() int { return tt.roll }
		assert.Equal(t, tt.want, p.Process(context.Background(), &domain.OrderRecord{}), "percent=%d roll=%d", tt.percent, tt.roll)
	}
}

func TestRandomDecline_PassesThroughFailures(t *testing.T) {
	boom := errors.New("boom")
	p := NewRandomDecline(ProcessorFunc(func(context.Context, *domain.OrderRecord) error { return boom }), 0)

	assert.ErrorIs(t, p.Process(context.Background(), &domain.OrderRecord{}), boom)
}
