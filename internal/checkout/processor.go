package checkout

import (
	"context"
	"math/rand"
	"time"

	"github.com/fjod/go_cellar/internal/domain"
)

// DefaultProcessingDelay is how long the simulated order processing takes.
const DefaultProcessingDelay = 2 * time.Second

// Processor performs the fallible part of placing an order.
type Processor interface {
	Process(ctx context.Context, order *domain.OrderRecord) error
}

type ProcessorFunc func(ctx context.Context, order *domain.OrderRecord) error

func (f ProcessorFunc) Process(ctx context.Context, order *domain.OrderRecord) error {
	return f(ctx, order)
}

// DelayProcessor waits a fixed time and then accepts every order.
type DelayProcessor struct {
	delay time.Duration
}

func NewDelayProcessor(delay time.Duration) *DelayProcessor {
	return &DelayProcessor{delay: delay}
}

func (p *DelayProcessor) Process(ctx context.Context, _ *domain.OrderRecord) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RandomDecline declines a share of the orders that next accepted, standing in for a
// payment provider. percent is clamped to [0, 100].
type RandomDecline struct {
	next    Processor
	percent int
	roll    func() int // returns a value in [0, 100)
}

func NewRandomDecline(next Processor, percent int) *RandomDecline {
	return &RandomDecline{next: next, percent: min(max(percent, 0), 100), roll: func() int { return rand.Intn(100) }}
}

func (p *RandomDecline) Process(ctx context.Context, order *domain.OrderRecord) error {
	if err := p.next.Process(ctx, order); err != nil {
		return err
	}
	if p.roll() < p.percent {
		return ErrPaymentDeclined
	}
	return nil
}
