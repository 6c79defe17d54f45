package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// BreakerProcessor runs a Processor behind a circuit breaker. Declined payments and stock
// conflicts are answers, not faults, and never trip it.
type BreakerProcessor struct {
	cb   *gobreaker.CircuitBreaker[struct{}]
	next Processor
	name string
}

func NewBreakerProcessor(name string, next Processor) *BreakerProcessor {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrInventoryConflict)
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			log.WithFields(log.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &BreakerProcessor{cb: cb, next: next, name: name}
}

func (b *BreakerProcessor) Process(ctx context.Context, order *domain.OrderRecord) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Process(ctx, order)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit %s: %v", ErrProcessorUnavailable, b.name, err)
	}
	return err
}

func (b *BreakerProcessor) State() gobreaker.State {
	return b.cb.State()
}

// stateValue maps a breaker state to the gauge value (0=closed, 1=open, 2=half-open).
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
