package events

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher wraps a Publisher in a circuit breaker so a dead broker
// fails fast instead of stalling order placement on every request.
type BreakerPublisher struct {
	inner   Publisher
	breaker *gobreaker.CircuitBreaker[any]
}

func NewBreakerPublisher(inner Publisher) *BreakerPublisher {
	settings := gobreaker.Settings{
		Name:        "order-events",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("event publisher breaker state changed")
		},
	}
	return &BreakerPublisher{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (p *BreakerPublisher) PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.inner.PublishOrderPlaced(ctx, event)
	})
	return err
}

func (p *BreakerPublisher) Close() error {
	return p.inner.Close()
}
