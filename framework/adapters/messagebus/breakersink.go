package messagebus

import (
	"context"
	"time"

	"github.com/akriventsev/tradebus/framework/bus"
	"github.com/akriventsev/tradebus/framework/transport"
	cb "github.com/sony/gobreaker"
)

// BreakerSink wraps a bus.ExternalSink with a circuit breaker so a degraded
// broker does not block every Publish call behind a slow or hanging network
// round trip. Trips after 3 consecutive failures or a >50% failure rate
// over 20+ requests within the rolling window, same thresholds as the
// wrapped sink's own underlying broker client would otherwise retry past.
type BreakerSink struct {
	inner   bus.ExternalSink
	breaker *cb.CircuitBreaker
}

// NewBreakerSink names the breaker after the sink for log/metric
// correlation (gobreaker reports state transitions via the Name field).
func NewBreakerSink(name string, inner bus.ExternalSink) *BreakerSink {
	settings := cb.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio > 0.5
		},
	}
	return &BreakerSink{inner: inner, breaker: cb.NewCircuitBreaker(settings)}
}

func (s *BreakerSink) Publish(ctx context.Context, topic string, payload []byte) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Publish(ctx, topic, payload)
	})
	return err
}

// State reports the breaker's current state for health checks.
func (s *BreakerSink) State() cb.State {
	return s.breaker.State()
}

// RetrySink wraps a bus.ExternalSink with transport.RetryPolicy, retrying a
// failed Publish up to policy's max attempts with the policy's delay
// between tries. Intended to sit between the Bus and a BreakerSink: retries
// absorb transient broker blips, the breaker absorbs sustained ones.
type RetrySink struct {
	inner  bus.ExternalSink
	policy transport.RetryPolicy
}

func NewRetrySink(inner bus.ExternalSink, policy transport.RetryPolicy) *RetrySink {
	return &RetrySink{inner: inner, policy: policy}
}

func (s *RetrySink) Publish(ctx context.Context, topic string, payload []byte) error {
	var err error
	for attempt := 0; attempt < s.policy.GetMaxAttempts(); attempt++ {
		err = s.inner.Publish(ctx, topic, payload)
		if err == nil {
			return nil
		}
		if !s.policy.ShouldRetry(attempt, err) {
			return err
		}
		select {
		case <-time.After(s.policy.GetDelay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
