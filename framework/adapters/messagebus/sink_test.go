package messagebus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	calls int
	err   error
}

func (s *fakeSink) Publish(ctx context.Context, topic string, payload []byte) error {
	s.calls++
	return s.err
}

func TestRetrySink_StopsAfterMaxAttempts(t *testing.T) {
	sink := &fakeSink{err: errors.New("transient")}
	policy := &retryPolicyStub{maxAttempts: 3}
	retry := NewRetrySink(sink, policy)

	err := retry.Publish(context.Background(), "order.placed", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, 3, sink.calls)
}

func TestRetrySink_SucceedsOnFirstTry(t *testing.T) {
	sink := &fakeSink{}
	policy := &retryPolicyStub{maxAttempts: 3}
	retry := NewRetrySink(sink, policy)

	err := retry.Publish(context.Background(), "order.placed", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, sink.calls)
}

func TestBreakerSink_TripsAfterConsecutiveFailures(t *testing.T) {
	sink := &fakeSink{err: errors.New("boom")}
	breaker := NewBreakerSink("test-sink", sink)

	for i := 0; i < 3; i++ {
		_ = breaker.Publish(context.Background(), "t", nil)
	}
	assert.Equal(t, 3, sink.calls)

	// The breaker is now open: the next call fails without reaching the sink.
	err := breaker.Publish(context.Background(), "t", nil)
	require.Error(t, err)
	assert.Equal(t, 3, sink.calls)
}

type retryPolicyStub struct {
	maxAttempts int
}

func (p *retryPolicyStub) ShouldRetry(attempt int, err error) bool { return attempt < p.maxAttempts-1 }
func (p *retryPolicyStub) GetDelay(attempt int) time.Duration      { return 0 }
func (p *retryPolicyStub) GetMaxAttempts() int                     { return p.maxAttempts }
