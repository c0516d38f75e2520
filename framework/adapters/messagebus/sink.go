package messagebus

import "context"

// RedisSink adapts a *RedisAdapter to bus.ExternalSink so a Bus can forward
// publishable messages to a Redis Stream without framework/bus importing
// this package (or redis) directly.
type RedisSink struct {
	adapter *RedisAdapter
}

// NewRedisSink wraps an already-constructed RedisAdapter.
func NewRedisSink(adapter *RedisAdapter) *RedisSink {
	return &RedisSink{adapter: adapter}
}

func (s *RedisSink) Publish(ctx context.Context, topic string, payload []byte) error {
	return s.adapter.Publish(ctx, topic, payload, nil)
}

// KafkaSink adapts a *KafkaAdapter to bus.ExternalSink.
type KafkaSink struct {
	adapter *KafkaAdapter
}

func NewKafkaSink(adapter *KafkaAdapter) *KafkaSink {
	return &KafkaSink{adapter: adapter}
}

func (s *KafkaSink) Publish(ctx context.Context, topic string, payload []byte) error {
	return s.adapter.Publish(ctx, topic, payload, nil)
}

// NATSSink adapts a *NATSAdapter to bus.ExternalSink.
type NATSSink struct {
	adapter *NATSAdapter
}

func NewNATSSink(adapter *NATSAdapter) *NATSSink {
	return &NATSSink{adapter: adapter}
}

func (s *NATSSink) Publish(ctx context.Context, topic string, payload []byte) error {
	return s.adapter.Publish(ctx, topic, payload, nil)
}

// InMemorySink adapts a *InMemoryAdapter to bus.ExternalSink — useful for
// tests and local development where Build() needs a non-nil sink without a
// real broker.
type InMemorySink struct {
	adapter *InMemoryAdapter
}

func NewInMemorySink(adapter *InMemoryAdapter) *InMemorySink {
	return &InMemorySink{adapter: adapter}
}

func (s *InMemorySink) Publish(ctx context.Context, topic string, payload []byte) error {
	return s.adapter.Publish(ctx, topic, payload, nil)
}
