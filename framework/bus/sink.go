package bus

import "context"

// ExternalSink is the opaque external publishing transport (spec §1, §6):
// a blind byte-sink fed already-serialized (topic, payload) pairs. The bus
// makes no assumption about durability, ordering, or acknowledgement
// beyond that the call returns. Concrete implementations live under
// framework/adapters/messagebus (Redis Streams, Kafka, NATS, in-memory);
// retries and circuit breaking are optional decorators there (RetrySink,
// BreakerSink) that a caller composes around a sink.
type ExternalSink interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
