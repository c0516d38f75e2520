// Package bus implements the in-process message bus described in
// SPEC_FULL.md: point-to-point send, correlated request/response, and
// wildcard publish/subscribe over a single registry, with a resolution
// cache that memoizes per-topic matching subscriptions so publish stays
// O(n) in matches rather than O(S·|topic|·|pattern|).
//
// The bus is explicitly single-threaded and cooperative (spec §5): every
// entry point must be called from one owning goroutine (the platform's
// event loop). There is no internal locking — that is a contract, not an
// oversight.
package bus

import (
	"context"
	"sort"

	"github.com/akriventsev/tradebus/framework/identity"
	"github.com/akriventsev/tradebus/framework/metrics"
	"github.com/akriventsev/tradebus/framework/transport"
	"github.com/rs/zerolog"
)

// Counters are the bus's four monotonically non-decreasing dispatch
// counters (spec §3), incremented only after a successful dispatch.
type Counters struct {
	Sent int64
	Req  int64
	Res  int64
	Pub  int64
}

// Bus is the central dispatch fabric. Construct one with NewBuilder.
type Bus struct {
	name       string
	traderID   identity.TraderID
	instanceID identity.InstanceID
	clock      identity.Clock
	log        zerolog.Logger
	metrics    *metrics.Metrics

	endpoints    *endpointTable
	correlations *correlationTable
	index        *subscriptionIndex
	cache        map[string][]*subscriptionEntry

	serializer       transport.MessageSerializer
	sink             ExternalSink
	hasBacking       bool
	publishableTypes map[string]struct{}

	counters Counters
}

// Endpoints returns all registered endpoint names.
func (b *Bus) Endpoints() []string {
	return b.endpoints.names()
}

// Topics returns the sorted unique set of subscription topic patterns
// currently in the index.
func (b *Bus) Topics() []string {
	return b.index.patterns()
}

// Counters returns a snapshot of the dispatch counters.
func (b *Bus) Counters() Counters {
	return b.counters
}

// Name, TraderID, InstanceID expose the bus's construction-time identity,
// useful for log correlation by callers wiring up multiple buses.
func (b *Bus) Name() string                      { return b.name }
func (b *Bus) TraderID() identity.TraderID       { return b.traderID }
func (b *Bus) InstanceID() identity.InstanceID   { return b.instanceID }

// --- Endpoint operations (spec §4.2) ---

// Register binds handler to endpoint. Fails with ErrAlreadyRegistered if
// the endpoint already has a handler.
func (b *Bus) Register(endpoint string, h Handler) error {
	if endpoint == "" || !h.valid() {
		return newBusError(ErrInvalidArgument, "endpoint and handler are required")
	}
	if err := b.endpoints.register(endpoint, h); err != nil {
		return err
	}
	b.log.Debug().Str("endpoint", endpoint).Str("handler", h.ID).Msg("endpoint registered")
	return nil
}

// Deregister removes the handler bound to endpoint. Fails with
// ErrNotRegistered if endpoint is absent, ErrHandlerMismatch if the stored
// handler's ID does not match h's.
func (b *Bus) Deregister(endpoint string, h Handler) error {
	if endpoint == "" || !h.valid() {
		return newBusError(ErrInvalidArgument, "endpoint and handler are required")
	}
	if err := b.endpoints.deregister(endpoint, h); err != nil {
		return err
	}
	b.log.Debug().Str("endpoint", endpoint).Msg("endpoint deregistered")
	return nil
}

// Send looks up endpoint's handler and invokes it synchronously with msg.
// An unknown endpoint is logged and swallowed — not raised, and
// SentCount is left unchanged (spec §4.2, testable property 9).
func (b *Bus) Send(endpoint string, msg Message) error {
	if endpoint == "" {
		return newBusError(ErrInvalidArgument, "endpoint is required")
	}
	h, ok := b.endpoints.lookup(endpoint)
	if !ok {
		b.log.Warn().Str("endpoint", endpoint).Str("code", logUnknownEndpoint).Msg("send to unknown endpoint")
		return nil
	}
	h.call(msg)
	b.counters.Sent++
	if b.metrics != nil {
		b.metrics.RecordSend(context.Background(), endpoint)
	}
	return nil
}

// --- Request / response (spec §4.3) ---

// Request inserts req.ID into the correlation table (unless already
// present — then it is logged and dropped, spec §4.3), then behaves like
// Send to endpoint. Preserves the source's behavior of inserting the
// correlation entry *before* checking the endpoint: a request to a
// missing endpoint still leaks a correlation entry (spec §9, open
// question — preserved deliberately, not a bug we are asked to fix).
func (b *Bus) Request(endpoint string, req Request) error {
	if endpoint == "" || req.ID == "" || req.Callback == nil {
		return newBusError(ErrInvalidArgument, "endpoint, request id and callback are required")
	}
	if b.correlations.has(req.ID) {
		b.log.Warn().Str("id", req.ID).Str("code", logDuplicateRequestID).Msg("duplicate request id")
		return nil
	}
	b.correlations.insert(req.ID, req.Callback)

	h, ok := b.endpoints.lookup(endpoint)
	if !ok {
		b.log.Warn().Str("endpoint", endpoint).Str("code", logUnknownEndpoint).Msg("request to unknown endpoint")
		return nil
	}
	h.call(req)
	b.counters.Req++
	if b.metrics != nil {
		b.metrics.RecordRequest(context.Background(), endpoint)
	}
	return nil
}

// Response pops the callback registered for resp.CorrelationID and
// invokes it with resp. An unknown correlation ID is logged and swallowed.
func (b *Bus) Response(resp Response) error {
	if resp.CorrelationID == "" {
		return newBusError(ErrInvalidArgument, "correlation id is required")
	}
	cb, ok := b.correlations.pop(resp.CorrelationID)
	if !ok {
		b.log.Warn().Str("id", resp.CorrelationID).Str("code", logUnknownCorrelation).Msg("response to unknown correlation id")
		return nil
	}
	cb(resp)
	b.counters.Res++
	if b.metrics != nil {
		b.metrics.RecordResponse(context.Background())
	}
	return nil
}

// IsPendingRequest tests the correlation table for id.
func (b *Bus) IsPendingRequest(id string) bool {
	return b.correlations.has(id)
}

// --- Subscribe / unsubscribe (spec §4.4) ---

// Subscribe adds sub to the index and back-fills every cached topic it now
// matches. Re-subscribing the same (topic, handler) is logged and dropped
// — the existing priority is not updated (spec §4.4, testable property 2).
func (b *Bus) Subscribe(topic string, h Handler, priority int) error {
	if topic == "" || !h.valid() {
		return newBusError(ErrInvalidArgument, "topic and handler are required")
	}
	if priority < 0 {
		return newBusError(ErrInvalidArgument, "priority must be non-negative")
	}
	sub := Subscription{Topic: topic, Handler: h, Priority: priority}
	k := sub.key()
	if _, exists := b.index.get(k); exists {
		b.log.Warn().Str("topic", topic).Str("code", logDuplicateSubscription).Msg("duplicate subscription")
		return nil
	}

	entry := b.index.insert(sub)
	if b.metrics != nil {
		b.metrics.IncrementSubscriptions(context.Background())
	}
	for cachedTopic, subs := range b.cache {
		if !matches(cachedTopic, topic) {
			continue
		}
		subs = append(subs, entry)
		sortDescending(subs)
		b.cache[cachedTopic] = subs
		entry.addTopic(cachedTopic)
	}
	return nil
}

// Unsubscribe removes the (topic, handler) subscription from the index
// and rewrites every cached topic it was recorded against. Cache entries
// are retained even if they become empty — a later publish to that topic
// simply dispatches to no one (spec §4.4).
func (b *Bus) Unsubscribe(topic string, h Handler) error {
	if topic == "" || !h.valid() {
		return newBusError(ErrInvalidArgument, "topic and handler are required")
	}
	k := subscriptionKey{topic: topic, handlerID: h.ID}
	entry, ok := b.index.get(k)
	if !ok {
		b.log.Warn().Str("topic", topic).Str("code", logUnknownSubscription).Msg("unsubscribe of unknown subscription")
		return nil
	}

	for _, cachedTopic := range entry.topics {
		subs := b.cache[cachedTopic]
		filtered := subs[:0]
		for _, s := range subs {
			if s != entry {
				filtered = append(filtered, s)
			}
		}
		b.cache[cachedTopic] = filtered
	}
	b.index.remove(k)
	if b.metrics != nil {
		b.metrics.DecrementSubscriptions(context.Background())
	}
	return nil
}

// --- Publish and lazy resolution (spec §4.5) ---

// Publish dispatches msg to every subscription whose pattern matches
// topic, in priority-descending order, then — if an external sink and
// serializer are configured and msg's type is publishable — emits
// (topic, bytes) to the sink after all in-process handlers have returned.
func (b *Bus) Publish(ctx context.Context, topic string, msg Message) error {
	if topic == "" {
		return newBusError(ErrInvalidArgument, "topic is required")
	}

	subs, ok := b.cache[topic]
	if !ok {
		subs = b.resolve(topic)
	}

	// Dispatch over a snapshot: subscribe/unsubscribe from within a handler
	// must not affect the in-flight iteration (spec §5).
	snapshot := append([]*subscriptionEntry(nil), subs...)
	for _, entry := range snapshot {
		entry.sub.Handler.call(msg)
	}

	b.emitExternal(ctx, topic, msg)
	b.counters.Pub++
	if b.metrics != nil {
		b.metrics.RecordPublish(ctx, topic, len(snapshot))
	}
	return nil
}

// resolve scans the subscription index for patterns matching topic,
// stores the priority-sorted result in the cache, and records topic
// against each matching subscription's entry (spec §4.5, invariants I1/I2).
func (b *Bus) resolve(topic string) []*subscriptionEntry {
	var matched []*subscriptionEntry
	for _, k := range b.index.order {
		entry := b.index.entries[k]
		if matches(topic, entry.sub.Topic) {
			matched = append(matched, entry)
		}
	}
	sortDescending(matched)
	b.cache[topic] = matched
	for _, entry := range matched {
		entry.addTopic(topic)
	}
	return matched
}

func (b *Bus) emitExternal(ctx context.Context, topic string, msg Message) {
	if !b.hasBacking || b.sink == nil || b.serializer == nil {
		return
	}
	typed, ok := msg.(Typed)
	if !ok {
		return
	}
	if _, publishable := b.publishableTypes[typed.PublishableType()]; !publishable {
		return
	}
	payload, err := b.serializer.Serialize(msg)
	if err != nil {
		b.log.Error().Err(err).Str("topic", topic).Msg("failed to serialize message for external sink")
		return
	}
	if err := b.sink.Publish(ctx, topic, payload); err != nil {
		b.log.Error().Err(err).Str("topic", topic).Msg("external sink publish failed")
		if b.metrics != nil {
			b.metrics.RecordExternalPublish(ctx, topic, false)
		}
		return
	}
	if b.metrics != nil {
		b.metrics.RecordExternalPublish(ctx, topic, true)
	}
}

// --- Introspection (spec §4.6) ---

// Subscriptions returns every subscription whose topic pattern is matched
// by pattern (default "*" — all subscriptions). This scans the live index,
// not the resolution cache, and is intended for introspection, not the
// publish hot path.
func (b *Bus) Subscriptions(pattern string) []Subscription {
	if pattern == "" {
		pattern = "*"
	}
	out := make([]Subscription, 0, len(b.index.order))
	for _, k := range b.index.order {
		entry := b.index.entries[k]
		if matches(entry.sub.Topic, pattern) {
			out = append(out, entry.sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

// HasSubscribers reports whether any subscription's topic pattern matches
// pattern.
func (b *Bus) HasSubscribers(pattern string) bool {
	return len(b.Subscriptions(pattern)) > 0
}

// IsSubscribed reports whether (topic, h) identifies an active
// subscription.
func (b *Bus) IsSubscribed(topic string, h Handler) bool {
	_, ok := b.index.get(subscriptionKey{topic: topic, handlerID: h.ID})
	return ok
}
