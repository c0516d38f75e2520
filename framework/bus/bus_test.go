package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/akriventsev/tradebus/framework/invoke"
)

type orderPlaced struct {
	ID string
}

func (o orderPlaced) PublishableType() string { return TypeOrderPlaced }

type recordingSink struct {
	calls []string
	err   error
}

func (s *recordingSink) Publish(ctx context.Context, topic string, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, topic)
	return nil
}

func TestSend_UnknownEndpointIsNonFatal(t *testing.T) {
	b := NewBuilder().Build()
	if err := b.Send("nowhere", "hello"); err != nil {
		t.Fatalf("expected unknown endpoint to be swallowed, got %v", err)
	}
	if b.Counters().Sent != 0 {
		t.Error("SentCount must not increment on unknown endpoint")
	}
}

func TestSend_Dispatches(t *testing.T) {
	b := NewBuilder().Build()
	var got Message
	h := NewHandler("h1", func(msg Message) { got = msg })
	if err := b.Register("echo", h); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := b.Send("echo", "ping"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != "ping" {
		t.Errorf("handler did not receive message, got %v", got)
	}
	if b.Counters().Sent != 1 {
		t.Errorf("SentCount = %d, want 1", b.Counters().Sent)
	}
}

func TestRegister_DuplicateEndpoint(t *testing.T) {
	b := NewBuilder().Build()
	h := NewHandler("h1", func(Message) {})
	if err := b.Register("ep", h); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := b.Register("ep", h); err == nil {
		t.Error("expected error re-registering an occupied endpoint")
	}
}

func TestRequestResponse_RoundTrip(t *testing.T) {
	b := NewBuilder().Build()
	h := NewHandler("responder", func(msg Message) {
		req := msg.(Request)
		_ = b.Response(Response{CorrelationID: req.ID, Payload: "pong"})
	})
	if err := b.Register("svc", h); err != nil {
		t.Fatalf("register: %v", err)
	}

	var reply Message
	id := invoke.GenerateCorrelationID()
	req := Request{ID: id, Callback: func(resp Response) { reply = resp.Payload }}
	if err := b.Request("svc", req); err != nil {
		t.Fatalf("request: %v", err)
	}
	if reply != "pong" {
		t.Errorf("callback received %v, want pong", reply)
	}
	if b.IsPendingRequest(id) {
		t.Error("correlation entry should be popped after Response")
	}
	if b.Counters().Req != 1 || b.Counters().Res != 1 {
		t.Errorf("counters = %+v, want Req=1 Res=1", b.Counters())
	}
}

func TestRequest_DuplicateIDIsDropped(t *testing.T) {
	b := NewBuilder().Build()
	h := NewHandler("svc", func(Message) {})
	_ = b.Register("svc", h)

	// Both requests must share one ID, so it stays a literal rather than invoke.GenerateCorrelationID().
	req1 := Request{ID: "dup", Callback: func(Response) {}}
	if err := b.Request("svc", req1); err != nil {
		t.Fatalf("request 1: %v", err)
	}
	req2 := Request{ID: "dup", Callback: func(Response) {}}
	if err := b.Request("svc", req2); err != nil {
		t.Fatalf("request 2: %v", err)
	}
	if b.Counters().Req != 1 {
		t.Errorf("Req = %d, want 1 (duplicate id must be dropped)", b.Counters().Req)
	}
}

func TestRequest_MissingEndpointStillLeaksCorrelation(t *testing.T) {
	b := NewBuilder().Build()
	id := invoke.GenerateCorrelationID()
	req := Request{ID: id, Callback: func(Response) {}}
	if err := b.Request("missing", req); err != nil {
		t.Fatalf("request: %v", err)
	}
	if !b.IsPendingRequest(id) {
		t.Error("correlation entry must be inserted before the endpoint lookup, even when it fails")
	}
}

func TestSubscribe_Idempotent(t *testing.T) {
	b := NewBuilder().Build()
	calls := 0
	h := NewHandler("h1", func(Message) { calls++ })
	if err := b.Subscribe("order.*", h, 50); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	// Re-subscribing the same (topic, handler) is a no-op, priority unchanged.
	if err := b.Subscribe("order.*", h, 1); err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	subs := b.Subscriptions("order.*")
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	if subs[0].Priority != 50 {
		t.Errorf("priority = %d, want 50 (unchanged by duplicate subscribe)", subs[0].Priority)
	}
}

func TestPublish_WildcardDispatchAndPriorityOrder(t *testing.T) {
	b := NewBuilder().Build()
	var order []string
	low := NewHandler("low", func(Message) { order = append(order, "low") })
	high := NewHandler("high", func(Message) { order = append(order, "high") })
	mid := NewHandler("mid", func(Message) { order = append(order, "mid") })

	_ = b.Subscribe("order.*", low, 1)
	_ = b.Subscribe("order.*", high, 100)
	_ = b.Subscribe("order.*", mid, 50)

	if err := b.Publish(context.Background(), "order.placed", "x"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	want := []string{"high", "mid", "low"}
	if len(order) != len(want) {
		t.Fatalf("dispatch order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("dispatch order = %v, want %v", order, want)
		}
	}
	if b.Counters().Pub != 1 {
		t.Errorf("PubCount = %d, want 1", b.Counters().Pub)
	}
}

func TestPublish_EqualPriorityPreservesRegistrationOrder(t *testing.T) {
	b := NewBuilder().Build()
	var order []string
	a := NewHandler("a", func(Message) { order = append(order, "a") })
	bh := NewHandler("b", func(Message) { order = append(order, "b") })
	_ = b.Subscribe("t", a, 10)
	_ = b.Subscribe("t", bh, 10)

	_ = b.Publish(context.Background(), "t", "x")
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("equal-priority dispatch order = %v, want [a b]", order)
	}
}

func TestCache_CoherentUnderSubscribeAfterResolve(t *testing.T) {
	b := NewBuilder().Build()
	var hits int
	h1 := NewHandler("h1", func(Message) { hits++ })
	_ = b.Subscribe("order.*", h1, 10)

	// First publish resolves and caches "order.placed".
	_ = b.Publish(context.Background(), "order.placed", "x")
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}

	// A later subscription whose pattern also matches the cached topic must
	// be back-filled into the cache, not only the live index.
	h2 := NewHandler("h2", func(Message) { hits++ })
	_ = b.Subscribe("order.placed", h2, 10)

	_ = b.Publish(context.Background(), "order.placed", "y")
	if hits != 3 {
		t.Errorf("hits = %d, want 3 (cache must reflect the new subscription)", hits)
	}
}

func TestCache_CoherentUnderUnsubscribeAfterResolve(t *testing.T) {
	b := NewBuilder().Build()
	var hits int
	h := NewHandler("h1", func(Message) { hits++ })
	_ = b.Subscribe("order.*", h, 10)

	_ = b.Publish(context.Background(), "order.placed", "x")
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}

	if err := b.Unsubscribe("order.*", h); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = b.Publish(context.Background(), "order.placed", "y")
	if hits != 1 {
		t.Errorf("hits = %d, want 1 (cache must drop the unsubscribed handler)", hits)
	}
}

func TestPublish_ReentrantSubscribeDoesNotAffectInFlightDispatch(t *testing.T) {
	b := NewBuilder().Build()
	var secondCalled bool
	second := NewHandler("second", func(Message) { secondCalled = true })
	first := NewHandler("first", func(Message) {
		_ = b.Subscribe("t", second, 10)
	})
	_ = b.Subscribe("t", first, 10)

	_ = b.Publish(context.Background(), "t", "x")
	if secondCalled {
		t.Error("a subscription added during dispatch must not receive the in-flight publish")
	}

	secondCalled = false
	_ = b.Publish(context.Background(), "t", "y")
	if !secondCalled {
		t.Error("the new subscription should receive the next publish")
	}
}

func TestPublish_ExternalSinkFiltering(t *testing.T) {
	sink := &recordingSink{}
	b := NewBuilder().
		WithSink(sink).
		WithSerializer(invoke.NewJSONSerializer()).
		WithConfig(&Config{Database: struct{}{}}).
		Build()

	_ = b.Publish(context.Background(), "order.placed", orderPlaced{ID: "1"})
	if len(sink.calls) != 1 || sink.calls[0] != "order.placed" {
		t.Errorf("sink calls = %v, want [order.placed]", sink.calls)
	}

	// A plain, non-Typed message must never reach the sink.
	_ = b.Publish(context.Background(), "untyped.topic", "plain string")
	if len(sink.calls) != 1 {
		t.Errorf("sink calls after untyped publish = %v, want unchanged", sink.calls)
	}
}

func TestPublish_ExternalSinkSkippedWithoutBacking(t *testing.T) {
	sink := &recordingSink{}
	b := NewBuilder().WithSink(nil).WithSerializer(invoke.NewJSONSerializer()).Build()
	_ = b.Publish(context.Background(), "order.placed", orderPlaced{ID: "1"})
	if len(sink.calls) != 0 {
		t.Error("sink must not be called when has_backing is false")
	}
}

func TestPublish_TypesFilterExcludesTag(t *testing.T) {
	sink := &recordingSink{}
	b := NewBuilder().
		WithSink(sink).
		WithSerializer(invoke.NewJSONSerializer()).
		WithConfig(&Config{Database: struct{}{}, TypesFilter: []string{TypeOrderPlaced}}).
		Build()

	_ = b.Publish(context.Background(), "order.placed", orderPlaced{ID: "1"})
	if len(sink.calls) != 0 {
		t.Error("excluded type must not reach the external sink")
	}
}

func TestPublish_SinkFailureIsLoggedNotRaised(t *testing.T) {
	sink := &recordingSink{err: errors.New("boom")}
	b := NewBuilder().
		WithSink(sink).
		WithSerializer(invoke.NewJSONSerializer()).
		WithConfig(&Config{Database: struct{}{}}).
		Build()

	if err := b.Publish(context.Background(), "order.placed", orderPlaced{ID: "1"}); err != nil {
		t.Errorf("sink failure must not surface from Publish, got %v", err)
	}
}

func TestCountersAreMonotonic(t *testing.T) {
	b := NewBuilder().Build()
	h := NewHandler("h", func(Message) {})
	_ = b.Register("ep", h)
	_ = b.Subscribe("t", h, 10)

	for i := 0; i < 3; i++ {
		_ = b.Send("ep", "x")
		_ = b.Publish(context.Background(), "t", "x")
	}
	c := b.Counters()
	if c.Sent != 3 || c.Pub != 3 {
		t.Errorf("counters = %+v, want Sent=3 Pub=3", c)
	}
}

func TestUnsubscribe_UnknownIsNonFatal(t *testing.T) {
	b := NewBuilder().Build()
	h := NewHandler("h", func(Message) {})
	if err := b.Unsubscribe("never.subscribed", h); err != nil {
		t.Errorf("expected unsubscribe of unknown subscription to be swallowed, got %v", err)
	}
}

func TestHasSubscribers(t *testing.T) {
	b := NewBuilder().Build()
	h := NewHandler("h", func(Message) {})
	if b.HasSubscribers("order.*") {
		t.Error("expected no subscribers before Subscribe")
	}
	_ = b.Subscribe("order.*", h, 10)
	if !b.HasSubscribers("order.*") {
		t.Error("expected HasSubscribers true after Subscribe")
	}
}
