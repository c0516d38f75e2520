package testing

import (
	"context"
	"testing"

	"github.com/akriventsev/tradebus/framework/bus"
)

type orderPlaced struct {
	OrderID string
}

func (o orderPlaced) PublishableType() string { return bus.TypeOrderPlaced }

func TestNewInMemoryTestEnvironment_BusIsAssembledThroughContainer(t *testing.T) {
	env := NewInMemoryTestEnvironment(t)
	if env.Bus == nil {
		t.Fatal("expected container to produce a non-nil bus")
	}
	if env.Sink == nil {
		t.Fatal("expected a non-nil in-memory sink")
	}

	if err := env.Container.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestNewInMemoryTestEnvironment_PublishReachesSubscriber(t *testing.T) {
	env := NewInMemoryTestEnvironment(t)

	received := make(chan struct{}, 1)
	handler := bus.NewHandler("risk-monitor", func(msg bus.Message) {
		received <- struct{}{}
	})
	if err := env.Bus.Subscribe("order.*", handler, 0); err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}

	if err := env.Bus.Publish(context.Background(), "order.placed", orderPlaced{OrderID: "o-1"}); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	select {
	case <-received:
	default:
		t.Fatal("expected the subscribed handler to have been dispatched")
	}
}
