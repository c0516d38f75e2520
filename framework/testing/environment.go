// Package testing предоставляет утилиты для тестирования приложений на базе фреймворка.
package testing

import (
	"context"
	"testing"

	"github.com/akriventsev/tradebus/framework/adapters/messagebus"
	"github.com/akriventsev/tradebus/framework/bus"
	"github.com/akriventsev/tradebus/framework/container"
	"github.com/akriventsev/tradebus/framework/identity"
)

// InMemoryTestEnvironment тестовая среда с готовой шиной и in-memory sink'ом
// вместо реального брокера. Шина собирается через container.BusModule, тем
// же путем, которым cmd/tradebusd собирает боевую шину — так тест видит
// те же ошибки инициализации, что и реальный процесс.
type InMemoryTestEnvironment struct {
	Bus       *bus.Bus
	Sink      *messagebus.InMemorySink
	Container *container.Container
}

// NewInMemoryTestEnvironment создает новую тестовую среду с готовыми компонентами.
// Если сборка контейнера завершается с ошибкой, тест завершается с t.Fatalf.
func NewInMemoryTestEnvironment(t *testing.T) *InMemoryTestEnvironment {
	adapter := messagebus.NewInMemoryAdapter(messagebus.DefaultInMemoryConfig())
	sink := messagebus.NewInMemorySink(adapter)

	busModule := container.NewBusModule(bus.NewBuilder().
		WithName("test.Bus").
		WithTraderID(identity.TraderID("test-trader")).
		WithSink(sink))

	builder := container.NewContainerBuilder(&container.Config{}).
		WithDefaults().
		WithModule(busModule)

	cnt, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("failed to build test container: %v", err)
	}

	b, err := container.Get[*bus.Bus](cnt, container.BusDependencyKey)
	if err != nil {
		t.Fatalf("bus module did not register a bus: %v", err)
	}

	return &InMemoryTestEnvironment{
		Bus:       b,
		Sink:      sink,
		Container: cnt,
	}
}

// Shutdown корректно завершает работу тестовой среды
func (e *InMemoryTestEnvironment) Shutdown(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Shutdown(ctx)
	}
	return nil
}
