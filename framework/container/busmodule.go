package container

import (
	"context"

	"github.com/akriventsev/tradebus/framework/bus"
	"github.com/akriventsev/tradebus/framework/core"
	"github.com/akriventsev/tradebus/framework/identity"
	"github.com/akriventsev/tradebus/framework/metrics"
	"github.com/rs/zerolog"
)

// BusDependencyKey is the key the bus is stored and retrieved under via
// Get[*bus.Bus](container, BusDependencyKey).
const BusDependencyKey = "bus"

// BusModule adapts a configured bus.Builder into a container Module so the
// shared message bus is initialized alongside every other module, in
// registration-priority order, rather than constructed ad hoc by callers.
type BusModule struct {
	builder *bus.Builder
}

// NewBusModule wraps builder. Callers configure name, trader/instance id,
// clock, logger, metrics, serializer and sink on builder before passing it
// in; BusModule only owns when Build() runs relative to the rest of the
// container's modules.
func NewBusModule(builder *bus.Builder) *BusModule {
	return &BusModule{builder: builder}
}

func (m *BusModule) Name() string            { return "bus" }
func (m *BusModule) Type() core.ComponentType { return core.ComponentTypeModule }
func (m *BusModule) Dependencies() []string  { return nil }
func (m *BusModule) Priority() core.Priority  { return core.PriorityHigh }

// Initialize builds the bus and stores it in the container under
// BusDependencyKey.
func (m *BusModule) Initialize(ctx context.Context, c *Container) error {
	b := m.builder.Build()
	return Set(c, BusDependencyKey, b)
}

// DefaultBusModule builds a BusModule with the identity, logging and
// metrics defaults most callers want: a fresh instance ID, the system
// clock, and the supplied logger/metrics wired straight through.
func DefaultBusModule(name string, traderID identity.TraderID, log zerolog.Logger, m *metrics.Metrics) *BusModule {
	return NewBusModule(bus.NewBuilder().
		WithName(name).
		WithTraderID(traderID).
		WithLogger(log).
		WithMetrics(m))
}
