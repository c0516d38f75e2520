package bus

import (
	"github.com/akriventsev/tradebus/framework/identity"
	"github.com/akriventsev/tradebus/framework/metrics"
	"github.com/akriventsev/tradebus/framework/transport"
	"github.com/rs/zerolog"
)

// Builder assembles a Bus with the teacher framework's fluent WithX
// chaining idiom (framework/container/builder.go).
type Builder struct {
	name       string
	traderID   identity.TraderID
	instanceID identity.InstanceID
	clock      identity.Clock
	log        zerolog.Logger
	metrics    *metrics.Metrics
	serializer transport.MessageSerializer
	sink       ExternalSink
	config     *Config
}

// NewBuilder starts a Bus builder with the defaults spec §6 names: an
// empty trader ID, a freshly generated instance ID, and the component
// class name "tradebus.Bus".
func NewBuilder() *Builder {
	return &Builder{
		name:       "tradebus.Bus",
		instanceID: identity.NewInstanceID(),
		clock:      identity.SystemClock{},
		log:        zerolog.Nop(),
	}
}

func (b *Builder) WithName(name string) *Builder {
	if name != "" {
		b.name = name
	}
	return b
}

func (b *Builder) WithTraderID(id identity.TraderID) *Builder {
	b.traderID = id
	return b
}

func (b *Builder) WithInstanceID(id identity.InstanceID) *Builder {
	if id != "" {
		b.instanceID = id
	}
	return b
}

func (b *Builder) WithClock(clock identity.Clock) *Builder {
	if clock != nil {
		b.clock = clock
	}
	return b
}

func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	return b
}

func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

func (b *Builder) WithSerializer(s transport.MessageSerializer) *Builder {
	b.serializer = s
	return b
}

// WithSink sets the external publishing transport and implicitly enables
// has_backing (spec §6 models this as config.database presence; in Go the
// concrete sink handle serves the same role).
func (b *Builder) WithSink(sink ExternalSink) *Builder {
	b.sink = sink
	return b
}

// WithConfig attaches the spec's configuration object. Build() consumes
// Config.TypesFilter (clearing it from the caller's copy) and reads
// Config.Database for has_backing, same as WithSink but via the config
// object instead of (or in addition to) a direct sink handle.
func (b *Builder) WithConfig(cfg *Config) *Builder {
	b.config = cfg
	return b
}

// Build assembles the Bus. EXTERNAL_PUBLISHING_TYPES \ types_filter is
// computed here, once, and the config's filter is cleared afterwards
// (spec §9 — preserved, not re-justified).
func (b *Builder) Build() *Bus {
	filter := b.config.consumeTypesFilter()
	hasBacking := b.sink != nil || b.config.hasBacking()

	bus := &Bus{
		name:             b.name,
		traderID:         b.traderID,
		instanceID:       b.instanceID,
		clock:            b.clock,
		log:              b.log,
		metrics:          b.metrics,
		endpoints:        newEndpointTable(),
		correlations:     newCorrelationTable(),
		index:            newSubscriptionIndex(),
		cache:            make(map[string][]*subscriptionEntry),
		serializer:       b.serializer,
		sink:             b.sink,
		hasBacking:       hasBacking,
		publishableTypes: resolvePublishableTypes(filter),
	}

	bus.log.Info().
		Str("name", bus.name).
		Str("trader_id", bus.traderID.String()).
		Str("instance_id", bus.instanceID.String()).
		Time("started_at", bus.clock.Now()).
		Bool("has_backing", bus.hasBacking).
		Msg("bus constructed")

	return bus
}
