package bus

// Typed is implemented by messages eligible for external publishing. A
// message's concrete type must both implement Typed and have its tag
// present in the bus's resolved publishable-types set before Publish will
// hand it to the external sink (spec §6).
type Typed interface {
	PublishableType() string
}

// externalPublishingTypes is the platform-wide universe of concrete
// message type tags the bus is willing to forward off-process. A fixed,
// trading-domain set (order lifecycle, market data, liveness) — the
// construction-time types filter (Config.TypesFilter, consumed by
// Builder.Build) subtracts from this set, it never adds to it.
var externalPublishingTypes = []string{
	TypeOrderPlaced,
	TypeOrderFilled,
	TypeOrderCancelled,
	TypeBookDelta,
	TypeTradeTick,
	TypeHeartbeat,
}

const (
	TypeOrderPlaced    = "order.placed"
	TypeOrderFilled    = "order.filled"
	TypeOrderCancelled = "order.cancelled"
	TypeBookDelta      = "book.delta"
	TypeTradeTick      = "trade.tick"
	TypeHeartbeat      = "heartbeat"
)

// resolvePublishableTypes computes EXTERNAL_PUBLISHING_TYPES \ filter.
func resolvePublishableTypes(filter []string) map[string]struct{} {
	excluded := make(map[string]struct{}, len(filter))
	for _, t := range filter {
		excluded[t] = struct{}{}
	}
	out := make(map[string]struct{}, len(externalPublishingTypes))
	for _, t := range externalPublishingTypes {
		if _, skip := excluded[t]; skip {
			continue
		}
		out[t] = struct{}{}
	}
	return out
}
