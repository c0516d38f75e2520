package bus

// Message is anything that can flow through the bus: send/request/response
// payloads and published events. The bus never inspects it except to test
// whether it implements Typed when deciding on external emission.
type Message any

// HandlerFunc is the synchronous, single-argument callable the bus invokes
// for endpoint sends, subscriptions, and response callbacks. It never
// returns a value; errors and panics propagate to the caller of
// Send/Publish/Response (see §7 — the bus never recovers a handler).
type HandlerFunc func(msg Message)

// Handler pairs a callable with an explicit identity key. Go function
// values are not comparable, so the bus cannot deduplicate subscriptions
// by closure equality alone; callers supply an ID that is stable across
// re-subscription attempts (typically derived from the method receiver and
// method name, or a constant string for a package-level handler). Two
// Handlers with the same ID are considered the same handler for the
// purposes of (topic, handler) identity, even if their Fn closures differ.
type Handler struct {
	ID string
	Fn HandlerFunc
}

// NewHandler builds a Handler from an explicit id and callable.
func NewHandler(id string, fn HandlerFunc) Handler {
	return Handler{ID: id, Fn: fn}
}

func (h Handler) call(msg Message) {
	h.Fn(msg)
}

func (h Handler) valid() bool {
	return h.ID != "" && h.Fn != nil
}
