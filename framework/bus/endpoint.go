package bus

// endpointTable maps an endpoint name to exactly one handler. Insertion
// order is irrelevant; keys are unique (spec §3).
type endpointTable struct {
	handlers map[string]Handler
}

func newEndpointTable() *endpointTable {
	return &endpointTable{handlers: make(map[string]Handler)}
}

func (t *endpointTable) register(name string, h Handler) error {
	if _, exists := t.handlers[name]; exists {
		return newBusError(ErrAlreadyRegistered, "endpoint already registered: "+name)
	}
	t.handlers[name] = h
	return nil
}

func (t *endpointTable) deregister(name string, h Handler) error {
	existing, ok := t.handlers[name]
	if !ok {
		return newBusError(ErrNotRegistered, "endpoint not registered: "+name)
	}
	if existing.ID != h.ID {
		return newBusError(ErrHandlerMismatch, "handler mismatch for endpoint: "+name)
	}
	delete(t.handlers, name)
	return nil
}

func (t *endpointTable) lookup(name string) (Handler, bool) {
	h, ok := t.handlers[name]
	return h, ok
}

func (t *endpointTable) names() []string {
	out := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		out = append(out, name)
	}
	return out
}
