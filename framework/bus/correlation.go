package bus

// Request carries what the bus needs to correlate a future response: a
// caller-chosen, globally-unique-for-its-lifetime ID and the callback to
// invoke once Response arrives (spec §3, §4.3).
type Request struct {
	ID       string
	Callback func(resp Response)
}

// Response is handed to Response() and, unmodified, to the pending
// callback. CorrelationID must match the ID of the originating Request.
type Response struct {
	CorrelationID string
	Payload       Message
}

// correlationTable maps a request ID to its pending response callback.
// Entries are inserted by request() and removed (popped) by response(), or
// — intentionally — never, if no response ever arrives (spec §9: this is a
// deliberate memory trade, not a leak to be fixed).
type correlationTable struct {
	pending map[string]func(resp Response)
}

func newCorrelationTable() *correlationTable {
	return &correlationTable{pending: make(map[string]func(resp Response))}
}

func (c *correlationTable) has(id string) bool {
	_, ok := c.pending[id]
	return ok
}

func (c *correlationTable) insert(id string, cb func(resp Response)) {
	c.pending[id] = cb
}

func (c *correlationTable) pop(id string) (func(resp Response), bool) {
	cb, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return cb, ok
}
