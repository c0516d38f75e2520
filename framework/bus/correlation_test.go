package bus

import "testing"

func TestCorrelationTable_InsertPop(t *testing.T) {
	c := newCorrelationTable()
	if c.has("x") {
		t.Error("expected empty table to not have x")
	}
	var called bool
	c.insert("x", func(Response) { called = true })
	if !c.has("x") {
		t.Error("expected x to be present after insert")
	}

	cb, ok := c.pop("x")
	if !ok {
		t.Fatal("expected pop to find x")
	}
	cb(Response{})
	if !called {
		t.Error("expected popped callback to be invokable")
	}
	if c.has("x") {
		t.Error("expected x to be gone after pop")
	}
}

func TestCorrelationTable_PopUnknown(t *testing.T) {
	c := newCorrelationTable()
	if _, ok := c.pop("missing"); ok {
		t.Error("expected pop of unknown id to report false")
	}
}
