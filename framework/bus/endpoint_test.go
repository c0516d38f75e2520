package bus

import "testing"

func TestEndpointTable_RegisterDeregister(t *testing.T) {
	tbl := newEndpointTable()
	h := NewHandler("h1", func(Message) {})

	if err := tbl.register("ep", h); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tbl.register("ep", h); err == nil {
		t.Error("expected error re-registering an occupied endpoint")
	}

	other := NewHandler("h2", func(Message) {})
	if err := tbl.deregister("ep", other); err == nil {
		t.Error("expected handler mismatch error on deregister")
	}

	if err := tbl.deregister("ep", h); err != nil {
		t.Fatalf("deregister: %v", err)
	}
	if err := tbl.deregister("ep", h); err == nil {
		t.Error("expected error deregistering an absent endpoint")
	}
}

func TestEndpointTable_Lookup(t *testing.T) {
	tbl := newEndpointTable()
	if _, ok := tbl.lookup("missing"); ok {
		t.Error("expected lookup miss on empty table")
	}
	h := NewHandler("h1", func(Message) {})
	_ = tbl.register("ep", h)
	got, ok := tbl.lookup("ep")
	if !ok || got.ID != "h1" {
		t.Errorf("lookup = %+v, %v; want h1, true", got, ok)
	}
}
