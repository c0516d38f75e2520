package testing

import (
	"context"
	"testing"
)

func TestNewTestContainer_BuildsAndShutsDown(t *testing.T) {
	cnt := NewTestContainer(t)
	if cnt == nil {
		t.Fatal("expected a non-nil container")
	}
	if err := cnt.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
