// Package identity holds the value objects the bus treats as external
// collaborators: who is running it (TraderID), which process instance
// this is (InstanceID), and where wall-clock time comes from (Clock). The
// bus never interprets these values; it only carries them for logging and
// metrics labels.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// TraderID is an opaque trader identifier. The bus treats it as a label
// and never validates it; an empty TraderID is accepted.
type TraderID string

// String implements fmt.Stringer.
func (t TraderID) String() string {
	return string(t)
}

// InstanceID is an opaque per-process identifier, normally a UUID.
type InstanceID string

// String implements fmt.Stringer.
func (i InstanceID) String() string {
	return string(i)
}

// NewInstanceID generates a fresh random InstanceID.
func NewInstanceID() InstanceID {
	return InstanceID(uuid.NewString())
}

// Clock is the wall-clock source the bus uses to timestamp its construction
// log entry. Explicitly an external collaborator (see spec §1); tests can
// supply a fixed clock for deterministic timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
