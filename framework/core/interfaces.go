// Package core provides the base interfaces every framework component
// implements so the container can wire, start, and health-check it
// uniformly regardless of concern (bus, sink, transport).
package core

import "context"

// Component is the base interface for anything the container can host.
type Component interface {
	Name() string
	Type() ComponentType
}

// Lifecycle is implemented by components with explicit start/stop phases.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// HealthCheckable is implemented by components the observability layer
// can poll for health.
type HealthCheckable interface {
	HealthCheck(ctx context.Context) error
}
