// Package schema defines the schema-context abstraction the migrations
// endpoint dispatches on, plus the registry the application assembles at
// configuration time.
package schema

import "context"

// Context is a handle onto one logical database schema. The migration engine
// behind Migrate is opaque to callers: it either brings the schema fully up
// to date or returns an error.
type Context interface {
	// TypeName returns the fully-qualified identity of this schema context,
	// e.g. "schemagate.contexts.Core". Clients submit this string to select
	// a context.
	TypeName() string

	// Migrate applies all pending migrations for this context. Calling it on
	// an up-to-date schema is a no-op success.
	Migrate(ctx context.Context) error
}

// Descriptor describes one registered schema-context type.
type Descriptor struct {
	// Name is the short registration name, e.g. "core".
	Name string
	// TypeName is the fully-qualified type identity clients submit.
	TypeName string
}

// Factory constructs a fresh Context instance. It is invoked once per
// resolution; implementations must not share mutable per-request state.
type Factory func() (Context, error)
