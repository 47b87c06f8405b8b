// Package mocks provides mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for our interfaces. To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for the schema Context interface. This creates MockContext
// with TypeName and Migrate methods.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=schema_context_mock.go github.com/schemagate/schemagate/internal/schema Context
