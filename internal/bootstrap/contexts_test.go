package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemagate/schemagate/internal/migrate"
	"github.com/schemagate/schemagate/internal/schema"
)

func TestNewSchemaRegistryDescriptors(t *testing.T) {
	db := &sql.DB{}
	reg, err := NewSchemaRegistry(db, db, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	descriptors := reg.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "core", descriptors[0].Name)
	assert.Equal(t, migrate.CoreTypeName, descriptors[0].TypeName)
	assert.Equal(t, "audit", descriptors[1].Name)
	assert.Equal(t, migrate.AuditTypeName, descriptors[1].TypeName)
}

func TestNewSchemaRegistryResolvesContexts(t *testing.T) {
	db := &sql.DB{}
	reg, err := NewSchemaRegistry(db, db, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	for _, typeName := range []string{migrate.CoreTypeName, migrate.AuditTypeName} {
		sc, resolveErr := reg.Resolve(typeName)
		require.NoError(t, resolveErr)
		assert.Equal(t, typeName, sc.TypeName())
	}
}

// failingContext always fails to migrate.
type failingContext struct {
	err error
}

func (f *failingContext) TypeName() string                { return "schemagate.contexts.Broken" }
func (f *failingContext) Migrate(_ context.Context) error { return f.err }

func TestMigrateAllStopsOnFailure(t *testing.T) {
	engineErr := errors.New("syntax error at or near")
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register("broken", "schemagate.contexts.Broken", func() (schema.Context, error) {
		return &failingContext{err: engineErr}, nil
	}))

	err := MigrateAll(context.Background(), reg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.ErrorIs(t, err, engineErr)
	assert.Contains(t, err.Error(), "schemagate.contexts.Broken")
}

func TestMigrateAllEmptyRegistry(t *testing.T) {
	err := MigrateAll(context.Background(), schema.NewRegistry(), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.NoError(t, err)
}
