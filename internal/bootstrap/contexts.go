package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/schemagate/schemagate/internal/migrate"
	"github.com/schemagate/schemagate/internal/schema"
)

// NewSchemaRegistry assembles the registry of schema contexts known to the
// application. The mapping from type name to factory is explicit and built
// here once; the migrations endpoint never derives types from client input.
// coreDB and auditDB may be the same pool when the audit context has no
// database configuration of its own.
func NewSchemaRegistry(coreDB, auditDB *sql.DB, logger *slog.Logger) (*schema.Registry, error) {
	reg := schema.NewRegistry()

	if err := reg.Register("core", migrate.CoreTypeName, func() (schema.Context, error) {
		return migrate.NewCoreContext(coreDB, logger)
	}); err != nil {
		return nil, fmt.Errorf("register core schema context: %w", err)
	}

	if err := reg.Register("audit", migrate.AuditTypeName, func() (schema.Context, error) {
		return migrate.NewAuditContext(auditDB, logger)
	}); err != nil {
		return nil, fmt.Errorf("register audit schema context: %w", err)
	}

	return reg, nil
}

// MigrateAll applies pending migrations for every registered schema context.
// Used at startup when RUN_MIGRATIONS_ON_START is enabled.
func MigrateAll(ctx context.Context, reg *schema.Registry, logger *slog.Logger) error {
	for _, d := range reg.Descriptors() {
		sc, err := reg.Resolve(d.TypeName)
		if err != nil {
			return fmt.Errorf("resolve schema context %s: %w", d.TypeName, err)
		}
		if err := sc.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate schema context %s: %w", d.TypeName, err)
		}
		logger.InfoContext(ctx, "migrations applied on startup", "context", d.TypeName)
	}
	return nil
}
