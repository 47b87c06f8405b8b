package migrate

import (
	"database/sql"
	"embed"
	"log/slog"
)

//go:embed migrations/core/*.sql
var coreFS embed.FS

//go:embed migrations/audit/*.sql
var auditFS embed.FS

// Fully-qualified type identities of the schema contexts shipped with the
// application. Clients submit these strings to the migrations endpoint.
const (
	CoreTypeName  = "schemagate.contexts.Core"
	AuditTypeName = "schemagate.contexts.Audit"
)

// NewCoreContext creates the runner for the application's primary schema.
func NewCoreContext(db *sql.DB, logger *slog.Logger) (*Runner, error) {
	return NewRunner(Options{
		DB:       db,
		Logger:   logger,
		Source:   coreFS,
		Dir:      "migrations/core",
		TypeName: CoreTypeName,
	})
}

// NewAuditContext creates the runner for the audit-log schema. It is
// versioned independently of the core context and may share its database or
// use a dedicated one.
func NewAuditContext(db *sql.DB, logger *slog.Logger) (*Runner, error) {
	return NewRunner(Options{
		DB:           db,
		Logger:       logger,
		Source:       auditFS,
		Dir:          "migrations/audit",
		TypeName:     AuditTypeName,
		VersionTable: "audit_schema_migrations",
	})
}
