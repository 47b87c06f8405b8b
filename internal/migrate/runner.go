// Package migrate implements the migration engine behind each schema
// context: embedded SQL files applied in order, tracked in a per-context
// version table. It is safe to run repeatedly; an up-to-date schema is a
// no-op.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Version tables are interpolated into DDL, so the name is restricted to a
// plain identifier.
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

const defaultVersionTable = "schema_migrations"

// Options configures a Runner.
type Options struct {
	DB     *sql.DB
	Logger *slog.Logger

	// Source holds the migration files; Dir is the directory within it.
	Source fs.FS
	Dir    string

	// TypeName is the fully-qualified schema-context identity this runner is
	// registered under.
	TypeName string

	// VersionTable tracks applied migrations. Defaults to
	// "schema_migrations". Contexts sharing a database must use distinct
	// tables.
	VersionTable string
}

// Runner applies the SQL migrations of one schema context. It implements
// schema.Context.
type Runner struct {
	db           *sql.DB
	logger       *slog.Logger
	source       fs.FS
	dir          string
	typeName     string
	versionTable string
}

// NewRunner creates a migration runner for one schema context.
func NewRunner(opts Options) (*Runner, error) {
	if opts.DB == nil {
		return nil, errors.New("migrate runner requires a database")
	}
	if opts.Source == nil {
		return nil, errors.New("migrate runner requires a migration source")
	}
	if opts.TypeName == "" {
		return nil, errors.New("migrate runner requires a type name")
	}
	table := opts.VersionTable
	if table == "" {
		table = defaultVersionTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid version table name %q", table)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		db:           opts.DB,
		logger:       logger.With("component", "migrations", "context", opts.TypeName),
		source:       opts.Source,
		dir:          opts.Dir,
		typeName:     opts.TypeName,
		versionTable: table,
	}, nil
}

// TypeName returns the fully-qualified schema-context identity.
func (r *Runner) TypeName() string {
	return r.typeName
}

// Migrate applies all pending migrations for this context.
func (r *Runner) Migrate(ctx context.Context) error {
	if err := r.ensureVersionTable(ctx); err != nil {
		return err
	}

	files, err := r.sqlFiles()
	if err != nil {
		return err
	}

	for _, f := range files {
		info := migrationInfo{
			versionStr: strings.TrimSuffix(f, ".sql"),
			file:       f,
		}
		if applyErr := r.applyMigration(ctx, info); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

func (r *Runner) ensureVersionTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, r.versionTable)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", r.versionTable, err)
	}
	return nil
}

// sqlFiles lists the context's migration files in apply order.
func (r *Runner) sqlFiles() ([]string, error) {
	entries, err := fs.ReadDir(r.source, r.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// migrationInfo holds information about a migration for processing.
type migrationInfo struct {
	versionStr string
	file       string
}

func (r *Runner) migrationExists(ctx context.Context, info migrationInfo) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE version = $1)`, r.versionTable)
	if err := r.db.QueryRowContext(ctx, query, info.versionStr).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", info.file, err)
	}
	return exists, nil
}

func (r *Runner) insertMigration(ctx context.Context, tx *sql.Tx, info migrationInfo) error {
	query := fmt.Sprintf(`INSERT INTO %s (version) VALUES ($1)`, r.versionTable)
	if _, err := tx.ExecContext(ctx, query, info.versionStr); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("migration %s was applied concurrently by another instance: %w", info.file, err)
		}
		return fmt.Errorf("record migration %s: %w", info.file, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, which on the version table means another instance won the race
// to apply the same migration.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *Runner) applyMigration(ctx context.Context, info migrationInfo) error {
	exists, err := r.migrationExists(ctx, info)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	sqlBytes, err := fs.ReadFile(r.source, r.dir+"/"+info.file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", info.file, err)
	}

	r.logger.InfoContext(ctx, "applying migration", "version", info.versionStr)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.ErrorContext(
				ctx,
				"failed to rollback transaction",
				"err",
				rollbackErr,
				"migration_file",
				info.file,
			)
		}
	}()

	if _, execErr := tx.ExecContext(ctx, string(sqlBytes)); execErr != nil {
		return fmt.Errorf("exec migration %s: %w", info.file, execErr)
	}
	if insertErr := r.insertMigration(ctx, tx, info); insertErr != nil {
		return insertErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit migration %s: %w", info.file, commitErr)
	}

	return nil
}
