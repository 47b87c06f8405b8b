package httpx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/schemagate/schemagate/internal/schema"
)

// Fixed client-facing messages for the migrations endpoint.
const (
	msgContextRequired      = "Context type must be specified."
	msgContextNotRegistered = "No schema context of type '%s' is registered."
	msgContextUnavailable   = "Schema context of type '%s' could not be constructed."
)

// minErrorBodyLength is the minimum size of a plain-text error body. Some
// legacy browsers replace error responses shorter than 512 bytes with their
// own "friendly" page, so the body is padded past that threshold.
const minErrorBodyLength = 513

// MigrationError is the fatal outcome of the migrations endpoint: the target
// schema context was resolved but its migration engine failed. The endpoint
// does not translate it into an HTTP status itself; it hands the error to
// the configured error handler (or panics into the Recover middleware).
type MigrationError struct {
	// ContextType is the fully-qualified type name of the schema context
	// whose migration failed.
	ContextType string
	// Err is the migration engine's original error.
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("apply migrations for context %s: %v", e.ContextType, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// MigrationsOptions configures the migrations endpoint middleware.
type MigrationsOptions struct {
	// Next receives every request whose path does not match Path. Required.
	Next http.Handler
	// Logger records endpoint activity. Required.
	Logger *slog.Logger
	// Path is the request path the endpoint listens on. Required.
	Path string
	// Registry enumerates and resolves the application's schema contexts.
	// Required.
	Registry *schema.Registry

	// OnError receives fatal migration failures. When nil the middleware
	// panics with the *MigrationError so an outer recovery layer decides the
	// response.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Migrations is middleware exposing a remote endpoint that applies pending
// database migrations for a client-selected schema context. It either fully
// handles a request (path match) or passes it through untouched.
type Migrations struct {
	next     http.Handler
	logger   *slog.Logger
	path     string
	registry *schema.Registry
	onError  func(w http.ResponseWriter, r *http.Request, err error)
}

// NewMigrations creates the migrations endpoint middleware. All dependencies
// except OnError are required.
func NewMigrations(opts MigrationsOptions) (*Migrations, error) {
	if opts.Next == nil {
		return nil, errors.New("migrations middleware requires a next handler")
	}
	if opts.Logger == nil {
		return nil, errors.New("migrations middleware requires a logger")
	}
	if opts.Registry == nil {
		return nil, errors.New("migrations middleware requires a schema registry")
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("migrations middleware requires a listen path")
	}

	return &Migrations{
		next:     opts.Next,
		logger:   opts.Logger,
		path:     opts.Path,
		registry: opts.Registry,
		onError:  opts.OnError,
	}, nil
}

// ServeHTTP dispatches one request. Path comparison is exact but
// case-insensitive; any method is accepted.
func (m *Migrations) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.URL.Path, m.path) {
		m.next.ServeHTTP(w, r)
		return
	}

	ctx := r.Context()
	m.logger.InfoContext(ctx, "migrations endpoint matched", "path", m.path)

	db := m.resolveSchemaContext(w, r)
	if db == nil {
		// The error response has already been written.
		return
	}

	m.logger.InfoContext(ctx, "applying migrations", "context", db.TypeName())

	if err := db.Migrate(ctx); err != nil {
		m.logger.ErrorContext(ctx, "applying migrations failed",
			"context", db.TypeName(),
			"error", err,
		)
		m.fail(w, r, &MigrationError{ContextType: db.TypeName(), Err: err})
		return
	}

	setNoCacheHeaders(w.Header())
	w.WriteHeader(http.StatusNoContent)
	m.logger.InfoContext(ctx, "migrations applied", "context", db.TypeName())
}

// resolveSchemaContext extracts the submitted context type name from the
// request form, validates it against the registry, and constructs an
// instance. On any resolution failure it writes the error response and
// returns nil.
func (m *Migrations) resolveSchemaContext(w http.ResponseWriter, r *http.Request) schema.Context {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		m.logger.InfoContext(ctx, "no schema context type provided", "error", err)
		m.writeErrorResponse(w, http.StatusBadRequest, msgContextRequired)
		return nil
	}

	typeName := strings.TrimSpace(r.Form.Get("context"))
	if typeName == "" {
		m.logger.InfoContext(ctx, "no schema context type provided")
		m.writeErrorResponse(w, http.StatusBadRequest, msgContextRequired)
		return nil
	}

	if !m.isRegistered(typeName) {
		m.logger.InfoContext(ctx, "schema context not registered", "context", typeName)
		m.writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf(msgContextNotRegistered, typeName))
		return nil
	}

	db, err := m.registry.Resolve(typeName)
	if err != nil {
		// Registered descriptor without a working factory is an operator
		// problem, not a client one.
		m.logger.ErrorContext(ctx, "schema context could not be constructed", "context", typeName, "error", err)
		m.writeErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf(msgContextUnavailable, typeName))
		return nil
	}
	return db
}

// isRegistered reports whether typeName exactly matches a registered
// descriptor's fully-qualified type name.
func (m *Migrations) isRegistered(typeName string) bool {
	for _, d := range m.registry.Descriptors() {
		if d.TypeName == typeName {
			return true
		}
	}
	return false
}

// writeErrorResponse writes a plain-text, cache-disabled error body padded
// to minErrorBodyLength characters. Headers must be set before the status,
// and the status before the body.
func (m *Migrations) writeErrorResponse(w http.ResponseWriter, status int, message string) {
	h := w.Header()
	setNoCacheHeaders(h)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	// Counted in runes so a multi-byte context name still yields the minimum
	// character length; the byte length only grows past it.
	if pad := minErrorBodyLength - utf8.RuneCountInString(message); pad > 0 {
		message += strings.Repeat(" ", pad)
	}
	if _, err := io.WriteString(w, message); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

func (m *Migrations) fail(w http.ResponseWriter, r *http.Request, err error) {
	if m.onError != nil {
		m.onError(w, r, err)
		return
	}
	panic(err)
}

func setNoCacheHeaders(h http.Header) {
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache,no-store")
}
