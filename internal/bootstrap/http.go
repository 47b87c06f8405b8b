package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/schemagate/schemagate/config"
	httpx "github.com/schemagate/schemagate/internal/http"
	"github.com/schemagate/schemagate/internal/schema"
)

const shutdownTimeout = 10 * time.Second

// HTTPDeps contains the dependencies for the HTTP handler chain.
type HTTPDeps struct {
	Config   *config.AppConfig
	Registry *schema.Registry
	DB       *sql.DB
	// AuditDB is the audit context's pool; nil or equal to DB when the audit
	// context shares the core database.
	AuditDB     *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildHTTPHandler assembles the middleware chain:
// Recover -> RequestID -> Logging -> Migrations -> router.
func BuildHTTPHandler(deps *HTTPDeps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Logger:      logger,
		ReadyChecks: readyChecks(deps),
	})

	migrations, err := httpx.NewMigrations(httpx.MigrationsOptions{
		Next:     router,
		Logger:   logger,
		Path:     deps.Config.Migrations.Path,
		Registry: deps.Registry,
	})
	if err != nil {
		return nil, fmt.Errorf("build migrations middleware: %w", err)
	}

	var h http.Handler = migrations
	h = httpx.Logging(logger)(h)
	h = httpx.RequestID()(h)
	h = httpx.Recover(logger)(h)
	return h, nil
}

func readyChecks(deps *HTTPDeps) []httpx.ReadyCheck {
	var checks []httpx.ReadyCheck
	if deps.DB != nil {
		db := deps.DB
		checks = append(checks, httpx.ReadyCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return db.PingContext(ctx) },
		})
	}
	if deps.AuditDB != nil && deps.AuditDB != deps.DB {
		db := deps.AuditDB
		checks = append(checks, httpx.ReadyCheck{
			Name:  "postgres_audit",
			Check: func(ctx context.Context) error { return db.PingContext(ctx) },
		})
	}
	if deps.RedisClient != nil {
		client := deps.RedisClient
		checks = append(checks, httpx.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}
	return checks
}

// NewHTTPServer creates the HTTP server with the configured timeouts.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully. It blocks until both the listener and the shutdown have
// finished.
func Serve(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return group.Wait()
}
