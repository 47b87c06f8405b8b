package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schemagate/schemagate/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting schemagate service",
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"migrations_path", cfg.Migrations.Path)

	db, err := bootstrap.ConnectDB(cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	// The audit context shares the core pool unless AUDIT_DB_* points it at
	// its own database.
	auditDB := db
	if auditCfg := cfg.AuditPostgres.Resolve(cfg.Postgres); auditCfg != cfg.Postgres {
		auditDB, err = bootstrap.ConnectDB(auditCfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := auditDB.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close audit database failed", "error", cerr)
			}
		}()
	}

	redisClient, err := bootstrap.ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	registry, err := bootstrap.NewSchemaRegistry(db, auditDB, logger)
	if err != nil {
		return err
	}

	if cfg.Migrations.RunOnStart {
		if err = bootstrap.MigrateAll(ctx, registry, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	handler, err := bootstrap.BuildHTTPHandler(&bootstrap.HTTPDeps{
		Config:      &cfg,
		Registry:    registry,
		DB:          db,
		AuditDB:     auditDB,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server := bootstrap.NewHTTPServer(cfg.HTTP, handler)
	return bootstrap.Serve(ctx, server, logger)
}
