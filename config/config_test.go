package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Migrations.Path != DefaultMigrationsPath {
		t.Errorf("expected default migrations path %q, got %q", DefaultMigrationsPath, cfg.Migrations.Path)
	}
	if cfg.Migrations.RunOnStart {
		t.Error("expected migrations on start to default to disabled")
	}
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Errorf("unexpected postgres defaults: %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
	}
}

func TestAppConfigEnvOverrides(t *testing.T) {
	t.Setenv("MIGRATIONS_PATH", "/internal/migrate")
	t.Setenv("RUN_MIGRATIONS_ON_START", "true")
	t.Setenv("DB_NAME", "appdb")
	t.Setenv("HTTP_ADDR", ":9090")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Migrations.Path != "/internal/migrate" {
		t.Errorf("migrations path not applied: %q", cfg.Migrations.Path)
	}
	if !cfg.Migrations.RunOnStart {
		t.Error("RUN_MIGRATIONS_ON_START not applied")
	}
	if cfg.Postgres.Name != "appdb" {
		t.Errorf("DB_NAME not applied: %q", cfg.Postgres.Name)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP_ADDR not applied: %q", cfg.HTTP.Addr)
	}
}

func TestMigrationsConfigSanitize(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "empty path falls back to default", path: "", expected: "/migrate"},
		{name: "whitespace path falls back to default", path: "   ", expected: "/migrate"},
		{name: "missing leading slash is added", path: "migrate-db", expected: "/migrate-db"},
		{name: "valid path unchanged", path: "/ops/migrate", expected: "/ops/migrate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MigrationsConfig{Path: tt.path}
			cfg.Sanitize()
			if cfg.Path != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, cfg.Path)
			}
		})
	}
}

func TestHTTPConfigSanitize(t *testing.T) {
	cfg := HTTPConfig{ReadTimeout: -time.Second, WriteTimeout: 0, IdleTimeout: 0}
	cfg.Sanitize()

	if cfg.ReadTimeout != defaultReadTimeout {
		t.Errorf("read timeout not clamped: %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != defaultWriteTimeout {
		t.Errorf("write timeout not clamped: %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != defaultIdleTimeout {
		t.Errorf("idle timeout not clamped: %v", cfg.IdleTimeout)
	}
}

func TestAuditDBConfigInheritsCoreSettings(t *testing.T) {
	core := DBConfig{
		Host: "db.internal", Port: 5433, User: "app", Password: "secret",
		Name: "appdb", SSLMode: "require",
	}

	resolved := AuditDBConfig{}.Resolve(core)
	if resolved != core {
		t.Errorf("unset audit config should resolve to core settings, got %+v", resolved)
	}
}

func TestAuditDBConfigOverridesCoreSettings(t *testing.T) {
	core := DBConfig{
		Host: "db.internal", Port: 5432, User: "app", Password: "secret",
		Name: "appdb", SSLMode: "require",
	}
	audit := AuditDBConfig{Host: "audit-db.internal", Name: "auditdb"}

	resolved := audit.Resolve(core)
	if resolved.Host != "audit-db.internal" || resolved.Name != "auditdb" {
		t.Errorf("audit overrides not applied: %+v", resolved)
	}
	if resolved.User != "app" || resolved.Password != "secret" || resolved.Port != 5432 {
		t.Errorf("unset audit fields should inherit core settings: %+v", resolved)
	}
	if resolved == core {
		t.Error("overridden audit config should differ from core")
	}
}

func TestAuditDBConfigEnvOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "appdb")
	t.Setenv("AUDIT_DB_NAME", "auditdb")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	resolved := cfg.AuditPostgres.Resolve(cfg.Postgres)
	if resolved.Name != "auditdb" {
		t.Errorf("AUDIT_DB_NAME not applied: %q", resolved.Name)
	}
	if resolved.Host != cfg.Postgres.Host {
		t.Errorf("audit host should inherit core host, got %q", resolved.Host)
	}
}

func TestDBConfigSanitize(t *testing.T) {
	cfg := DBConfig{MaxOpenConns: 0, MaxIdleConns: 10}
	cfg.Sanitize()

	if cfg.MaxOpenConns != 1 {
		t.Errorf("max open conns not clamped: %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns != 1 {
		t.Errorf("max idle conns should be capped at max open conns, got %d", cfg.MaxIdleConns)
	}
}
