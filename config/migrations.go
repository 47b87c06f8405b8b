package config

import "strings"

// DefaultMigrationsPath is the request path the migrations endpoint listens
// on when none is configured.
const DefaultMigrationsPath = "/migrate"

// MigrationsConfig contains configuration for the migrations endpoint.
type MigrationsConfig struct {
	// Path is the request path the migrations endpoint listens on.
	// Requests to any other path pass through untouched.
	Path string `env:"MIGRATIONS_PATH" envDefault:"/migrate"`

	// RunOnStart applies pending migrations for every registered schema
	// context during startup, before the HTTP server accepts traffic.
	RunOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"false"`
}

// Sanitize applies guardrails to migrations endpoint configuration.
func (m *MigrationsConfig) Sanitize() {
	m.Path = strings.TrimSpace(m.Path)
	if m.Path == "" {
		m.Path = DefaultMigrationsPath
	}
	if !strings.HasPrefix(m.Path, "/") {
		m.Path = "/" + m.Path
	}
}
