package config

// DBConfig contains PostgreSQL database configuration for the core schema
// context. The audit context inherits these settings unless overridden via
// AuditDBConfig.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"schemagate"`
	Password string `env:"PASSWORD" envDefault:"schemagate"`
	Name     string `env:"NAME"     envDefault:"schemagate"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// Connection pool settings.
	MaxOpenConns int `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int `env:"MAX_IDLE_CONNS" envDefault:"5"`
}

// Sanitize applies guardrails to database pool configuration.
func (d *DBConfig) Sanitize() {
	if d.MaxOpenConns < 1 {
		d.MaxOpenConns = 1
	}
	if d.MaxIdleConns < 0 {
		d.MaxIdleConns = 0
	}
	if d.MaxIdleConns > d.MaxOpenConns {
		d.MaxIdleConns = d.MaxOpenConns
	}
}

// AuditDBConfig overrides connection settings for the audit schema context.
// Fields left unset inherit the core database configuration, so the audit
// context shares the core database unless pointed elsewhere.
type AuditDBConfig struct {
	Host     string `env:"HOST"     envDefault:""`
	Port     int    `env:"PORT"     envDefault:"0"`
	User     string `env:"USER"     envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	Name     string `env:"NAME"     envDefault:""`
	SSLMode  string `env:"SSL_MODE" envDefault:""`
}

// Resolve returns the effective audit database configuration, falling back
// to the core settings for every unset field.
func (a AuditDBConfig) Resolve(core DBConfig) DBConfig {
	cfg := core
	if a.Host != "" {
		cfg.Host = a.Host
	}
	if a.Port != 0 {
		cfg.Port = a.Port
	}
	if a.User != "" {
		cfg.User = a.User
	}
	if a.Password != "" {
		cfg.Password = a.Password
	}
	if a.Name != "" {
		cfg.Name = a.Name
	}
	if a.SSLMode != "" {
		cfg.SSLMode = a.SSLMode
	}
	return cfg
}

// RedisConfig contains Redis configuration for the application cache.
// The migrations service only pings it for readiness reporting.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// Sentinel settings. When UseSentinel is set the client connects through
	// the named master instead of URI.
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
}
