package config

import "time"

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// ReadTimeout bounds reading the request, including the body.
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`

	// WriteTimeout bounds writing the response. Long-running migrations are
	// bounded by this, so it is deliberately generous by default.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10m"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = defaultReadTimeout
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = defaultWriteTimeout
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = defaultIdleTimeout
	}
}
