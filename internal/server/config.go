package server

import (
	"net"
	"strconv"
	"time"

	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// APIKey protects mutating routes when set
	APIKey     string
	AuthHeader string

	// Performance settings
	RateLimit int // Requests per minute per IP (0 to disable)
	CacheTTL  time.Duration

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         constants.DefaultServerPort,
		PathPrefix:   "/api/v1",
		CORSEnabled:  false,
		CORSOrigins:  []string{},
		AuthHeader:   "X-API-Key",
		RateLimit:    100,
		CacheTTL:     constants.DefaultCacheTTL,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // POST /refresh?wait=true holds the connection
		IdleTimeout:  120 * time.Second,
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.NewValidationError("port", c.Port, "must be between 0 and 65535")
	}
	if c.PathPrefix != "" && c.PathPrefix[0] != '/' {
		return errors.NewValidationError("path_prefix", c.PathPrefix, "must start with /")
	}
	return nil
}
