// Package api provides HTTP API server configuration for the prefq
// rendezvous server.
//
// The configuration carries the network binding, the two stores every
// handler works against, the optional handshake verifier and the
// middleware knobs (rate limiting, rater reload interval). The daemon
// builds it from its own validated configuration; tests build it directly.
package api

import (
	"fmt"

	"github.com/concave-dev/prefq/internal/auth"
	"github.com/concave-dev/prefq/internal/config"
	"github.com/concave-dev/prefq/internal/media"
	"github.com/concave-dev/prefq/internal/query"
	"github.com/concave-dev/prefq/internal/validate"
	"github.com/concave-dev/prefq/internal/version"
)

// Config holds all configuration parameters required for running the HTTP
// API server.
//
// Verifier is nil when the shared-secret handshake is disabled. RateLimit is
// the sustained requests per second allowed per client IP; zero disables
// rate limiting.
type Config struct {
	BindAddr string // HTTP server bind address (e.g., "localhost")
	BindPort int    // HTTP server bind port

	Store    *query.Store   // Pending queries and feedback ledger
	Media    *media.Store   // Uploaded media files
	Verifier *auth.Verifier // Handshake verifier, nil when disabled

	RateLimit          float64 // Requests per second per client, 0 disables
	RateBurst          int     // Burst allowance per client
	RaterReloadSeconds int     // Reload interval of the no-data page
	Version            string  // Reported by /api/v1/health
}

// DefaultConfig creates a new Config instance with default values for local
// development. Store and Media must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:           config.DefaultHost,
		BindPort:           config.DefaultPort,
		RateLimit:          0,
		RateBurst:          config.DefaultRateBurst,
		RaterReloadSeconds: config.DefaultRaterReloadSeconds,
		Version:            version.PrefqdVersion,
	}
}

// Validate checks that the server can start with this configuration.
// Port 0 is accepted and lets the OS choose.
func (c *Config) Validate() error {
	if err := validate.ValidateHost(c.BindAddr); err != nil {
		return fmt.Errorf("bind address validation failed: %w", err)
	}
	if err := validate.ValidateField(c.BindPort, "min=0,max=65535"); err != nil {
		return fmt.Errorf("bind port validation failed: port %d out of range", c.BindPort)
	}
	if c.Store == nil {
		return fmt.Errorf("query store cannot be nil")
	}
	if c.Media == nil {
		return fmt.Errorf("media store cannot be nil")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is enabled")
	}
	if c.RaterReloadSeconds < 1 {
		return fmt.Errorf("rater reload interval must be at least 1 second")
	}
	return nil
}
