// Package validate provides network validation utilities for the prefq server
// and producer CLI, ensuring listen addresses and server URLs are well formed
// before any socket is opened or request is sent.
//
// Implements host, port range, and address format validation using the
// go-playground/validator library. Prevents configuration errors that would
// otherwise surface as confusing bind or dial failures.
//
// VALIDATION FEATURES:
//   - Host: hostnames (RFC 1123, e.g. "localhost") and IPv4/IPv6 literals
//   - Port Range: Valid port numbers (0-65535)
//   - Format: Proper "host:port" address formatting
//   - URLs: Absolute http(s) server URLs for the producer client
package validate

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance using built-in validations
	validate *validator.Validate
)

func init() {
	validate = validator.New()
	// Using built-in validators: ip, hostname_rfc1123, min, max, url - no custom registration needed
}

// NetworkAddress represents a validated network address with host and port
// components. The rendezvous server binds to it and the producer CLI derives
// default server URLs from it.
type NetworkAddress struct {
	Host string `validate:"required,hostname_rfc1123|ip"` // Hostname or IP literal
	Port int    `validate:"min=0,max=65535"`              // Built-in range validator
}

// String returns the network address in standard "host:port" format suitable for
// net.Listen, configuration display, and logging. IPv6 hosts are bracketed.
func (na NetworkAddress) String() string {
	return net.JoinHostPort(na.Host, strconv.Itoa(na.Port))
}

// ParseBindAddress parses and validates a "host:port" address string for the
// server listener. Provides format checking, host validation, and port range
// verification with error messages suitable for CLI output.
//
// Returns a validated NetworkAddress structure or detailed error information for
// debugging network configuration issues during daemon startup.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	// Validate using struct tags
	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateHost validates a bare host (no port) as given to the daemon's --host flag.
func ValidateHost(host string) error {
	if err := ValidateField(host, "required,hostname_rfc1123|ip"); err != nil {
		return fmt.Errorf("invalid host '%s': must be a hostname or IP address", host)
	}
	return nil
}

// ValidateServerURL validates the producer's server base URL. Only absolute
// http and https URLs with a host are accepted.
func ValidateServerURL(raw string) error {
	if err := ValidateField(raw, "required,url"); err != nil {
		return fmt.Errorf("invalid server URL '%s'", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL '%s' must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL '%s' has no host", raw)
	}
	return nil
}

// ValidateField validates individual values against specified validation rules using
// the go-playground/validator library. Provides flexible validation for single fields
// without requiring struct definitions.
//
// Example: ValidateField("192.168.1.1", "required,ip")
func ValidateField(value any, tag string) error {
	return validate.Var(value, tag)
}
