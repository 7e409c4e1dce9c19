// Package netutil provides network utilities for the prefq server and
// producer CLI.
//
// The daemon binds its HTTP listener before anything else starts, so a port
// conflict is reported immediately with a clear message instead of surfacing
// from a background goroutine after the media directory was swept.
//
// Key capabilities:
//   - Atomic port reservation through pre-binding
//   - Support for explicit and OS-assigned (port 0) ports
//   - Typed address-in-use and connection-refused classification
package netutil

import (
	"fmt"
	"net"
	"strconv"
)

// AddressInUseError represents a "port already in use" error that preserves
// the original error for proper type checking while providing user-friendly messages.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// PortBinder pre-binds TCP listeners and hands them to the HTTP server, so the
// port is reserved from the moment configuration is validated.
type PortBinder struct{}

// NewPortBinder creates a new PortBinder instance for managing port reservations.
func NewPortBinder() *PortBinder {
	return &PortBinder{}
}

// BindTCP creates and binds a TCP listener on host:port. Hostnames such as
// "localhost" are resolved by the OS. Once this returns successfully the port
// is reserved until the listener is closed.
func (pb *PortBinder) BindTCP(host string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			// Return a wrapped error that preserves the original for type checking
			return nil, &AddressInUseError{
				Port:    port,
				Address: host,
				Err:     err,
			}
		}
		return nil, fmt.Errorf("failed to bind TCP to %s: %w", addr, err)
	}

	return listener, nil
}

// GetListenerPort extracts the port number from a bound net.Listener.
// Used to report the actual port when the daemon was started with port 0.
func (pb *PortBinder) GetListenerPort(listener net.Listener) (int, error) {
	addr := listener.Addr()
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", addr)
	}

	return tcpAddr.Port, nil
}
