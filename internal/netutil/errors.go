// Package netutil provides network utilities for the prefq server and
// producer CLI.
//
// This file implements network error checking utilities using type-based
// detection rather than string matching, so classification is stable across
// operating systems and Go versions.

package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError checks if an error indicates "address already in use"
// using proper error type checking rather than string matching.
//
// Used by the daemon to turn a busy --port into an actionable message.
func IsAddressInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError checks if an error indicates "connection refused"
// using proper error type checking rather than string matching.
//
// The producer treats refused connections as transient while it waits for a
// batch, since the server may be restarting.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
