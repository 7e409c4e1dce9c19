// Package validate provides configuration validation utilities for prefq components.
//
// This file implements common validation patterns used by both the daemon and
// the producer CLI config packages. All functions leverage the
// go-playground/validator library for standardized validation behavior.
//
// VALIDATION UTILITIES:
//   - Port validation: Standard port range checking (1-65535)
//   - String validation: Required field and non-empty string checking
//   - Timeout validation: Positive duration validation for timeouts
//   - Credential validation: The shared-secret flags are all-or-none
package validate

import (
	"fmt"
	"time"
)

// ValidatePortRange validates that a port number is within the valid range (1-65535).
// Rejects port 0 since producers need a predictable address to submit to.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

// ValidateRequiredString validates that a string field is not empty.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout validates that a timeout duration is positive (> 0).
// Used for request timeouts and poll intervals.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateServerCredentials enforces that the server's handshake settings are
// either all present or all absent. A partial set would silently disable
// authentication, so it is rejected.
func ValidateServerCredentials(publicKeyPath, privateKeyPath, password string) error {
	return credentialsAllOrNone(publicKeyPath, privateKeyPath, password)
}

// ValidateProducerCredentials applies the same all-or-none rule to the
// producer. The private key decrypts the server's acknowledgement, so a
// producer holding only the public key cannot complete the handshake.
func ValidateProducerCredentials(publicKeyPath, privateKeyPath, password string) error {
	return credentialsAllOrNone(publicKeyPath, privateKeyPath, password)
}

func credentialsAllOrNone(publicKeyPath, privateKeyPath, password string) error {
	set := 0
	for _, v := range []string{publicKeyPath, privateKeyPath, password} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("--sshpub, --sshpriv and --pw must be given together or not at all")
	}
	return nil
}
