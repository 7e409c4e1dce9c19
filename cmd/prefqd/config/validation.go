// Package config handles configuration validation for the prefq daemon.
//
// Validation runs once, after every configuration layer has been merged and
// before any port is bound or file is touched. It rejects:
//   - Unparseable hosts and out-of-range ports
//   - A partial shared-secret configuration (keys and password are all-or-none)
//   - Missing key files when the handshake is enabled
//   - Negative rate limits and nonsensical reload or shutdown intervals
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/validate"
)

// ValidateConfig performs validation and normalization of all daemon
// configuration parameters before service startup.
//
// The log level is upper-cased so that "debug" and "DEBUG" behave the same.
// Returns error for any validation failure with descriptive context.
func ValidateConfig() error {
	level, err := logging.NormalizeLogLevel(Global.LogLevel)
	if err != nil {
		return err
	}
	Global.LogLevel = level

	if err := validate.ValidateHost(Global.Host); err != nil {
		logging.Error("Invalid host '%s': %v", Global.Host, err)
		return fmt.Errorf("invalid host: %w", err)
	}

	if err := validate.ValidatePortRange(Global.Port); err != nil {
		logging.Error("Invalid port %d: must be between 1 and 65535", Global.Port)
		return fmt.Errorf("invalid port %d: %w", Global.Port, err)
	}

	if err := validate.ValidateRequiredString(Global.VideoDir, "video directory"); err != nil {
		logging.Error("%v", err)
		return err
	}

	if err := validate.ValidateServerCredentials(Global.SSHPub, Global.SSHPriv, Global.Password); err != nil {
		logging.Error("Invalid handshake configuration: %v", err)
		return err
	}
	if Global.AuthEnabled() {
		for _, path := range []string{Global.SSHPub, Global.SSHPriv} {
			if err := checkReadableFile(path); err != nil {
				logging.Error("Key file %s is not usable: %v", path, err)
				return err
			}
		}
	}

	if Global.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got: %g", Global.RateLimit)
	}
	if Global.RateLimit > 0 && Global.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is enabled, got: %d", Global.RateBurst)
	}

	if Global.RaterReloadSeconds < 1 {
		return fmt.Errorf("rater reload interval must be at least 1 second, got: %d", Global.RaterReloadSeconds)
	}

	if err := validate.ValidatePositiveTimeout(Global.ShutdownTimeout, "shutdown timeout"); err != nil {
		return err
	}

	return nil
}

// checkReadableFile makes sure path names an existing regular file.
func checkReadableFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %s does not exist", path)
		}
		return fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
