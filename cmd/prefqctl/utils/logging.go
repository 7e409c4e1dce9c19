// Package utils provides utility functions for the prefqctl CLI.
// This file contains logging setup and Resty logger integration utilities.
package utils

import (
	"os"

	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/concave-dev/prefq/internal/logging"
)

// RestyLogger implements resty.Logger interface and routes logs through structured logging
type RestyLogger struct{}

// Errorf routes error messages through structured logging.
func (s RestyLogger) Errorf(format string, v ...any) {
	logging.Error(format, v...)
}

// Warnf routes warning messages through structured logging.
func (s RestyLogger) Warnf(format string, v ...any) {
	logging.Warn(format, v...)
}

// Debugf routes debug messages through structured logging.
func (s RestyLogger) Debugf(format string, v ...any) {
	logging.Debug(format, v...)
}

// SetupLogging configures CLI logging behavior based on environment and config.
// DEBUG=true or --verbose force debug output. Otherwise only messages at
// --log-level and above are shown; the default ERROR keeps output to results.
func SetupLogging() {
	if os.Getenv("DEBUG") == "true" || config.Global.Verbose {
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
		return
	}

	if config.Global.LogLevel == "ERROR" {
		logging.SuppressOutput()
		return
	}

	logging.RestoreOutput()
	logging.SetLevel(config.Global.LogLevel)
}
