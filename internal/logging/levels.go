// Package logging defines the log level names shared by prefqd and prefqctl.
//
// Both binaries take a level from flags, and prefqd also reads it from its YAML
// file and PREFQ_LOG_LEVEL. Users write levels in any case; NormalizeLogLevel
// turns them into the upper-case names SetLevel understands.
//
// LEVEL USAGE:
//   - DEBUG: every rater page poll and media GET, full query ids, resty traces
//   - INFO:  submissions, resolutions and drains (prefqd default)
//   - WARN:  rejected uploads, defective feedback, handshake mismatches
//   - ERROR: storage and I/O failures (prefqctl default, so results stay readable)
package logging

import (
	"fmt"
	"strings"
)

// ValidLogLevels is the set of level names SetLevel accepts.
var ValidLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// IsValidLogLevel reports whether level is one of ValidLogLevels. The check is
// case-sensitive; use NormalizeLogLevel for user input.
func IsValidLogLevel(level string) bool {
	return ValidLogLevels[level]
}

// ValidateLogLevel returns an error naming the accepted levels when level is
// not one of them.
func ValidateLogLevel(level string) error {
	if !IsValidLogLevel(level) {
		return fmt.Errorf("invalid log level: %s (use DEBUG, INFO, WARN or ERROR)", level)
	}
	return nil
}

// NormalizeLogLevel trims and upper-cases a user-supplied level and validates
// the result, so "debug" from a flag and "Debug" from a YAML file both work.
func NormalizeLogLevel(level string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(level))
	if err := ValidateLogLevel(normalized); err != nil {
		return level, err
	}
	return normalized, nil
}
