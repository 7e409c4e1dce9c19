// Package validate provides input validation for query identifiers.
//
// Query IDs are chosen by producers and become part of media filenames on the
// server's disk ({id}-left.ext, {id}-right.ext), so they must be safe path
// components.

package validate

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxQueryIDLength bounds query IDs so derived filenames stay within common
// filesystem name limits.
const MaxQueryIDLength = 200

// QueryIDFormat validates a query ID against filename safety requirements.
// Rejects empty IDs, path separators, control characters, and the special
// names "." and "..".
func QueryIDFormat(id string) error {
	if id == "" {
		return fmt.Errorf("query id cannot be empty")
	}

	if len(id) > MaxQueryIDLength {
		return fmt.Errorf("query id is %d bytes, maximum is %d", len(id), MaxQueryIDLength)
	}

	if id == "." || id == ".." {
		return fmt.Errorf("query id '%s' is reserved", id)
	}

	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("query id '%s' must not contain path separators", id)
	}

	for _, r := range id {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return fmt.Errorf("query id %q contains invalid characters", id)
		}
	}

	return nil
}
