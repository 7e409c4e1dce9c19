// Package logging provides ID formatting utilities for consistent query ID
// display across all logging contexts.
//
// Query IDs are chosen by producers and are usually derived from media
// filenames, so they can grow long. Debug logs keep the full ID for
// traceability; every other level shows a shortened form.
package logging

// shortIDLength is the number of leading characters kept outside DEBUG.
const shortIDLength = 24

// FormatQueryID formats a query ID for logging with context-aware truncation.
// Returns the full ID when DEBUG is enabled, otherwise at most shortIDLength
// runes followed by an ellipsis.
//
// Usage: logging.Info("Resolved query %s", logging.FormatQueryID(id))
func FormatQueryID(id string) string {
	if IsDebugEnabled() {
		return id
	}
	runes := []rune(id)
	if len(runes) <= shortIDLength {
		return id
	}
	return string(runes[:shortIDLength]) + "…"
}
