// Package version provides centralized version information for the prefq
// binaries. prefqd (rendezvous server) and prefqctl (producer CLI) are
// versioned independently so either can evolve without bumping the other.
// All versions follow semantic versioning (semver) conventions.

package version

// PrefqdVersion holds the current prefqd server version.
// Format: major.minor.patch[-prerelease][+build]
const PrefqdVersion = "0.1.0-dev"

// PrefqctlVersion holds the current prefqctl CLI version.
// Used in the CLI's --version output and in the User-Agent header sent to
// the server.
// Format: major.minor.patch[-prerelease][+build]
const PrefqctlVersion = "0.1.0-dev"
