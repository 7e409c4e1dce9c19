// Package config provides configuration management for the prefqctl CLI.
package config

import (
	"net"
	"strconv"
	"time"

	configDefaults "github.com/concave-dev/prefq/internal/config"
	"github.com/concave-dev/prefq/internal/version"
)

var (
	// DefaultServerURL points at a prefqd started with its defaults
	DefaultServerURL = "http://" + net.JoinHostPort(configDefaults.DefaultHost, strconv.Itoa(configDefaults.DefaultPort))
)

// Version returns the current prefqctl CLI version from the centralized version package
var Version = version.PrefqctlVersion

// Global holds the global CLI configuration
var Global struct {
	ServerURL string        // URL of the prefq server to talk to
	LogLevel  string        // Log level for CLI operations
	Timeout   time.Duration // Bound on each HTTP request
	Verbose   bool          // Show verbose output
	Output    string        // Output format: table, json
}

// Producer holds the configuration shared by submit, feedback and run
var Producer struct {
	SSHPub   string // Public key used to seal the shared secret
	SSHPriv  string // Optional private key used to check the server's ack
	Password string // Shared secret

	VideoDir string   // Folder the pair file names are relative to
	Pairs    []string // left:right file name pairs

	PollInterval    time.Duration // First wait between drain attempts
	MaxPollInterval time.Duration // Cap of the poll backoff
	MaxWait         time.Duration // Give up waiting after this long (0 waits forever)
	Parallel        int           // Pairs uploaded concurrently
}

// Feedback holds the feedback command configuration
var Feedback struct {
	IDs  []string // Order answers by these ids
	Wait bool     // Poll until the batch is complete instead of draining once
}

// Keygen holds the keygen command configuration
var Keygen struct {
	Dir  string // Folder receiving id_rsa and id_rsa.pub
	Bits int    // RSA modulus size
}
