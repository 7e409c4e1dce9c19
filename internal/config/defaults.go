// Package config provides common default configuration values shared across
// prefq components (server daemon, producer CLI, HTTP API). This centralizes
// configuration management and keeps both binaries speaking the same defaults.
package config

import "time"

const (
	// DefaultHost is the default host the server binds to and the producer
	// connects to. Loopback keeps a fresh install private to the machine.
	DefaultHost = "localhost"

	// DefaultPort is the default HTTP port of the rendezvous server
	DefaultPort = 5000

	// DefaultLogLevel is the default log level for all components
	// INFO provides good balance of visibility without verbose debug output
	DefaultLogLevel = "INFO"

	// DefaultVideoDir is the folder that holds submitted media until the
	// matching query is resolved
	DefaultVideoDir = "videos"

	// DefaultPollInterval is the base interval between feedback drain
	// attempts made by the producer
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxPollInterval caps the producer's exponential poll backoff
	DefaultMaxPollInterval = 30 * time.Second

	// DefaultRequestTimeout bounds every individual producer HTTP call
	DefaultRequestTimeout = 10 * time.Second

	// DefaultUploadParallelism is the number of pairs the producer uploads
	// concurrently
	DefaultUploadParallelism = 2

	// DefaultRaterReloadSeconds is how often the "no data" rater page reloads
	DefaultRaterReloadSeconds = 2

	// DefaultRateBurst is the per-client burst allowance when rate limiting
	// is enabled
	DefaultRateBurst = 20

	// DefaultMaxUploadMemory is how much of a multipart upload the server
	// keeps in memory before spilling to temporary files
	DefaultMaxUploadMemory = 32 << 20
)
