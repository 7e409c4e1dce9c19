// Package config provides configuration management for the prefq daemon.
//
// This package holds the complete configuration of prefqd: the HTTP binding,
// the media folder, the optional shared-secret handshake and the operational
// knobs of the API server. It keeps a single Global instance that the cobra
// flags write into and the daemon reads from.
//
// CONFIGURATION LAYERS:
// Values are resolved in increasing order of priority:
//
//   - Defaults: compiled-in values from internal/config
//   - Config file: optional YAML file named by --config
//   - Environment: PREFQ_* variables, after loading a .env file if present
//   - Flags: any flag the user explicitly passed on the command line
//
// EXPLICIT OVERRIDE TRACKING:
// Flags always carry a value (their default when omitted), so the package
// tracks which ones the user actually typed. Only those win over the file and
// environment layers; every other field takes the layered value.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	configDefaults "github.com/concave-dev/prefq/internal/config"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigField represents a configuration field that can be explicitly set
type ConfigField int

const (
	// Configuration field identifiers
	HostField ConfigField = iota
	PortField
	DebugField
	SSHPubField
	SSHPrivField
	PasswordField
	VideoDirField
	LogLevelField
	LogFileField
	RateLimitField
	RateBurstField
)

const (
	// EnvPrefix is stripped from environment variables before they are
	// mapped onto configuration keys (PREFQ_VIDEO_DIR -> video_dir).
	EnvPrefix = "PREFQ_"

	// DefaultShutdownTimeout bounds the graceful HTTP shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds all daemon configuration values
type Config struct {
	Host     string `koanf:"host"`      // Interface the HTTP server binds to
	Port     int    `koanf:"port"`      // HTTP port
	Debug    bool   `koanf:"debug"`     // Shorthand for log level DEBUG
	SSHPub   string `koanf:"sshpub"`    // OpenSSH public key file for the handshake
	SSHPriv  string `koanf:"sshpriv"`   // Private key file for the handshake
	Password string `koanf:"pw"`        // Shared secret producers must present
	VideoDir string `koanf:"video_dir"` // Folder holding submitted media
	LogLevel string `koanf:"log_level"` // Log level: DEBUG, INFO, WARN, ERROR
	LogFile  string `koanf:"log_file"`  // Optional log file, replaces stdout/stderr

	RateLimit          float64       `koanf:"rate_limit"`           // Requests per second per client, 0 disables
	RateBurst          int           `koanf:"rate_burst"`           // Burst allowance per client
	RaterReloadSeconds int           `koanf:"rater_reload_seconds"` // Reload interval of the no-data page
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`     // Graceful shutdown bound

	// ConfigFile is the YAML file named by --config. It selects a layer and
	// is never read from one.
	ConfigFile string `koanf:"-"`

	// Flags to track if values were explicitly set by user
	explicit map[ConfigField]bool
}

// Global configuration instance
var Global = Defaults()

// Defaults returns a Config populated with the compiled-in defaults.
func Defaults() Config {
	return Config{
		Host:               configDefaults.DefaultHost,
		Port:               configDefaults.DefaultPort,
		VideoDir:           configDefaults.DefaultVideoDir,
		LogLevel:           configDefaults.DefaultLogLevel,
		RateBurst:          configDefaults.DefaultRateBurst,
		RaterReloadSeconds: configDefaults.DefaultRaterReloadSeconds,
		ShutdownTimeout:    DefaultShutdownTimeout,
	}
}

// SetExplicitlySet marks a configuration field as explicitly set by the user.
func (c *Config) SetExplicitlySet(field ConfigField, value bool) {
	if c.explicit == nil {
		c.explicit = make(map[ConfigField]bool)
	}
	c.explicit[field] = value
}

// IsExplicitlySet returns whether a configuration field was explicitly set by the user.
// Explicit fields are never overwritten by the file or environment layers.
func (c *Config) IsExplicitlySet(field ConfigField) bool {
	return c.explicit[field]
}

// AuthEnabled reports whether the shared-secret handshake is configured.
func (c *Config) AuthEnabled() bool {
	return c.SSHPub != "" && c.SSHPriv != "" && c.Password != ""
}

// Load resolves the defaults, the optional YAML file at path and the PREFQ_*
// environment into a Config. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Defaults()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.ConfigFile = path
	return cfg, nil
}

// envTransformFunc maps PREFQ_RATE_LIMIT to rate_limit. Keys stay flat, so the
// "." delimiter never splits them.
func envTransformFunc(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
}

// InitializeConfig layers the config file and environment under the flags.
// This function runs after flag parsing and before validation, so validation
// always sees the final merged state.
func InitializeConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Failed to load .env file: %v", err)
	}

	// DEBUG=true turns on verbose logs without touching flags
	if os.Getenv("DEBUG") == "true" && !Global.IsExplicitlySet(LogLevelField) {
		Global.Debug = true
	}

	loaded, err := Load(Global.ConfigFile)
	if err != nil {
		return err
	}
	Global.merge(loaded)

	if Global.Debug {
		Global.LogLevel = "DEBUG"
	}
	return nil
}

// merge copies every layered value the user did not set on the command line.
func (c *Config) merge(from *Config) {
	if !c.IsExplicitlySet(HostField) {
		c.Host = from.Host
	}
	if !c.IsExplicitlySet(PortField) {
		c.Port = from.Port
	}
	if !c.IsExplicitlySet(DebugField) {
		c.Debug = c.Debug || from.Debug
	}
	if !c.IsExplicitlySet(SSHPubField) {
		c.SSHPub = from.SSHPub
	}
	if !c.IsExplicitlySet(SSHPrivField) {
		c.SSHPriv = from.SSHPriv
	}
	if !c.IsExplicitlySet(PasswordField) {
		c.Password = from.Password
	}
	if !c.IsExplicitlySet(VideoDirField) {
		c.VideoDir = from.VideoDir
	}
	if !c.IsExplicitlySet(LogLevelField) {
		c.LogLevel = from.LogLevel
	}
	if !c.IsExplicitlySet(LogFileField) {
		c.LogFile = from.LogFile
	}
	if !c.IsExplicitlySet(RateLimitField) {
		c.RateLimit = from.RateLimit
	}
	if !c.IsExplicitlySet(RateBurstField) {
		c.RateBurst = from.RateBurst
	}
	c.RaterReloadSeconds = from.RaterReloadSeconds
	c.ShutdownTimeout = from.ShutdownTimeout
}
