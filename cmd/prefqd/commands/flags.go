// Package commands contains Cobra CLI command definitions for prefqd.
package commands

import (
	"github.com/concave-dev/prefq/cmd/prefqd/config"
	"github.com/spf13/cobra"
)

// SetupFlags configures all command line flags for the daemon
func SetupFlags(cmd *cobra.Command) {
	defaults := config.Defaults()

	// Network flags
	cmd.Flags().StringVar(&config.Global.Host, "host", defaults.Host,
		"Interface the rendezvous server binds to (e.g., 0.0.0.0 for all interfaces)")
	cmd.Flags().IntVar(&config.Global.Port, "port", defaults.Port,
		"HTTP port of the rendezvous server")

	// Handshake flags
	cmd.Flags().StringVar(&config.Global.SSHPub, "sshpub", "",
		"OpenSSH public key file used to verify producers\n"+
			"--sshpub, --sshpriv and --pw must be given together or not at all")
	cmd.Flags().StringVar(&config.Global.SSHPriv, "sshpriv", "",
		"Private key file matching --sshpub")
	cmd.Flags().StringVar(&config.Global.Password, "pw", "",
		"Shared secret producers must present when submitting")

	// Storage flags
	cmd.Flags().StringVar(&config.Global.VideoDir, "video-dir", defaults.VideoDir,
		"Folder holding submitted media until the matching query is resolved")

	// API flags
	cmd.Flags().Float64Var(&config.Global.RateLimit, "rate-limit", 0,
		"Sustained requests per second allowed per client IP (0 disables rate limiting)")
	cmd.Flags().IntVar(&config.Global.RateBurst, "rate-burst", defaults.RateBurst,
		"Burst allowance per client IP when --rate-limit is set")

	// Operational flags
	cmd.Flags().BoolVar(&config.Global.Debug, "debug", false,
		"Enable debug logging (same as --log-level=DEBUG)")
	cmd.Flags().StringVar(&config.Global.LogLevel, "log-level", defaults.LogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().StringVar(&config.Global.LogFile, "log-file", "",
		"Write all logs to this file instead of stdout/stderr")
	cmd.Flags().StringVar(&config.Global.ConfigFile, "config", "",
		"Optional YAML configuration file (flags > PREFQ_* env > file > defaults)")
}

// CheckExplicitFlags checks if flags were explicitly set by the user
func CheckExplicitFlags(cmd *cobra.Command) {
	config.Global.SetExplicitlySet(config.HostField, cmd.Flags().Changed("host"))
	config.Global.SetExplicitlySet(config.PortField, cmd.Flags().Changed("port"))
	config.Global.SetExplicitlySet(config.DebugField, cmd.Flags().Changed("debug"))
	config.Global.SetExplicitlySet(config.SSHPubField, cmd.Flags().Changed("sshpub"))
	config.Global.SetExplicitlySet(config.SSHPrivField, cmd.Flags().Changed("sshpriv"))
	config.Global.SetExplicitlySet(config.PasswordField, cmd.Flags().Changed("pw"))
	config.Global.SetExplicitlySet(config.VideoDirField, cmd.Flags().Changed("video-dir"))
	config.Global.SetExplicitlySet(config.LogLevelField, cmd.Flags().Changed("log-level"))
	config.Global.SetExplicitlySet(config.LogFileField, cmd.Flags().Changed("log-file"))
	config.Global.SetExplicitlySet(config.RateLimitField, cmd.Flags().Changed("rate-limit"))
	config.Global.SetExplicitlySet(config.RateBurstField, cmd.Flags().Changed("rate-burst"))
}
