// Package commands provides the CLI command structure for the prefq daemon.
//
// This package implements the root command of prefqd, the rendezvous server
// between a producer that submits video pairs and the humans who rate them.
// It owns the flag system, the pre-run configuration pipeline and the hand-off
// to the daemon lifecycle.
//
// PRE-RUN PIPELINE:
//   - Record which flags the user typed (they win over file and environment)
//   - Layer the YAML file and PREFQ_* environment under the flags
//   - Redirect logging to --log-file when one is configured
//   - Validate the merged configuration before anything is bound
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/prefq/cmd/prefqd/config"
	"github.com/concave-dev/prefq/cmd/prefqd/daemon"
	"github.com/concave-dev/prefq/cmd/prefqd/utils"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/version"
	"github.com/spf13/cobra"
)

// Global variable to track log file handle for cleanup
var logFileHandle *os.File

// CleanupLogFile closes the log file handle if it exists
// This function is called during daemon shutdown to ensure proper cleanup
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// Use fmt.Fprintf instead of logging since the log file is going away
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// openLogFile redirects all logging to path, creating parent directories.
func openLogFile(path string) error {
	logDir := filepath.Dir(path)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	var err error
	logFileHandle, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logging.SetOutput(logFileHandle)
	return nil
}

// Root command for the prefq daemon
var RootCmd = &cobra.Command{
	Use:   "prefqd",
	Short: "Rendezvous server for pairwise video preference queries",
	Long: `prefq daemon (prefqd) collects pairwise preference labels from humans.

A producer uploads pairs of videos, raters open the web page and pick the
better one of each pair, and the producer drains the answers once every
submitted pair has been rated.

Configuration is layered: explicit flags > PREFQ_* environment (.env files
are honored) > --config YAML file > built-in defaults.`,
	Version:      version.PrefqdVersion,
	SilenceUsage: true, // Don't show usage on errors
	Example: `  # Serve on all interfaces with the default port 5000
  prefqd --host=0.0.0.0

  # Require producers to prove they know the shared secret
  prefqd --sshpub=~/.ssh/prefq.pub --sshpriv=~/.ssh/prefq --pw=s3cret

  # Everything from a file, with a per-client rate limit
  prefqd --config=/etc/prefq/prefqd.yaml --rate-limit=10`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Display logo first, before any validation or logging
		utils.DisplayLogo(version.PrefqdVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Check which flags were explicitly set by user
		CheckExplicitFlags(cmd)

		// Configure logging level immediately after flags are parsed to prevent
		// INFO logs during config initialization when ERROR level is requested
		logging.SetLevel(config.Global.LogLevel)

		if err := config.InitializeConfig(); err != nil {
			return err
		}

		// The log file may come from any layer, so it is opened after merging
		if config.Global.LogFile != "" {
			if err := openLogFile(config.Global.LogFile); err != nil {
				return err
			}
		}

		// Validate configuration and ensure log file cleanup on validation failure
		if err := config.ValidateConfig(); err != nil {
			CleanupLogFile()
			return err
		}
		logging.SetLevel(config.Global.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ensure log file cleanup on exit
		defer CleanupLogFile()
		return daemon.Run(cmd.Context())
	},
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)
}
