// Package commands provides the complete command tree implementation for prefqctl.
//
// This package defines the command structure of the prefq producer CLI. The
// producer submits pairs of videos to a prefq server, waits until humans have
// rated the whole batch, and collects the answers in submission order.
//
// COMMAND STRUCTURE:
//   - submit: upload a batch of pairs and print their query ids
//   - feedback: drain the answers once (or wait for them with --wait)
//   - run: submit, wait and print the answers in one go
//   - keygen: generate the RSA key pair used by the shared-secret handshake
//
// All commands follow consistent patterns with standardized flag handling, error
// messages, and output formatting.
package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "prefqctl",
	Short: "Producer CLI for prefq pairwise video preference queries",
	Long: `prefq CLI (prefqctl) submits pairs of videos to a prefq server and
collects which video of each pair human raters preferred.

Answers can only be drained once every submitted pair has been rated; the CLI
waits with capped exponential backoff and prints them in submission order.`,
	SilenceUsage: true,
	Example: `  # Submit two pairs, wait for the ratings and print them
  prefqctl run --video-dir=clips --pairs=01.mp4:02.mp4,03.mp4:04.mp4

  # Submit now, collect later
  prefqctl submit --video-dir=clips --pairs=01.mp4:02.mp4
  prefqctl feedback --ids=01-02 --wait

  # Talk to a remote server that requires the shared secret
  prefqctl --url=http://rater.lan:5000 run --sshpub=id_rsa.pub --sshpriv=id_rsa --pw=s3cret \
    --video-dir=clips --pairs=01.mp4:02.mp4

  # Output in JSON format
  prefqctl -o json feedback`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(submitCmd)
	RootCmd.AddCommand(feedbackCmd)
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(keygenCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, serverURLPtr *string, logLevelPtr *string,
	timeoutPtr *time.Duration, verbosePtr *bool, outputPtr *string, defaultServerURL string,
	defaultTimeout time.Duration) {
	rootCmd.PersistentFlags().StringVar(serverURLPtr, "url", defaultServerURL,
		"Base URL of the prefq server")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().DurationVar(timeoutPtr, "timeout", defaultTimeout,
		"Timeout of each HTTP request")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
