// Package main provides the entry point for the prefq producer CLI (prefqctl).
//
// The main package wires the command tree from the commands package to the
// handlers package and binds every flag to the config package.
//
// INITIALIZATION FLOW:
// 1. Command structure setup
// 2. Global and command-specific flag configuration
// 3. Handler assignment linking commands to the producer client
// 4. Command execution with proper exit codes
package main

import (
	"os"

	"github.com/concave-dev/prefq/cmd/prefqctl/commands"
	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/concave-dev/prefq/cmd/prefqctl/handlers"
	configDefaults "github.com/concave-dev/prefq/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	// Get root command from commands package
	rootCmd := commands.RootCmd

	// Set version and validation
	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	// Setup all command structures
	commands.SetupCommands()

	// Setup global flags
	commands.SetupGlobalFlags(rootCmd, &config.Global.ServerURL, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output,
		config.DefaultServerURL, configDefaults.DefaultRequestTimeout)

	submitCmd, feedbackCmd, runCmd := commands.GetProducerCommands()
	for _, cmd := range []*cobra.Command{submitCmd, feedbackCmd, runCmd} {
		setupProducerFlags(cmd)
	}
	feedbackCmd.Flags().StringSliceVar(&config.Feedback.IDs, "ids", nil,
		"Print answers in the order of these query ids")
	feedbackCmd.Flags().BoolVar(&config.Feedback.Wait, "wait", false,
		"Wait until the batch is complete instead of draining once")

	keygenCmd := commands.GetKeygenCommand()
	keygenCmd.Flags().StringVar(&config.Keygen.Dir, "dir", ".", "Folder receiving id_rsa and id_rsa.pub")
	keygenCmd.Flags().IntVar(&config.Keygen.Bits, "bits", 3072, "RSA key size in bits")

	// Setup command handlers
	submitCmd.RunE = handlers.HandleSubmit
	feedbackCmd.RunE = handlers.HandleFeedback
	runCmd.RunE = handlers.HandleRun
	keygenCmd.RunE = handlers.HandleKeygen
}

// setupProducerFlags binds the flags shared by submit, feedback and run. The
// flags of each command write to the same config fields; only the command
// being executed parses its flags.
func setupProducerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.Producer.SSHPub, "sshpub", "", "Public key used to seal the shared secret")
	cmd.Flags().StringVar(&config.Producer.SSHPriv, "sshpriv", "", "Private key used to check the server's acknowledgement (requires --sshpub and --pw)")
	cmd.Flags().StringVar(&config.Producer.Password, "pw", "", "Shared secret (requires --sshpub and --sshpriv)")
	cmd.Flags().StringVar(&config.Producer.VideoDir, "video-dir", ".", "Folder the pair file names are relative to")
	cmd.Flags().StringSliceVar(&config.Producer.Pairs, "pairs", nil, "Pairs as left:right file names")
	cmd.Flags().DurationVar(&config.Producer.PollInterval, "poll-interval",
		configDefaults.DefaultPollInterval, "First wait between feedback checks")
	cmd.Flags().DurationVar(&config.Producer.MaxPollInterval, "max-poll-interval",
		configDefaults.DefaultMaxPollInterval, "Longest wait between feedback checks")
	cmd.Flags().DurationVar(&config.Producer.MaxWait, "max-wait", 0, "Stop waiting after this long (0 waits forever)")
	cmd.Flags().IntVar(&config.Producer.Parallel, "parallel", configDefaults.DefaultUploadParallelism,
		"Pairs uploaded concurrently")
}

// main is the main entry point
func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
