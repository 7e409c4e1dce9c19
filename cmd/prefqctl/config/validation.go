// Package config provides configuration management for the prefqctl CLI.
package config

import (
	"fmt"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateServerURL(); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	level, err := logging.NormalizeLogLevel(Global.LogLevel)
	if err != nil {
		return err
	}
	Global.LogLevel = level

	if err := validate.ValidatePositiveTimeout(Global.Timeout, "--timeout"); err != nil {
		return err
	}

	return nil
}

// ValidateServerURL validates the --url flag
func ValidateServerURL() error {
	if err := validate.ValidateServerURL(Global.ServerURL); err != nil {
		logging.Error("Invalid server URL '%s': %v", Global.ServerURL, err)
		return fmt.Errorf("invalid server URL - expected format: http://host:port (e.g., %s)", DefaultServerURL)
	}
	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[Global.Output] {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return fmt.Errorf("invalid output format - valid: table, json")
	}
	return nil
}

// ValidateCredentials validates --sshpub, --sshpriv and --pw
func ValidateCredentials() error {
	return validate.ValidateProducerCredentials(Producer.SSHPub, Producer.SSHPriv, Producer.Password)
}

// ValidatePolling validates the flags that shape the feedback wait
func ValidatePolling() error {
	if err := validate.ValidatePositiveTimeout(Producer.PollInterval, "--poll-interval"); err != nil {
		return err
	}
	if Producer.MaxPollInterval < Producer.PollInterval {
		return fmt.Errorf("--max-poll-interval (%s) must not be shorter than --poll-interval (%s)",
			Producer.MaxPollInterval, Producer.PollInterval)
	}
	if Producer.MaxWait < 0 {
		return fmt.Errorf("--max-wait cannot be negative")
	}
	return nil
}

// ValidateSubmission validates the flags that describe a batch
func ValidateSubmission() error {
	if err := ValidateCredentials(); err != nil {
		return err
	}
	if len(Producer.Pairs) == 0 {
		return fmt.Errorf("--pairs is required (e.g., --pairs=01.mp4:02.mp4,03.mp4:04.mp4)")
	}
	if Producer.Parallel < 1 || Producer.Parallel > 64 {
		return fmt.Errorf("--parallel must be between 1 and 64, got: %d", Producer.Parallel)
	}
	return nil
}
