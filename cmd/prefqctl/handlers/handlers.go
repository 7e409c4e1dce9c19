// Package handlers provides command handler functions for prefqctl.
//
// Handlers connect the cobra commands to the producer client: they validate
// the command's flags, build a client from the global configuration, run the
// protocol steps and hand the results to the display package. Every blocking
// step runs under a context cancelled by SIGINT/SIGTERM.
package handlers

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/concave-dev/prefq/cmd/prefqctl/client"
	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/concave-dev/prefq/cmd/prefqctl/utils"
	"github.com/concave-dev/prefq/internal/auth"
	"github.com/spf13/cobra"
)

// stdout is where results are printed; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// createClient builds a producer client from the global configuration,
// loading the handshake keys when --sshpub is set.
func createClient() (*client.ProducerClient, error) {
	if err := config.ValidateCredentials(); err != nil {
		return nil, err
	}

	opts := client.Options{
		Timeout:         config.Global.Timeout,
		PollInterval:    config.Producer.PollInterval,
		MaxPollInterval: config.Producer.MaxPollInterval,
		Parallel:        config.Producer.Parallel,
	}

	if config.Producer.SSHPub != "" {
		creds, err := auth.NewCredentials(config.Producer.SSHPub, config.Producer.SSHPriv, config.Producer.Password)
		if err != nil {
			return nil, err
		}
		opts.Credentials = creds
	}

	return client.NewProducerClient(config.Global.ServerURL, opts), nil
}

// commandContext returns a context cancelled on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// waitContext bounds ctx by --max-wait when it is set.
func waitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if config.Producer.MaxWait > 0 {
		return context.WithTimeout(ctx, config.Producer.MaxWait)
	}
	return context.WithCancel(ctx)
}

// parsePairs converts --pairs into client pairs.
func parsePairs() ([]client.Pair, error) {
	raw, err := utils.ParsePairs(config.Producer.Pairs)
	if err != nil {
		return nil, err
	}

	pairs := make([]client.Pair, len(raw))
	for i, p := range raw {
		pairs[i] = client.Pair{Left: p[0], Right: p[1]}
	}
	return pairs, nil
}
