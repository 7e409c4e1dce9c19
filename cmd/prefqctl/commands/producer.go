// Package commands contains all CLI command definitions for prefqctl.
//
// This file implements the producer commands. They share one flag set
// describing the server handshake, the batch folder and the polling policy.
//
// BATCH SEMANTICS:
// A query id is derived from the pair's file names (01.mp4 + 02.mp4 gives
// 01-02), so resubmitting the same pair while it is pending is rejected by the
// server. The server only releases answers once nothing is pending, and it
// releases all of them at once; run and feedback --ids put them back in the
// order the pairs were given.
package commands

import (
	"github.com/spf13/cobra"
)

// Submit command
var submitCmd = &cobra.Command{
	Use:   "submit --pairs=LEFT:RIGHT[,LEFT:RIGHT...] [flags]",
	Short: "Upload a batch of video pairs for rating",
	Long: `Upload a batch of video pairs to the prefq server.

Each pair is queued under an id derived from its file names. Pairs that fail
are reported but never undo the pairs that were accepted.`,
	Example: `  # Upload two pairs from ./clips
  prefqctl submit --video-dir=clips --pairs=01.mp4:02.mp4,03.mp4:04.mp4

  # Upload with four concurrent uploads
  prefqctl submit --pairs=a.mp4:b.mp4 --parallel=4`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback [flags]",
	Short: "Drain the answers of a completely rated batch",
	Long: `Drain the answers collected by the prefq server.

Nothing is returned while any submitted pair is still unrated. Once the batch
is complete the answers are handed out exactly once. With --ids the answers are
printed in that order and missing ids are reported.`,
	Example: `  # Try once
  prefqctl feedback

  # Wait for the batch and order the answers
  prefqctl feedback --wait --ids=01-02,03-04`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Run command
var runCmd = &cobra.Command{
	Use:   "run --pairs=LEFT:RIGHT[,LEFT:RIGHT...] [flags]",
	Short: "Submit a batch, wait for the ratings and print them in order",
	Long: `Submit a batch of video pairs, wait until every accepted pair has been
rated, and print the preferences in submission order.

The wait backs off exponentially from --poll-interval up to
--max-poll-interval and can be bounded with --max-wait or interrupted with
Ctrl-C.`,
	Example: `  # Typical use
  prefqctl run --video-dir=clips --pairs=01.mp4:02.mp4,03.mp4:04.mp4

  # Give up after ten minutes
  prefqctl run --pairs=01.mp4:02.mp4 --max-wait=10m`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetProducerCommands returns the producer commands for flag and handler setup
func GetProducerCommands() (*cobra.Command, *cobra.Command, *cobra.Command) {
	return submitCmd, feedbackCmd, runCmd
}
