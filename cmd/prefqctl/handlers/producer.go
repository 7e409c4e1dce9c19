package handlers

import (
	"errors"
	"fmt"

	"github.com/concave-dev/prefq/cmd/prefqctl/client"
	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/concave-dev/prefq/cmd/prefqctl/display"
	"github.com/concave-dev/prefq/cmd/prefqctl/utils"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/spf13/cobra"
)

// submitRows pairs each submitted id with its outcome for display.
func submitRows(pairs []client.Pair, ids []string, err error) []display.SubmittedQuery {
	failed := make(map[int]error)
	for _, pe := range client.FailedPairs(err) {
		failed[pe.Index] = pe.Err
	}

	rows := make([]display.SubmittedQuery, len(pairs))
	for i, p := range pairs {
		rows[i] = display.SubmittedQuery{QueryID: ids[i], Left: p.Left, Right: p.Right, Status: "queued"}
		if perr, ok := failed[i]; ok {
			rows[i].Status = "failed"
			rows[i].Error = perr.Error()
		}
	}
	return rows
}

// HandleSubmit handles the submit command: upload every pair and print the
// resulting query ids.
func HandleSubmit(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if err := config.ValidateSubmission(); err != nil {
		return err
	}
	pairs, err := parsePairs()
	if err != nil {
		return err
	}
	apiClient, err := createClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	logging.Info("Submitting %d pairs from %s to %s", len(pairs), config.Producer.VideoDir, apiClient.BaseURL())
	ids, submitErr := apiClient.SubmitBatch(ctx, pairs, config.Producer.VideoDir)

	if err := display.DisplaySubmitted(stdout, submitRows(pairs, ids, submitErr)); err != nil {
		return err
	}
	return submitErr
}

// HandleFeedback handles the feedback command: drain once, or wait for the
// batch with --wait, and print the answers.
func HandleFeedback(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if config.Feedback.Wait {
		if err := config.ValidatePolling(); err != nil {
			return err
		}
	}
	apiClient, err := createClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var feedback map[string]bool
	if config.Feedback.Wait {
		waitCtx, stop := waitContext(ctx)
		defer stop()
		feedback, err = apiClient.AwaitFeedback(waitCtx, config.Feedback.IDs)
	} else {
		feedback, err = apiClient.FetchFeedback(ctx)
		if client.IsPending(err) {
			logging.Warn("Feedback not complete yet, try again later or use --wait")
			return display.DisplayPreferences(stdout, nil)
		}
	}
	if err != nil {
		return err
	}

	if len(config.Feedback.IDs) == 0 {
		return display.DisplayFeedback(stdout, feedback)
	}
	return displayOrdered(config.Feedback.IDs, feedback)
}

// HandleRun handles the run command: submit, wait for the accepted pairs and
// print their answers in submission order.
func HandleRun(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if err := config.ValidateSubmission(); err != nil {
		return err
	}
	if err := config.ValidatePolling(); err != nil {
		return err
	}
	pairs, err := parsePairs()
	if err != nil {
		return err
	}
	apiClient, err := createClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	ids, submitErr := apiClient.SubmitBatch(ctx, pairs, config.Producer.VideoDir)
	accepted := client.Accepted(ids, submitErr)
	if submitErr != nil {
		logging.Error("Some pairs were not submitted: %v", submitErr)
		if len(accepted) == 0 {
			return submitErr
		}
	}

	waitCtx, stop := waitContext(ctx)
	defer stop()
	feedback, err := apiClient.AwaitFeedback(waitCtx, accepted)
	if err != nil {
		return errors.Join(submitErr, err)
	}

	if err := displayOrdered(accepted, feedback); err != nil {
		return errors.Join(submitErr, err)
	}
	return submitErr
}

// displayOrdered prints answers in the order of ids and reports missing ones
// after printing what was found.
func displayOrdered(ids []string, feedback map[string]bool) error {
	prefs, reorderErr := client.Reorder(ids, feedback)
	if err := display.DisplayPreferences(stdout, prefs); err != nil {
		return err
	}

	if extra := len(feedback) - len(prefs); extra > 0 {
		logging.Warn("Drain contained %d answers for queries outside this batch", extra)
	}
	if reorderErr != nil {
		return fmt.Errorf("incomplete batch: %w", reorderErr)
	}
	return nil
}
