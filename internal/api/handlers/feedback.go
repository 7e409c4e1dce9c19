package handlers

import (
	"errors"
	"net/http"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/metrics"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/concave-dev/prefq/internal/query"
	"github.com/gin-gonic/gin"
)

// HandleFeedback records a rater's preference.
//
// Replies {"success": false} when the rater gave no preference or named an
// invalid pair; the pair stays pending. Feedback for a pair that is no longer
// pending (already answered by another rater, or never submitted) is accepted
// as a no-op with {"success": true} so the rater page moves on.
func HandleFeedback(store QueryStore, files MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := protocol.DecodeFeedbackRequest(c.Request.Body)
		if err != nil {
			logging.Warn("Rejected feedback from %s: %v", c.ClientIP(), err)
			metrics.RecordFeedback("defective")
			writeError(c, http.StatusBadRequest, "malformed feedback")
			return
		}

		id, preference, err := req.Resolve()
		if err != nil {
			logging.Warn("Defective feedback from %s: %v", c.ClientIP(), err)
			metrics.RecordFeedback("defective")
			writeJSON(c, http.StatusOK, protocol.FeedbackResponse{Success: false})
			return
		}

		err = store.ResolveMatching(id, req.LeftFilename, req.RightFilename, preference, func(rec query.Record) {
			if err := files.Remove(rec.LeftRef, rec.RightRef); err != nil {
				logging.Error("Failed to remove media for %s: %v", logging.FormatQueryID(rec.ID), err)
			}
		})
		if errors.Is(err, query.ErrRefMismatch) {
			logging.Warn("Feedback for %s names %s/%s, which is not the pending pair",
				logging.FormatQueryID(id), req.LeftFilename, req.RightFilename)
			metrics.RecordFeedback("duplicate")
			writeJSON(c, http.StatusOK, protocol.FeedbackResponse{Success: true})
			return
		}
		if errors.Is(err, query.ErrUnknownID) {
			logging.Info("Query %s already evaluated", logging.FormatQueryID(id))
			metrics.RecordFeedback("duplicate")
			writeJSON(c, http.StatusOK, protocol.FeedbackResponse{Success: true})
			return
		}

		metrics.RecordFeedback("resolved")
		updateGauges(store)
		logging.Success("Resolved query %s (left preferred: %t)", logging.FormatQueryID(id), preference)
		writeJSON(c, http.StatusOK, protocol.FeedbackResponse{Success: true})
	}
}

// HandleDrain returns the completed batch and clears the ledger, or {} while
// any submitted pair is still unresolved.
func HandleDrain(store QueryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		feedback, ok := store.TryDrain()
		metrics.RecordDrain(ok)

		if ok {
			updateGauges(store)
			logging.Success("Drained %d preferences", len(feedback))
		} else {
			st := store.Stats()
			logging.Debug("Feedback not fully evaluated, %d queries remaining", st.Remaining)
		}

		writeJSON(c, http.StatusOK, protocol.Feedback(feedback))
	}
}
