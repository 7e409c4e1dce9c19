package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestRecordDrain tests that drain outcomes land in separate series
func TestRecordDrain(t *testing.T) {
	before := testutil.ToFloat64(DrainsTotal.WithLabelValues("complete"))
	RecordDrain(true)
	RecordDrain(false)
	assert.Equal(t, before+1, testutil.ToFloat64(DrainsTotal.WithLabelValues("complete")))
}

// TestUpdateStoreGauges tests gauge mirroring
func TestUpdateStoreGauges(t *testing.T) {
	UpdateStoreGauges(3, 1)
	assert.Equal(t, float64(3), testutil.ToFloat64(PendingQueries))
	assert.Equal(t, float64(1), testutil.ToFloat64(LedgerEntries))
}

// TestRecordAPIRequest tests request counting
func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/feedback", "200"))
	RecordAPIRequest("GET", "/feedback", "200", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/feedback", "200")))
}

// TestRecordRejectionAndFeedback tests labelled counters
func TestRecordRejectionAndFeedback(t *testing.T) {
	before := testutil.ToFloat64(SubmissionsRejected.WithLabelValues("auth"))
	RecordRejection("auth")
	assert.Equal(t, before+1, testutil.ToFloat64(SubmissionsRejected.WithLabelValues("auth")))

	before = testutil.ToFloat64(FeedbackReceived.WithLabelValues("resolved"))
	RecordFeedback("resolved")
	assert.Equal(t, before+1, testutil.ToFloat64(FeedbackReceived.WithLabelValues("resolved")))
}
