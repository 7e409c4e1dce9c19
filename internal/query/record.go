package query

import "time"

// State is the delivery state of a pending query. Delivered is advisory: it
// grants no lease and a delivered record can be shown to any number of raters.
type State int

const (
	// StatePending marks a record that has never been shown to a rater.
	StatePending State = iota

	// StateDelivered marks a record shown to at least one rater.
	StateDelivered

	// StateResolved marks a record whose preference was accepted. Resolved
	// records are evicted from the store immediately, so this state is only
	// observed on the copy handed to cleanup callbacks.
	StateResolved
)

// String returns the lower-case state name used in logs and the stats endpoint.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDelivered:
		return "delivered"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Record is one pair of media artifacts awaiting a human preference.
// LeftRef and RightRef are media filenames and never change after submission.
type Record struct {
	ID          string    `json:"id"`
	LeftRef     string    `json:"left"`
	RightRef    string    `json:"right"`
	State       State     `json:"-"`
	SubmittedAt time.Time `json:"submitted_at"`
	Deliveries  int       `json:"deliveries"`
}

// Stats is a point-in-time snapshot of the store counters.
type Stats struct {
	Pending   int `json:"pending"`   // records never delivered
	Delivered int `json:"delivered"` // records delivered at least once
	Remaining int `json:"remaining"` // barrier count: accepted submits minus accepted resolves
	Ledger    int `json:"ledger"`    // resolved entries awaiting drain
}
