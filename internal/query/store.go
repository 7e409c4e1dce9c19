// Package query implements the server-side rendezvous state for prefq: the
// pending query store, the delivery order shown to raters, and the feedback
// ledger with its completion barrier.
//
// All state lives in a single Store guarded by one mutex. Producers submit
// pairs, raters pull pairs and resolve them, and the producer drains the
// ledger once every submitted pair has been resolved.
//
// DELIVERY ORDER:
//   - Records that were never delivered are handed out first, oldest first
//   - Once every record has been delivered, the front record is delivered
//     again and rotated to the back (FIFO cycling)
//   - Delivery grants no lease; the first accepted resolution wins
//
// COMPLETION BARRIER:
//   - remaining counts accepted submits minus accepted resolves
//   - The ledger is drained all-or-nothing, only when remaining is zero and
//     at least one entry was recorded since the last drain
package query

import (
	"sync"
	"time"
)

// Store is the single owned piece of server state. It is safe for concurrent
// use; every exported method takes the store mutex for its full duration.
type Store struct {
	mu sync.Mutex

	// fresh holds never-delivered records in submission order.
	fresh []*Record
	// cycling holds delivered records in rotation order.
	cycling []*Record
	byID    map[string]*Record

	ledger    map[string]bool
	remaining int

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*Record),
		ledger: make(map[string]bool),
		now:    time.Now,
	}
}

// Submit enqueues a new record at the back of the delivery order and
// increments the barrier count. Returns ErrDuplicateID if id is pending.
func (s *Store) Submit(id, leftRef, rightRef string) error {
	return s.SubmitWith(id, leftRef, rightRef, nil)
}

// SubmitWith is Submit with a persist step that runs inside the same critical
// section, after the duplicate check and before the record becomes visible.
// If persist fails nothing is enqueued and its error is returned.
func (s *Store) SubmitWith(id, leftRef, rightRef string, persist func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; exists {
		return ErrDuplicateID
	}

	if persist != nil {
		if err := persist(); err != nil {
			return err
		}
	}

	rec := &Record{
		ID:          id,
		LeftRef:     leftRef,
		RightRef:    rightRef,
		State:       StatePending,
		SubmittedAt: s.now(),
	}
	s.byID[id] = rec
	s.fresh = append(s.fresh, rec)
	s.remaining++
	return nil
}

// NextForDelivery selects the record to show a rater and marks it delivered.
// The record stays pending. Returns false when the store is empty.
func (s *Store) NextForDelivery() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *Record
	switch {
	case len(s.fresh) > 0:
		rec = s.fresh[0]
		s.fresh[0] = nil
		s.fresh = s.fresh[1:]
	case len(s.cycling) > 0:
		rec = s.cycling[0]
		s.cycling[0] = nil
		s.cycling = s.cycling[1:]
	default:
		return Record{}, false
	}

	rec.State = StateDelivered
	rec.Deliveries++
	s.cycling = append(s.cycling, rec)
	return *rec, true
}

// Resolve removes the pending record with id, records the preference in the
// ledger and decrements the barrier count. Returns ErrUnknownID if no record
// with id is pending; a second resolution of the same id is a no-op.
func (s *Store) Resolve(id string, preference bool) error {
	return s.ResolveWith(id, preference, nil)
}

// ResolveWith is Resolve with a cleanup step that runs inside the same
// critical section after the record is evicted. The resolution is final
// regardless of what cleanup does.
func (s *Store) ResolveWith(id string, preference bool, cleanup func(Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrUnknownID
	}
	s.resolveLocked(rec, preference, cleanup)
	return nil
}

// ResolveMatching is ResolveWith for a rater that names the pair it was
// shown. If the pending record under id holds other refs, for instance
// because the id was resolved and resubmitted in between, it returns
// ErrRefMismatch and the record stays pending.
func (s *Store) ResolveMatching(id, leftRef, rightRef string, preference bool, cleanup func(Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrUnknownID
	}
	if rec.LeftRef != leftRef || rec.RightRef != rightRef {
		return ErrRefMismatch
	}
	s.resolveLocked(rec, preference, cleanup)
	return nil
}

func (s *Store) resolveLocked(rec *Record, preference bool, cleanup func(Record)) {
	delete(s.byID, rec.ID)
	s.fresh = removeRecord(s.fresh, rec)
	s.cycling = removeRecord(s.cycling, rec)

	s.ledger[rec.ID] = preference
	s.remaining--

	rec.State = StateResolved
	if cleanup != nil {
		cleanup(*rec)
	}
}

// TryDrain returns the ledger contents and clears it when every submitted
// record has been resolved and the ledger is non-empty. Otherwise it returns
// an empty map and false, leaving the ledger untouched.
func (s *Store) TryDrain() (map[string]bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remaining != 0 || len(s.ledger) == 0 {
		return map[string]bool{}, false
	}

	snapshot := s.ledger
	s.ledger = make(map[string]bool)
	return snapshot, true
}

// Pending returns the number of unresolved records.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Lookup returns a copy of the pending record with id.
func (s *Store) Lookup(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns copies of every pending record in delivery order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.byID))
	for _, rec := range s.fresh {
		out = append(out, *rec)
	}
	for _, rec := range s.cycling {
		out = append(out, *rec)
	}
	return out
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Pending:   len(s.fresh),
		Delivered: len(s.cycling),
		Remaining: s.remaining,
		Ledger:    len(s.ledger),
	}
}

func removeRecord(list []*Record, target *Record) []*Record {
	for i, rec := range list {
		if rec == target {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
