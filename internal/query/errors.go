package query

import "errors"

var (
	// ErrDuplicateID is returned by Submit when a record with the same ID is
	// still pending. IDs may be reused once the earlier record is resolved.
	ErrDuplicateID = errors.New("duplicate query id")

	// ErrUnknownID is returned by Resolve when no pending record has the ID,
	// either because it was never submitted or because it was already resolved.
	ErrUnknownID = errors.New("unknown query id")

	// ErrRefMismatch is returned by ResolveMatching when the pending record
	// with the ID holds a different pair than the caller was shown.
	ErrRefMismatch = errors.New("query refs do not match pending record")
)
