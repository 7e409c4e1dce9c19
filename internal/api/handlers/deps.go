// Package handlers provides HTTP request handlers for the prefq rendezvous
// server.
//
// Handlers are thin: they decode the request, call into the query store and
// media store through the small interfaces below, and encode the reply. All
// rendezvous rules (uniqueness, at-most-once resolution, the completion
// barrier) live in internal/query.
//
// ENDPOINTS:
//   - POST /videos: Producer submits a pair of media files under a query id
//   - GET /videos/{filename}: Rater page streams one media file
//   - GET /: Rater page bound to the next pair, or a self-reloading no-data page
//   - POST /feedback: Rater submits a preference for the pair it was shown
//   - GET /feedback: Producer drains the ledger once its batch is complete
//   - GET /api/v1/health, /api/v1/stats: Operational status
package handlers

import (
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/concave-dev/prefq/internal/query"
	"github.com/gin-gonic/gin"
)

// QueryStore is the slice of *query.Store the handlers use.
type QueryStore interface {
	SubmitWith(id, leftRef, rightRef string, persist func() error) error
	NextForDelivery() (query.Record, bool)
	ResolveMatching(id, leftRef, rightRef string, preference bool, cleanup func(query.Record)) error
	TryDrain() (map[string]bool, bool)
	Stats() query.Stats
}

// MediaStore is the slice of *media.Store the handlers use.
type MediaStore interface {
	Save(name string, r io.Reader) (int64, error)
	Remove(names ...string) error
	Open(name string) (*os.File, fs.FileInfo, error)
	Usage() (int, uint64, error)
}

// SecretVerifier checks the producer's encrypted secret and issues the ack.
// A nil SecretVerifier disables the handshake.
type SecretVerifier interface {
	Verify(encrypted string) error
	Ack() (string, error)
}

// writeJSON encodes v with the prefq codec. Protocol replies go through here
// so the server and producer agree on one JSON implementation.
func writeJSON(c *gin.Context, status int, v any) {
	data, err := protocol.Marshal(v)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

// writeError sends a protocol.ErrorResponse.
func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, protocol.ErrorResponse{Error: msg})
}
