package handlers

import (
	"net/http"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// StatsResponse reports the store counters and disk usage.
type StatsResponse struct {
	Pending    int    `json:"pending"`
	Delivered  int    `json:"delivered"`
	Remaining  int    `json:"remaining"`
	Ledger     int    `json:"ledger"`
	MediaFiles int    `json:"media_files"`
	MediaBytes uint64 `json:"media_bytes"`
	MediaSize  string `json:"media_size"`
}

// HandleStats returns a snapshot of the rendezvous state.
func HandleStats(store QueryStore, files MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := store.Stats()

		count, size, err := files.Usage()
		if err != nil {
			logging.Warn("Failed to read media usage: %v", err)
		}

		c.JSON(http.StatusOK, StatsResponse{
			Pending:    st.Pending,
			Delivered:  st.Delivered,
			Remaining:  st.Remaining,
			Ledger:     st.Ledger,
			MediaFiles: count,
			MediaBytes: size,
			MediaSize:  humanize.Bytes(size),
		})
	}
}
