package handlers

import (
	"net/http"
	"time"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/gin-gonic/gin"
)

// Health status values reported by HandleHealth.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// HealthResponse reports whether the server can take submissions and serve
// media, along with the rendezvous counters a producer waits on.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`

	Remaining   int  `json:"remaining"`    // submitted queries without a preference
	Ledger      int  `json:"ledger"`       // preferences awaiting drain
	BatchReady  bool `json:"batch_ready"`  // GET /feedback would return the ledger now
	MediaOnline bool `json:"media_online"` // media folder is readable

	Error string `json:"error,omitempty"`
}

// HandleHealth reports the server's health. An unreadable media folder means
// uploads and rater playback fail, so the server answers 503 with a degraded
// status.
func HandleHealth(version string, startTime time.Time, store QueryStore, files MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := store.Stats()

		response := HealthResponse{
			Status:      StatusHealthy,
			Timestamp:   time.Now(),
			Version:     version,
			Uptime:      time.Since(startTime).Round(time.Second).String(),
			Remaining:   st.Remaining,
			Ledger:      st.Ledger,
			BatchReady:  st.Remaining == 0 && st.Ledger > 0,
			MediaOnline: true,
		}

		code := http.StatusOK
		if _, _, err := files.Usage(); err != nil {
			logging.Warn("Health check: media folder unavailable: %v", err)
			response.Status = StatusDegraded
			response.MediaOnline = false
			response.Error = "media folder unavailable"
			code = http.StatusServiceUnavailable
		}

		writeJSON(c, code, response)
	}
}
