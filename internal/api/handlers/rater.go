package handlers

import (
	"net/http"
	"net/url"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Template names registered on the engine by the api package.
const (
	RaterTemplate  = "rater.html"
	NoDataTemplate = "no_data.html"
)

// HandleRater renders the comparison page for the next pair in delivery order.
// With nothing pending it renders a page that reloads after reloadSeconds.
func HandleRater(store QueryStore, reloadSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := store.NextForDelivery()
		if !ok {
			c.HTML(http.StatusOK, NoDataTemplate, gin.H{
				"Reload": reloadSeconds,
			})
			return
		}

		metrics.QueriesDelivered.Inc()
		logging.Debug("Delivering query %s (delivery %d)", logging.FormatQueryID(rec.ID), rec.Deliveries)

		c.HTML(http.StatusOK, RaterTemplate, gin.H{
			"Left":     rec.LeftRef,
			"Right":    rec.RightRef,
			"LeftURL":  mediaURL(rec.LeftRef),
			"RightURL": mediaURL(rec.RightRef),
		})
	}
}

// mediaURL is the path the rater page fetches name from. Query ids may carry
// '?', '#' or '%', which must not reach the browser as URL syntax.
func mediaURL(name string) string {
	return "/videos/" + url.PathEscape(name)
}
