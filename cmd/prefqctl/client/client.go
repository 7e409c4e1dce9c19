// Package client provides the producer side of the prefq protocol for the
// prefqctl CLI.
//
// This package implements the complete HTTP client layer a producer needs to
// talk to a prefq rendezvous server: submitting pairs of media files, draining
// the feedback ledger once a batch is complete, and restoring the submission
// order of the answers.
//
// PRODUCER CLIENT ARCHITECTURE:
// The ProducerClient wraps the Resty HTTP client with prefq-specific behavior:
//   - Submission: multipart uploads with the shared-secret handshake attached
//   - Fault tolerance: a circuit breaker that fails a batch fast once the
//     server stops answering, instead of timing out pair by pair
//   - Waiting: capped exponential backoff while the batch is still being rated
//   - Ordering: the server drains answers as an unordered map, so the producer
//     keeps its own id list and reorders locally
//
// The server never tells a producer which answers belong to it; the drain
// returns everything resolved since the last drain. A producer therefore owns
// a batch only when it is the sole producer talking to a server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/concave-dev/prefq/cmd/prefqctl/utils"
	"github.com/concave-dev/prefq/internal/auth"
	configDefaults "github.com/concave-dev/prefq/internal/config"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/netutil"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// errFeedbackPending marks an empty drain: the batch is not complete yet.
var errFeedbackPending = errors.New("feedback not complete yet")

// ErrSubmissionDropped is returned when the server answers a submission with
// an empty body, which is how it silently drops unauthenticated uploads.
var ErrSubmissionDropped = fmt.Errorf("%w: server dropped the submission", auth.ErrAuthMismatch)

// Preference is one answer in submission order.
type Preference struct {
	QueryID       string `json:"query_id"`
	LeftPreferred bool   `json:"left_preferred"`
}

// Options tunes a ProducerClient. Zero values fall back to the defaults in
// internal/config.
type Options struct {
	Timeout         time.Duration     // Bound on every individual HTTP call
	PollInterval    time.Duration     // First wait between drain attempts
	MaxPollInterval time.Duration     // Cap of the exponential poll backoff
	Parallel        int               // Pairs uploaded concurrently
	Credentials     *auth.Credentials // Handshake credentials, nil when disabled
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = configDefaults.DefaultRequestTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = configDefaults.DefaultPollInterval
	}
	if o.MaxPollInterval < o.PollInterval {
		o.MaxPollInterval = max(configDefaults.DefaultMaxPollInterval, o.PollInterval)
	}
	if o.Parallel < 1 {
		o.Parallel = configDefaults.DefaultUploadParallelism
	}
	return o
}

// ProducerClient talks to one prefq server on behalf of a producer.
type ProducerClient struct {
	client  *resty.Client
	baseURL string
	opts    Options
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

// NewProducerClient creates a client for the server at serverURL
// (e.g. http://localhost:5000).
func NewProducerClient(serverURL string, opts Options) *ProducerClient {
	opts = opts.withDefaults()
	baseURL := strings.TrimRight(serverURL, "/")

	client := resty.New()

	// Route Resty's internal logging through our structured logging system
	client.SetLogger(utils.RestyLogger{})

	// Same codec as the server
	client.SetJSONMarshaler(protocol.Marshal)
	client.SetJSONUnmarshaler(protocol.Unmarshal)

	client.
		SetTimeout(opts.Timeout).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("prefqctl/%s", config.Version))

	// Only drains are retried here; multipart bodies cannot be replayed once
	// their file readers are consumed.
	client.
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil && r != nil && r.Request != nil && r.Request.Method == http.MethodGet
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "prefq-submit",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// Rejections (409, 400) prove the server is alive; only transport
		// failures count against it.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransportError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logging.Warn("Server at %s unreachable, failing remaining submissions fast", baseURL)
				return
			}
			logging.Debug("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &ProducerClient{
		client:  client,
		baseURL: baseURL,
		opts:    opts,
		breaker: breaker,
	}
}

// BaseURL returns the server URL the client talks to.
func (c *ProducerClient) BaseURL() string {
	return c.baseURL
}

// QueryID derives the query id of a pair from its two file names: each name
// loses its directory and extension and the stems are joined with "-".
// "01.mp4" and "02.mp4" give "01-02".
func QueryID(left, right string) string {
	return stem(left) + "-" + stem(right)
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsTransportError reports whether err means the server could not be reached
// or did not answer, as opposed to answering with a rejection.
func IsTransportError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	if netutil.IsConnectionRefusedError(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// FetchFeedback performs one drain attempt. It returns errFeedbackPending
// while the batch is incomplete.
func (c *ProducerClient) FetchFeedback(ctx context.Context) (map[string]bool, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/feedback")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server at %s: %w", c.baseURL, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	var feedback protocol.Feedback
	if err := protocol.Unmarshal(resp.Body(), &feedback); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	if len(feedback) == 0 {
		return nil, errFeedbackPending
	}
	return feedback, nil
}

// IsPending reports whether err is an empty drain from FetchFeedback.
func IsPending(err error) bool {
	return errors.Is(err, errFeedbackPending)
}

// StatusError is an unexpected HTTP status from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server answered with status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// retryable reports whether a drain failure is worth another attempt.
func retryable(err error) bool {
	if IsPending(err) || IsTransportError(err) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return false
}

// AwaitFeedback polls the server until the batch identified by ids has been
// completely rated, then returns the drained answers. Empty drains and
// transport failures are retried with capped exponential backoff; the wait
// ends early only when ctx is cancelled or its deadline passes.
func (c *ProducerClient) AwaitFeedback(ctx context.Context, ids []string) (map[string]bool, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.PollInterval
	b.MaxInterval = c.opts.MaxPollInterval
	b.MaxElapsedTime = 0 // ctx bounds the wait

	logging.Info("Waiting for feedback on %d queries from %s", len(ids), c.baseURL)

	attempts := 0
	operation := func() (map[string]bool, error) {
		attempts++
		if err := ctx.Err(); err != nil {
			return nil, backoff.Permanent(err)
		}
		feedback, err := c.FetchFeedback(ctx)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return feedback, err
	}

	notify := func(err error, wait time.Duration) {
		if IsPending(err) {
			logging.Info("Waiting for feedback... (next check in %s)", wait.Round(time.Millisecond))
			return
		}
		logging.Warn("Feedback check failed: %v (retrying in %s)", err, wait.Round(time.Millisecond))
	}

	feedback, err := backoff.RetryNotifyWithData(operation, backoff.WithContext(b, ctx), notify)
	if err != nil {
		return nil, fmt.Errorf("stopped waiting for feedback after %d attempts: %w", attempts, err)
	}

	logging.Success("Received feedback for %d queries", len(feedback))
	return feedback, nil
}

// MissingFeedbackError lists submitted ids that the drain did not contain.
type MissingFeedbackError struct {
	IDs []string
}

func (e *MissingFeedbackError) Error() string {
	return fmt.Sprintf("no feedback for %d queries: %s", len(e.IDs), strings.Join(e.IDs, ", "))
}

// Reorder restores submission order. Every id found in feedback is returned
// in the order of ids; ids without an answer are reported in a
// *MissingFeedbackError alongside the answers that were found. Answers for
// ids the producer never submitted are ignored.
func Reorder(ids []string, feedback map[string]bool) ([]Preference, error) {
	prefs := make([]Preference, 0, len(ids))
	var missing []string
	for _, id := range ids {
		pref, ok := feedback[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		prefs = append(prefs, Preference{QueryID: id, LeftPreferred: pref})
	}

	if len(missing) > 0 {
		return prefs, &MissingFeedbackError{IDs: missing}
	}
	return prefs, nil
}
