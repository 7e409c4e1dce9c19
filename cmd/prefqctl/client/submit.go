package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// Pair names the two media files of one query, relative to the batch folder.
type Pair struct {
	Left  string
	Right string
}

// ID returns the query id the pair is submitted under.
func (p Pair) ID() string {
	return QueryID(p.Left, p.Right)
}

// ErrDuplicatePair is returned for a pair whose id already appeared earlier in
// the same batch. The server would reject it anyway.
var ErrDuplicatePair = errors.New("duplicate pair in batch")

// PairError is the failure of one pair of a batch.
type PairError struct {
	Index   int
	QueryID string
	Err     error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair %d (%s): %v", e.Index+1, e.QueryID, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}

// FailedPairs extracts the per-pair failures from a SubmitBatch error.
func FailedPairs(err error) []*PairError {
	if err == nil {
		return nil
	}

	var failed []*PairError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			var pe *PairError
			if errors.As(e, &pe) {
				failed = append(failed, pe)
			}
		}
		return failed
	}

	var pe *PairError
	if errors.As(err, &pe) {
		failed = append(failed, pe)
	}
	return failed
}

// Accepted returns the ids of a batch that were not reported as failed in err.
func Accepted(ids []string, err error) []string {
	failed := make(map[int]bool)
	for _, pe := range FailedPairs(err) {
		failed[pe.Index] = true
	}

	accepted := make([]string, 0, len(ids))
	for i, id := range ids {
		if !failed[i] {
			accepted = append(accepted, id)
		}
	}
	return accepted
}

// SubmitPair uploads one pair under id. The query id and the sealed secret
// travel as part filenames, the convention the server reads first.
func (c *ProducerClient) SubmitPair(ctx context.Context, id, leftPath, rightPath string) error {
	left, err := os.Open(leftPath)
	if err != nil {
		return fmt.Errorf("failed to open left media: %w", err)
	}
	defer left.Close()

	right, err := os.Open(rightPath)
	if err != nil {
		return fmt.Errorf("failed to open right media: %w", err)
	}
	defer right.Close()

	quoted, err := protocol.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode query id: %w", err)
	}

	var errResp protocol.ErrorResponse
	req := c.client.R().
		SetContext(ctx).
		SetError(&errResp).
		SetMultipartField(protocol.FieldQueryID, protocol.EncodeQueryIDField(id),
			"application/json", strings.NewReader(string(quoted))).
		SetFileReader(protocol.FieldLeftVideo, filepath.Base(leftPath), left).
		SetFileReader(protocol.FieldRightVideo, filepath.Base(rightPath), right)

	creds := c.opts.Credentials
	if creds != nil {
		sealed, err := creds.Seal()
		if err != nil {
			return fmt.Errorf("failed to seal shared secret: %w", err)
		}
		req.SetMultipartField(protocol.FieldPassword, protocol.EncodePasswordField(sealed),
			"text/plain", strings.NewReader(sealed))
	}

	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		return req.Post("/videos")
	})
	if err != nil {
		return fmt.Errorf("failed to submit to %s: %w", c.baseURL, err)
	}

	if resp.StatusCode() != http.StatusOK {
		if errResp.Error != "" {
			return &StatusError{Code: resp.StatusCode(), Body: errResp.Error}
		}
		return &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return ErrSubmissionDropped
	}

	var ack protocol.SubmitResponse
	if err := protocol.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("failed to decode submit response: %w", err)
	}
	if creds != nil {
		if err := creds.ConfirmAck(ack.Password); err != nil {
			return err
		}
	}

	logging.Debug("Submitted %s (%s, %s)", logging.FormatQueryID(id),
		filepath.Base(leftPath), filepath.Base(rightPath))
	return nil
}

// SubmitBatch uploads every pair from dir and returns one id per pair in pair
// order. Failures are collected per pair and joined; pairs that were accepted
// stay accepted. Use Accepted to find out which ids the server holds.
func (c *ProducerClient) SubmitBatch(ctx context.Context, pairs []Pair, dir string) ([]string, error) {
	ids := make([]string, len(pairs))
	errs := make([]error, len(pairs))
	seen := make(map[string]bool, len(pairs))

	var g errgroup.Group
	g.SetLimit(c.opts.Parallel)

	for i, p := range pairs {
		id := p.ID()
		ids[i] = id
		if seen[id] {
			errs[i] = &PairError{Index: i, QueryID: id, Err: ErrDuplicatePair}
			continue
		}
		seen[id] = true

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = &PairError{Index: i, QueryID: id, Err: err}
				return nil
			}
			err := c.SubmitPair(ctx, id, filepath.Join(dir, p.Left), filepath.Join(dir, p.Right))
			if err != nil {
				errs[i] = &PairError{Index: i, QueryID: id, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}

	accepted := len(pairs) - len(failed)
	if len(failed) > 0 {
		logging.Warn("Submitted %d of %d pairs, %d failed", accepted, len(pairs), len(failed))
		return ids, errors.Join(failed...)
	}

	logging.Success("Submitted %d pairs to %s", accepted, c.baseURL)
	return ids, nil
}
