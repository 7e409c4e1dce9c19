package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ErrDefectiveFeedback is returned for feedback that names no preference or
// no valid pair. The record it refers to stays pending.
var ErrDefectiveFeedback = errors.New("defective feedback")

// SubmitResponse is the POST /videos body when the handshake is enabled.
// Password is the server's base64 RSA-OAEP encryption of the shared secret.
type SubmitResponse struct {
	Password string `json:"password,omitempty"`
}

// FeedbackRequest is the POST /feedback body sent by the rater page.
// IsLeftPreferred is nil when the rater submitted without choosing.
type FeedbackRequest struct {
	IsLeftPreferred *bool  `json:"is_left_preferred"`
	LeftFilename    string `json:"video_filename_left"`
	RightFilename   string `json:"video_filename_right"`
}

// Resolve returns the query id and preference named by the request.
func (r FeedbackRequest) Resolve() (string, bool, error) {
	if r.IsLeftPreferred == nil {
		return "", false, fmt.Errorf("%w: no preference given", ErrDefectiveFeedback)
	}

	id, err := QueryIDFromLeft(r.LeftFilename)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrDefectiveFeedback, err)
	}

	rightID, side, err := ParseMediaFilename(r.RightFilename)
	if err != nil || side != SideRight || rightID != id {
		return "", false, fmt.Errorf("%w: right file %q does not pair with %q", ErrDefectiveFeedback, r.RightFilename, r.LeftFilename)
	}

	return id, *r.IsLeftPreferred, nil
}

// FeedbackResponse is the POST /feedback reply.
type FeedbackResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every 4xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Feedback is the GET /feedback body: query id to left-preferred. It is empty
// while the batch is incomplete.
type Feedback map[string]bool

// Marshal encodes v with the prefq JSON codec.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data into v with the prefq JSON codec.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DecodeFeedbackRequest reads a FeedbackRequest from r.
func DecodeFeedbackRequest(r io.Reader) (FeedbackRequest, error) {
	var req FeedbackRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return FeedbackRequest{}, fmt.Errorf("%w: %w", ErrDefectiveFeedback, err)
	}
	return req, nil
}
