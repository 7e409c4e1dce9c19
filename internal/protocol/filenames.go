// Package protocol defines the prefq wire format shared by the rendezvous
// server, the rater page and the producer client.
//
// WIRE CONTRACT:
//   - Media files are stored as {id}-left.<ext> and {id}-right.<ext>
//   - POST /videos is multipart with parts query_id, left_video, right_video
//     and, when the handshake is enabled, password
//   - query_id and password travel as url-escaped part filenames; the
//     query_id filename is a JSON string literal
//   - Feedback and drain payloads are JSON, encoded with goccy/go-json
package protocol

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Side identifies which half of a pair a media file belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Multipart field names used by POST /videos.
const (
	FieldQueryID    = "query_id"
	FieldLeftVideo  = "left_video"
	FieldRightVideo = "right_video"
	FieldPassword   = "password"
)

// ErrInvalidFilename is returned for media filenames that do not follow the
// {id}-left.<ext> / {id}-right.<ext> convention.
var ErrInvalidFilename = errors.New("invalid media filename")

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,16}$`)

// Extension returns the extension (with leading dot) of an uploaded file name,
// or "" when it has none or it is not a plain alphanumeric extension.
func Extension(uploadName string) string {
	ext := filepath.Ext(uploadName)
	if !extensionPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// MediaFilename builds the on-disk name for one side of a query.
// ext is taken as returned by Extension.
func MediaFilename(id string, side Side, ext string) string {
	return id + "-" + string(side) + ext
}

// PairFilenames returns the left and right on-disk names for a query whose
// left upload was named uploadName. Both sides share the left extension.
func PairFilenames(id, uploadName string) (left, right string) {
	ext := Extension(uploadName)
	return MediaFilename(id, SideLeft, ext), MediaFilename(id, SideRight, ext)
}

// ParseMediaFilename recovers the query id and side from an on-disk media name.
func ParseMediaFilename(name string) (string, Side, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	stem := name
	if ext := filepath.Ext(name); extensionPattern.MatchString(ext) {
		stem = strings.TrimSuffix(name, ext)
	}

	for _, side := range []Side{SideLeft, SideRight} {
		suffix := "-" + string(side)
		if id, ok := strings.CutSuffix(stem, suffix); ok && id != "" {
			return id, side, nil
		}
	}

	return "", "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
}

// QueryIDFromLeft recovers the query id from a left media filename, as sent
// back by the rater page.
func QueryIDFromLeft(name string) (string, error) {
	id, side, err := ParseMediaFilename(name)
	if err != nil {
		return "", err
	}
	if side != SideLeft {
		return "", fmt.Errorf("%w: %q is not a left media file", ErrInvalidFilename, name)
	}
	return id, nil
}

// EncodeQueryIDField renders a query id as the query_id part filename.
func EncodeQueryIDField(id string) string {
	quoted, _ := Marshal(id)
	return url.QueryEscape(string(quoted))
}

// DecodeQueryIDField reverses EncodeQueryIDField. Surrounding quotes are
// stripped whether or not the value is valid JSON.
func DecodeQueryIDField(field string) (string, error) {
	raw, err := url.QueryUnescape(field)
	if err != nil {
		raw = field
	}

	var id string
	if err := Unmarshal([]byte(raw), &id); err == nil {
		return id, nil
	}
	return strings.Trim(raw, `"`), nil
}

// EncodePasswordField renders an encrypted base64 secret as the password
// part filename.
func EncodePasswordField(encrypted string) string {
	return url.QueryEscape(encrypted)
}

// DecodePasswordField reverses EncodePasswordField.
func DecodePasswordField(field string) string {
	raw, err := url.QueryUnescape(field)
	if err != nil {
		raw = field
	}
	return strings.Trim(raw, `"`)
}
