package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/media"
	"github.com/concave-dev/prefq/internal/metrics"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/concave-dev/prefq/internal/query"
	"github.com/concave-dev/prefq/internal/validate"
	"github.com/gin-gonic/gin"
)

// HandleSubmit accepts a query pair from a producer.
//
// When verifier is set the password part must decrypt to the shared secret;
// otherwise the submission is dropped and answered with an empty 200, leaving
// no trace on disk or in the store. Accepted pairs are written to disk inside
// the store's critical section, so a pair is never visible to raters before
// both files exist.
func HandleSubmit(store QueryStore, files MediaStore, verifier SecretVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			logging.Warn("Rejected submission from %s: malformed multipart: %v", c.ClientIP(), err)
			metrics.RecordRejection("malformed")
			writeError(c, http.StatusBadRequest, "malformed multipart request")
			return
		}

		if verifier != nil {
			secret := protocol.DecodePasswordField(formField(form, protocol.FieldPassword))
			if err := verifier.Verify(secret); err != nil {
				logging.Warn("Rejected submission from %s: %v", c.ClientIP(), err)
				metrics.RecordRejection("auth")
				c.Status(http.StatusOK)
				return
			}
		}

		id, err := protocol.DecodeQueryIDField(formField(form, protocol.FieldQueryID))
		if err == nil {
			err = validate.QueryIDFormat(id)
		}
		if err != nil {
			logging.Warn("Rejected submission from %s: %v", c.ClientIP(), err)
			metrics.RecordRejection("malformed")
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}

		left, right := formFile(form, protocol.FieldLeftVideo), formFile(form, protocol.FieldRightVideo)
		if left == nil || right == nil {
			logging.Warn("Rejected submission %s: missing media part", logging.FormatQueryID(id))
			metrics.RecordRejection("malformed")
			writeError(c, http.StatusBadRequest, "left_video and right_video are required")
			return
		}

		leftName, rightName := protocol.PairFilenames(id, left.Filename)
		var written int64
		err = store.SubmitWith(id, leftName, rightName, func() error {
			n, err := saveUpload(files, leftName, left)
			if err != nil {
				return err
			}
			m, err := saveUpload(files, rightName, right)
			if err != nil {
				_ = files.Remove(leftName)
				return err
			}
			written = n + m
			return nil
		})

		switch {
		case errors.Is(err, query.ErrDuplicateID):
			logging.Warn("Rejected submission %s: already pending", logging.FormatQueryID(id))
			metrics.RecordRejection("duplicate")
			writeError(c, http.StatusConflict, query.ErrDuplicateID.Error())
			return
		case err != nil:
			logging.Error("Failed to store media for %s: %v", logging.FormatQueryID(id), err)
			metrics.RecordRejection("storage")
			writeError(c, http.StatusInternalServerError, "failed to store media")
			return
		}

		metrics.QueriesSubmitted.Inc()
		metrics.MediaBytesStored.Add(float64(written))
		updateGauges(store)
		logging.Success("Queued query %s", logging.FormatQueryID(id))

		resp := protocol.SubmitResponse{}
		if verifier != nil {
			ack, err := verifier.Ack()
			if err != nil {
				logging.Error("Failed to build acknowledgement for %s: %v", logging.FormatQueryID(id), err)
			}
			resp.Password = ack
		}
		writeJSON(c, http.StatusOK, resp)
	}
}

// HandleServeVideo streams a stored media file with range support.
func HandleServeVideo(files MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("filename")

		f, info, err := files.Open(name)
		if err != nil {
			if !errors.Is(err, media.ErrNotFound) {
				logging.Error("Failed to open media %s: %v", name, err)
			}
			writeError(c, http.StatusNotFound, "media not found")
			return
		}
		defer f.Close()

		http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
	}
}

// formField returns a text field carried either as a part filename (the
// producer's encoding) or as a plain form value.
func formField(form *multipart.Form, name string) string {
	if fhs := form.File[name]; len(fhs) > 0 && fhs[0].Filename != "" {
		return fhs[0].Filename
	}
	if vals := form.Value[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func formFile(form *multipart.Form, name string) *multipart.FileHeader {
	if fhs := form.File[name]; len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

func saveUpload(files MediaStore, name string, fh *multipart.FileHeader) (int64, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()
	return files.Save(name, src)
}

func updateGauges(store QueryStore) {
	st := store.Stats()
	metrics.UpdateStoreGauges(st.Pending+st.Delivered, st.Ledger)
}
