package server

import (
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"

	"notesbuzz/internal/apperr"
	"notesbuzz/internal/blobstore"
)

// Parts beyond this stay on disk while the form is parsed.
const multipartMemoryBytes = 8 << 20

const rejectedTypeMessage = "Only application/* and image/* files are accepted"

type uploadResp struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	ID       string `json:"id"`
}

// handleUpload handles POST /upload: a multipart form with a "file" part and
// an optional "subject" field. The stored name is "<subject>-<original>".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	subject := r.FormValue("subject")
	if subject == "" {
		subject = defaultSubject
	}
	contentType := header.Header.Get("Content-Type")
	if !blobstore.AcceptsContentType(contentType) {
		log.Info("upload rejected", "op", "upload", "content_type", contentType)
		writeMessage(w, http.StatusBadRequest, rejectedTypeMessage)
		return
	}

	f, err := s.files.Put(r.Context(), blobstore.PutInput{
		Reader:      file,
		Size:        header.Size,
		Filename:    storedFilename(subject, header.Filename),
		ContentType: contentType,
		Category:    subject,
	})
	switch {
	case errors.Is(err, apperr.ErrRejectedType):
		writeMessage(w, apperr.HTTPStatus(err), rejectedTypeMessage)
		return
	case err != nil:
		s.metrics.RecordUploadError()
		log.Error("upload failed", "op", "upload", "filename", header.Filename, "err", err)
		writeError(w, apperr.HTTPStatus(err), "Error uploading file")
		return
	}

	s.metrics.RecordUpload(f.SizeBytes)
	log.Info("file uploaded",
		"id", f.ID,
		"filename", f.Filename,
		"size", humanize.IBytes(uint64(f.SizeBytes)),
	)
	writeJSON(w, http.StatusOK, uploadResp{
		Message:  "File uploaded successfully",
		Filename: f.Filename,
		ID:       f.ID,
	})
}
