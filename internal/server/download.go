package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"notesbuzz/internal/apperr"
)

// handleDownload handles GET /file/{id}, streaming the bytes as an
// attachment. Once headers are sent, failures can only be logged.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)
	id := r.PathValue("id")

	f, body, err := s.files.Get(r.Context(), id)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status == http.StatusNotFound {
			writeMessage(w, status, "File not found")
			return
		}
		log.Error("download failed", "op", "download", "id", id, "err", err)
		writeError(w, status, "Error retrieving file")
		return
	}
	defer func() { _ = body.Close() }()

	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", strconv.FormatInt(f.SizeBytes, 10))
	w.Header().Set("Content-Disposition", contentDisposition(f.Filename))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, body)
	if err != nil {
		log.Warn("download interrupted", "op", "download", "id", id, "bytes", n, "err", err)
		return
	}
	s.metrics.RecordDownload(n)
}

// contentDisposition quotes or RFC 2231-encodes name as needed.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
