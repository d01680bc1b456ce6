package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"notesbuzz/internal/apperr"
)

type renameReq struct {
	Filename string `json:"filename"`
}

type renameResp struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// handleListFiles handles GET /files?subject=<prefix>. Filenames are matched
// on a literal, case-sensitive prefix; no subject lists everything.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")

	files, err := s.files.ListByPrefix(r.Context(), subject)
	if err != nil {
		s.requestLogger(r).Error("list files failed", "op", "list", "subject", subject, "err", err)
		writeError(w, apperr.HTTPStatus(err), "Error fetching files")
		return
	}
	if len(files) == 0 {
		writeMessage(w, http.StatusNotFound, "No files found")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// handleRename handles PATCH /file/{id} with {"filename": "..."}.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req renameReq
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeMessage(w, http.StatusBadRequest, "Filename is required")
		return
	}

	f, err := s.files.Rename(r.Context(), id, SanitizeFilename(req.Filename))
	if err != nil {
		switch status := apperr.HTTPStatus(err); status {
		case http.StatusNotFound:
			writeMessage(w, status, "File not found")
		case http.StatusBadRequest:
			writeMessage(w, status, "Filename is required")
		default:
			s.requestLogger(r).Error("rename failed", "op", "rename", "id", id, "err", err)
			writeError(w, status, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, renameResp{Message: "File renamed successfully", Filename: f.Filename})
}

// handleDelete handles DELETE /delete/{id}. Responses are plain text.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.files.Delete(r.Context(), id)
	switch status := apperr.HTTPStatus(err); status {
	case http.StatusOK:
		s.requestLogger(r).Info("file deleted", "id", id)
		writeText(w, status, "File deleted successfully.")
	case http.StatusNotFound:
		writeText(w, status, "File not found.")
	default:
		s.requestLogger(r).Error("delete failed", "op", "delete", "id", id, "err", err)
		writeText(w, status, "Internal server error.")
	}
}
