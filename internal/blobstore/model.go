// Package blobstore stores uploaded files: bytes go to an S3-compatible
// object store, metadata goes to the files table. Both halves share the file
// id and are created and deleted together.
package blobstore

import (
	"io"
	"mime"
	"strings"
	"time"
)

// objectKeyPrefix keeps every object under one stable, non-guessable path.
const objectKeyPrefix = "uploads/"

// StoredFile is the metadata of one uploaded file. JSON names follow the
// GridFS file documents older clients were written against.
type StoredFile struct {
	ID          string    `db:"id" json:"_id"`
	ObjectKey   string    `db:"object_key" json:"-"`
	Filename    string    `db:"filename" json:"filename"`
	ContentType string    `db:"content_type" json:"contentType"`
	SizeBytes   int64     `db:"size_bytes" json:"length"`
	Category    string    `db:"category" json:"category"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploadDate"`
}

// PutInput describes one file to store. Filename is the final display name.
// Size may be -1 when unknown.
type PutInput struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
	Category    string
}

// AcceptsContentType reports whether uploads of this declared type are
// allowed: only application/* and image/* media types are.
func AcceptsContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	mediaType = strings.ToLower(mediaType)
	return strings.HasPrefix(mediaType, "application/") || strings.HasPrefix(mediaType, "image/")
}
