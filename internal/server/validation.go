// validation.go - Input validation and sanitization helpers
package server

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	maxFilenameBytes = 255
	defaultSubject   = "general"
)

// SanitizeFilename removes path separators and control bytes from a
// client-supplied filename.
func SanitizeFilename(filename string) string {
	// Remove path separators
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	filename = strings.ToValidUTF8(filename, "_")

	// Trim spaces and dots from start/end
	filename = strings.Trim(filename, " .")

	if len(filename) > maxFilenameBytes {
		ext := filepath.Ext(filename)
		if len(ext) >= maxFilenameBytes {
			ext = ""
		}
		cut := maxFilenameBytes - len(ext)
		// Do not cut a multi-byte rune in half.
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = filename[:cut] + ext
	}

	if filename == "" {
		filename = "unnamed"
	}

	return filename
}

// storedFilename is the name a file is listed under: its category label,
// a dash, then the original name.
// An empty subject becomes "general"; anything else is kept as sent.
func storedFilename(subject, original string) string {
	if subject == "" {
		subject = defaultSubject
	}
	return subject + "-" + SanitizeFilename(original)
}
