// Package server implements the NotesBuzz HTTP API: signup and login, plus
// upload, listing, download, rename and delete of shared files. Stores are
// injected through Config so handlers can be tested against fakes.
package server
