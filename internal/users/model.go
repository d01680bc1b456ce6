// Package users is the credential store: it creates user records with a
// salted bcrypt hash and verifies login attempts against them.
package users

import "time"

// User is a persisted identity. It is never updated or deleted.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
