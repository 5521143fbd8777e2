// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash and PasswordSalt never leave
// the server: they are excluded from JSON.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	IsAdmin      bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
