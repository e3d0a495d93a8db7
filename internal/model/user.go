// Package model defines domain entities for the application.
package model

import "time"

// User represents an article author account.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the authenticated identity for this user.
func (u *User) Identity() *Identity {
	return &Identity{UserID: u.ID, Email: u.Email}
}

// Summary returns the author projection embedded in article responses.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Bio:       u.Bio,
	}
}

// Identity is the caller resolved from a bearer token.
// A nil *Identity means the request is anonymous.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Is reports whether the identity belongs to userID.
// Safe to call on a nil receiver.
func (i *Identity) Is(userID string) bool {
	return i != nil && i.UserID != "" && i.UserID == userID
}
