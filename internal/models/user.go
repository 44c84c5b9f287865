package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// A user's ID doubles as their participant ID in every record they are part of.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	// Used for login.
	Email string

	// DisplayName is the name shown to friends and group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Friend is a contact owned by one user. Friends are participants in
// records but cannot log in.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format), used as participant ID.
	ID string

	// OwnerID is the user this friend belongs to.
	OwnerID string

	// Name is the display name.
	Name string

	// Avatar is a short emoji or image reference.
	Avatar string

	// CreatedAt is the Unix timestamp when the friend was added.
	CreatedAt int64
}
