package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account owning papers and everything attached to them.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
