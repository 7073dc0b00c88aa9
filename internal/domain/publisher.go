package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// VerificationStatus tracks whether stored publisher credentials were checked.
type VerificationStatus string

// Verification status values.
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)

// PublisherAccount holds a user's institutional login for one publisher.
// EncryptedCredentials is sealed by the vault and never leaves the service.
type PublisherAccount struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	Publisher            string
	Username             string
	EncryptedCredentials []byte
	Institution          string
	VerificationStatus   VerificationStatus
	LastVerifiedAt       *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PublisherCredentials is the plaintext sealed into EncryptedCredentials.
type PublisherCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NormalizePublisher lowercases and trims a publisher name so that the
// (user, publisher) uniqueness holds regardless of spelling.
func NormalizePublisher(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
