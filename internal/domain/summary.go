package domain

import (
	"time"

	"github.com/google/uuid"
)

// AiSummary is the generated summary of a paper. There is at most one per
// paper; regenerating replaces it.
type AiSummary struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PaperID     uuid.UUID
	Summary     string
	KeyFindings []string
	Model       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
