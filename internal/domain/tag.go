package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#607d8b"

var tagColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Tag is a user-defined label attachable to many papers.
type Tag struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Color      string
	PaperCount int
	CreatedAt  time.Time
}

// Validate checks the tag's field invariants.
func (t *Tag) Validate() error {
	errs := FieldErrors{}
	name := strings.TrimSpace(t.Name)
	if name == "" {
		errs.Add("name", "is required")
	} else if len(name) > 64 {
		errs.Add("name", "must be at most 64 characters")
	}
	if !tagColorPattern.MatchString(t.Color) {
		errs.Add("color", "must be a hex color like #1e88e5")
	}
	return errs.Err()
}
