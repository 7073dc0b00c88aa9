package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a user's annotation on a paper.
type Note struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PaperID         uuid.UUID
	Title           string
	Content         string
	HighlightedText *string
	PageNumber      *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the note's field invariants.
func (n *Note) Validate() error {
	errs := FieldErrors{}
	if n.PaperID == uuid.Nil {
		errs.Add("paperId", "is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		errs.Add("title", "is required")
	}
	if n.PageNumber != nil && *n.PageNumber < 1 {
		errs.Add("pageNumber", "must be at least 1")
	}
	return errs.Err()
}

// NoteUpdate carries the fields of a partial note update.
type NoteUpdate struct {
	Title           *string
	Content         *string
	HighlightedText *string
	PageNumber      *int
}

// Apply copies the set fields of u onto n.
func (u NoteUpdate) Apply(n *Note) {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.HighlightedText != nil {
		n.HighlightedText = u.HighlightedText
	}
	if u.PageNumber != nil {
		n.PageNumber = u.PageNumber
	}
}
