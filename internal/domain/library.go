package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Library is a named collection of papers owned by a user.
type Library struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	ItemCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the library's field invariants.
func (l *Library) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(l.Name) == "" {
		errs.Add("name", "is required")
	}
	return errs.Err()
}

// LibraryItem places a paper in a library with per-library reading state.
type LibraryItem struct {
	ID            uuid.UUID
	LibraryID     uuid.UUID
	PaperID       uuid.UUID
	ReadingStatus ReadingStatus
	Rating        *int
	AddedAt       time.Time
	// Paper is populated on list reads.
	Paper *Paper
}

// Validate checks the item's field invariants.
func (i *LibraryItem) Validate() error {
	errs := FieldErrors{}
	if i.PaperID == uuid.Nil {
		errs.Add("paperId", "is required")
	}
	if !i.ReadingStatus.Valid() {
		errs.Add("readingStatus", "must be one of to_read, reading, completed")
	}
	if i.Rating != nil && (*i.Rating < 1 || *i.Rating > 5) {
		errs.Add("rating", "must be between 1 and 5")
	}
	return errs.Err()
}

// LibraryItemUpdate carries the fields of a partial item update.
type LibraryItemUpdate struct {
	ReadingStatus *ReadingStatus
	Rating        *int
}

// Apply copies the set fields of u onto i.
func (u LibraryItemUpdate) Apply(i *LibraryItem) {
	if u.ReadingStatus != nil {
		i.ReadingStatus = *u.ReadingStatus
	}
	if u.Rating != nil {
		i.Rating = u.Rating
	}
}
