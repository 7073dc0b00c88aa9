package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ReadingStatus tracks how far a user got with a paper.
type ReadingStatus string

// Reading status values.
const (
	ReadingStatusToRead    ReadingStatus = "to_read"
	ReadingStatusReading   ReadingStatus = "reading"
	ReadingStatusCompleted ReadingStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ReadingStatus) Valid() bool {
	switch s {
	case ReadingStatusToRead, ReadingStatusReading, ReadingStatusCompleted:
		return true
	}
	return false
}

// Paper field limits.
const (
	MaxTitleLength = 500
	MinYear        = 1000
	MaxYear        = 2100
)

// Paper is a publication registered by a user.
type Paper struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Authors       string
	Abstract      string
	Year          *int
	Journal       string
	DOI           *string
	URL           string
	ArXivID       *string
	CitationCount int
	IsFavorite    bool
	ReadingStatus ReadingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the paper's field invariants.
func (p *Paper) Validate() error {
	errs := FieldErrors{}

	title := strings.TrimSpace(p.Title)
	switch {
	case title == "":
		errs.Add("title", "is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs.Add("title", "must be at most 500 characters")
	}

	if p.Year != nil && (*p.Year < MinYear || *p.Year > MaxYear) {
		errs.Add("year", "must be between 1000 and 2100")
	}

	if p.DOI != nil && !IsDOI(*p.DOI) {
		errs.Add("doi", "must look like 10.<registrant>/<suffix>")
	}

	if p.URL != "" && !isHTTPURL(p.URL) {
		errs.Add("url", "must be an http or https URL")
	}

	if p.CitationCount < 0 {
		errs.Add("citationCount", "must not be negative")
	}

	if p.ReadingStatus != "" && !p.ReadingStatus.Valid() {
		errs.Add("readingStatus", "must be one of to_read, reading, completed")
	}

	return errs.Err()
}

// PaperUpdate carries the fields of a partial update. Nil fields are left unchanged.
type PaperUpdate struct {
	Title         *string
	Authors       *string
	Abstract      *string
	Year          *int
	Journal       *string
	DOI           *string
	URL           *string
	CitationCount *int
	IsFavorite    *bool
	ReadingStatus *ReadingStatus
}

// Apply copies the set fields of u onto p.
func (u PaperUpdate) Apply(p *Paper) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Authors != nil {
		p.Authors = *u.Authors
	}
	if u.Abstract != nil {
		p.Abstract = *u.Abstract
	}
	if u.Year != nil {
		p.Year = u.Year
	}
	if u.Journal != nil {
		p.Journal = *u.Journal
	}
	if u.DOI != nil {
		doi := NormalizeDOI(*u.DOI)
		p.DOI = &doi
	}
	if u.URL != nil {
		p.URL = *u.URL
	}
	if u.CitationCount != nil {
		p.CitationCount = *u.CitationCount
	}
	if u.IsFavorite != nil {
		p.IsFavorite = *u.IsFavorite
	}
	if u.ReadingStatus != nil {
		p.ReadingStatus = *u.ReadingStatus
	}
}

// PaperSort selects the ordering of paper lists.
type PaperSort string

// Paper sort keys.
const (
	PaperSortCreatedAt PaperSort = "createdAt"
	PaperSortYear      PaperSort = "year"
	PaperSortTitle     PaperSort = "title"
)

// PaperFilter narrows paper lists.
type PaperFilter struct {
	Search        string
	ReadingStatus *ReadingStatus
	Favorite      *bool
	TagID         *uuid.UUID
	Year          *int
	Sort          PaperSort
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
