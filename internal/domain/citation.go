package domain

import (
	"time"

	"github.com/google/uuid"
)

// Citation is a directed edge: the citing paper references the cited paper.
type Citation struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	CitingPaperID     uuid.UUID
	CitedPaperID      uuid.UUID
	RelevanceScore    *float64
	IsInfluential     bool
	Context           string
	Depth             int
	ParsedAuthors     *string
	ParsedTitle       *string
	ParsedYear        *int
	ParsingConfidence *float64
	CreatedAt         time.Time
}

// Relevance returns the relevance score, treating an absent score as 0.
func (c *Citation) Relevance() float64 {
	if c.RelevanceScore == nil {
		return 0
	}
	return *c.RelevanceScore
}

// Validate checks the citation's field invariants.
func (c *Citation) Validate() error {
	errs := FieldErrors{}

	if c.CitingPaperID == uuid.Nil {
		errs.Add("citingPaperId", "is required")
	}
	if c.CitedPaperID == uuid.Nil {
		errs.Add("citedPaperId", "is required")
	}
	if c.CitingPaperID != uuid.Nil && c.CitingPaperID == c.CitedPaperID {
		errs.Add("citedPaperId", "a paper cannot cite itself")
	}
	if c.RelevanceScore != nil && !unitInterval(*c.RelevanceScore) {
		errs.Add("relevanceScore", "must be between 0 and 1")
	}
	if c.ParsingConfidence != nil && !unitInterval(*c.ParsingConfidence) {
		errs.Add("parsingConfidence", "must be between 0 and 1")
	}
	if c.Depth < 1 {
		errs.Add("citationDepth", "must be at least 1")
	}

	return errs.Err()
}

// CitationUpdate carries the fields of a partial citation update.
type CitationUpdate struct {
	RelevanceScore    *float64
	IsInfluential     *bool
	Context           *string
	Depth             *int
	ParsedAuthors     *string
	ParsedTitle       *string
	ParsedYear        *int
	ParsingConfidence *float64
}

// Apply copies the set fields of u onto c.
func (u CitationUpdate) Apply(c *Citation) {
	if u.RelevanceScore != nil {
		c.RelevanceScore = u.RelevanceScore
	}
	if u.IsInfluential != nil {
		c.IsInfluential = *u.IsInfluential
	}
	if u.Context != nil {
		c.Context = *u.Context
	}
	if u.Depth != nil {
		c.Depth = *u.Depth
	}
	if u.ParsedAuthors != nil {
		c.ParsedAuthors = u.ParsedAuthors
	}
	if u.ParsedTitle != nil {
		c.ParsedTitle = u.ParsedTitle
	}
	if u.ParsedYear != nil {
		c.ParsedYear = u.ParsedYear
	}
	if u.ParsingConfidence != nil {
		c.ParsingConfidence = u.ParsingConfidence
	}
}

// Reference is an outgoing citation joined to the paper it points at.
type Reference struct {
	Citation Citation
	Paper    Paper
	// HasPDF reports whether the cited paper has at least one stored PDF.
	HasPDF bool
}

// CitationEdge is the minimal form of a citation used for graph traversal.
type CitationEdge struct {
	Source uuid.UUID
	Target uuid.UUID
}

func unitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
