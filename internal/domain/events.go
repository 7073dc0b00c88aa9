package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for published domain events.
const (
	EventTypePaperCreated     = "paper.created"
	EventTypePaperUpdated     = "paper.updated"
	EventTypePaperDeleted     = "paper.deleted"
	EventTypeCitationCreated  = "citation.created"
	EventTypeCitationDeleted  = "citation.deleted"
	EventTypePDFAttached      = "pdf.attached"
	EventTypeSummaryGenerated = "summary.generated"
)

// Event is a domain event ready for publication. Events are keyed by user
// so that one user's events stay ordered within a partition.
type Event struct {
	EventID       string
	EventVersion  int
	EventType     string
	AggregateID   string
	AggregateType string
	UserID        uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// NewEvent creates an event and JSON-serializes its payload.
func NewEvent(eventType, aggregateType string, aggregateID, userID uuid.UUID, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.New().String(),
		EventVersion:  1,
		EventType:     eventType,
		AggregateID:   aggregateID.String(),
		AggregateType: aggregateType,
		UserID:        userID,
		Payload:       payloadBytes,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// PaperEventPayload is the payload for paper.* events.
type PaperEventPayload struct {
	PaperID uuid.UUID `json:"paper_id"`
	Title   string    `json:"title,omitempty"`
	DOI     *string   `json:"doi,omitempty"`
}

// CitationEventPayload is the payload for citation.* events.
type CitationEventPayload struct {
	CitationID    uuid.UUID `json:"citation_id"`
	CitingPaperID uuid.UUID `json:"citing_paper_id"`
	CitedPaperID  uuid.UUID `json:"cited_paper_id"`
}

// PDFAttachedPayload is the payload for pdf.attached events.
type PDFAttachedPayload struct {
	PdfFileID uuid.UUID      `json:"pdf_file_id"`
	PaperID   uuid.UUID      `json:"paper_id"`
	SizeBytes int64          `json:"size_bytes"`
	Method    DownloadMethod `json:"method"`
}

// SummaryGeneratedPayload is the payload for summary.generated events.
type SummaryGeneratedPayload struct {
	PaperID uuid.UUID `json:"paper_id"`
	Model   string    `json:"model"`
}
