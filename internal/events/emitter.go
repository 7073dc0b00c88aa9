package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/observability"
)

// Aggregate types carried on events.
const (
	AggregatePaper    = "paper"
	AggregateCitation = "citation"
	AggregatePdfFile  = "pdf_file"
	AggregateSummary  = "summary"
)

const publishTimeout = 5 * time.Second

// Emitter builds and publishes events on behalf of services.
type Emitter struct {
	publisher Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewEmitter wraps publisher. metrics may be nil.
func NewEmitter(publisher Publisher, metrics *observability.Metrics, logger zerolog.Logger) *Emitter {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Emitter{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

// Emit publishes one event. Failures are logged and counted only.
// The request context's cancellation is not inherited so a finished
// request does not abort the publish.
func (e *Emitter) Emit(ctx context.Context, eventType, aggregateType string, aggregateID, userID uuid.UUID, payload any) {
	if e == nil {
		return
	}

	evt, err := domain.NewEvent(eventType, aggregateType, aggregateID, userID, payload)
	if err != nil {
		e.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		e.failed(eventType)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.Publish(pubCtx, evt); err != nil {
		e.logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("aggregate_id", aggregateID.String()).
			Msg("failed to publish event")
		e.failed(eventType)
		return
	}
	if e.metrics != nil {
		e.metrics.RecordEventPublished(eventType)
	}
}

// Close closes the underlying publisher.
func (e *Emitter) Close() error {
	return e.publisher.Close()
}

func (e *Emitter) failed(eventType string) {
	if e.metrics != nil {
		e.metrics.RecordEventFailed(eventType)
	}
}
