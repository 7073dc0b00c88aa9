package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/helixir/paper-library-service/internal/observability"
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the circuit.
	Failures uint32
	// Cooldown is how long the circuit stays open before a probe is let through.
	Cooldown time.Duration
}

// BreakerClient guards a Client with a circuit breaker and records metrics.
type BreakerClient struct {
	next    Client
	cb      *gobreaker.CircuitBreaker
	metrics *observability.Metrics
	logger  zerolog.Logger
}

var _ Client = (*BreakerClient)(nil)

// NewBreakerClient wraps next. metrics may be nil.
func NewBreakerClient(next Client, cfg BreakerConfig, metrics *observability.Metrics, logger zerolog.Logger) *BreakerClient {
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	logger = logger.With().Str("component", "llm").Str("provider", next.Provider()).Logger()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + next.Provider(),
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.IsClientError()
		},
	})

	return &BreakerClient{next: next, cb: cb, metrics: metrics, logger: logger}
}

// Provider returns the wrapped provider name.
func (b *BreakerClient) Provider() string {
	return b.next.Provider()
}

// Model returns the wrapped model.
func (b *BreakerClient) Model() string {
	return b.next.Model()
}

// State exposes the breaker state for readiness reporting.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// Complete forwards to the wrapped client unless the circuit is open.
func (b *BreakerClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, req)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.record("rejected", start, nil)
		return nil, ErrCircuitOpen
	}
	if err != nil {
		b.record("error", start, nil)
		b.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("llm request failed")
		return nil, err
	}

	completion := res.(*Completion)
	b.record("success", start, completion)
	return completion, nil
}

func (b *BreakerClient) record(status string, start time.Time, c *Completion) {
	if b.metrics == nil {
		return
	}
	var in, out int
	if c != nil {
		in, out = c.InputTokens, c.OutputTokens
	}
	b.metrics.RecordLLMRequest(b.next.Provider(), "complete", status, time.Since(start).Seconds(), in, out)
}
