// Package observability provides logging and metrics support for the paper
// library service.
//
// # Logging
//
// Loggers are zerolog instances built from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Request-scoped identifiers travel in the context and are attached with
// LoggerFromContext:
//
//	ctx = observability.WithRequestID(ctx, reqID)
//	ctx = observability.WithUserID(ctx, userID)
//	observability.LoggerFromContext(ctx, logger).Info().Msg("paper created")
//
// Temporal SDK output is routed through NewTemporalLogger.
//
// # Metrics
//
// NewMetrics registers every collector with the default Prometheus registry
// under the given namespace. Each registry accepts a namespace once, so
// tests use a unique namespace per call.
package observability
