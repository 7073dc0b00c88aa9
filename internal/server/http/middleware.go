package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/auth"
	"github.com/helixir/paper-library-service/internal/observability"
)

type accessKey struct{}

// accessEntry collects request facts known only to inner handlers.
type accessEntry struct {
	userID uuid.UUID
}

// accessLog logs every request once it completes and records its latency
// under the matched route pattern, so ids in the path do not explode label
// cardinality.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		requestID := middleware.GetReqID(r.Context())
		entry := &accessEntry{}
		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = context.WithValue(ctx, accessKey{}, entry)

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(ctx); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		elapsed := time.Since(start)

		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = s.logger.Error()
		case status >= 400:
			event = s.logger.Warn()
		default:
			event = s.logger.Info()
		}
		event = event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed)
		if entry.userID != uuid.Nil {
			event = event.Str("user_id", entry.userID.String())
		}
		event.Msg("http request")
	})
}

// requireAuth rejects requests without a valid bearer token and stores the
// token's user id in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := s.deps.Auth.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if entry, ok := r.Context().Value(accessKey{}).(*accessEntry); ok {
			entry.userID = userID
		}
		ctx := auth.WithUserID(r.Context(), userID)
		ctx = observability.WithUserID(ctx, userID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user id. Routes behind requireAuth
// always have one.
func currentUser(r *http.Request) uuid.UUID {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// requestLogger returns the server logger enriched with the request's ids.
func (s *Server) requestLogger(r *http.Request) *zerolog.Logger {
	return observability.LoggerFromContext(r.Context(), s.logger)
}
