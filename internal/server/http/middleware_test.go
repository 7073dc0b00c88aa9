package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/observability"
)

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t, Deps{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + testToken, want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + testToken, want: http.StatusOK},
		{name: "scheme is case insensitive", header: "bearer " + testToken, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestMe_ReturnsAuthenticatedUser(t *testing.T) {
	s := newTestServer(t, Deps{})
	rec := do(t, s, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body userResponse
	decodeJSON(t, rec, &body)
	assert.Equal(t, testUserID, body.ID)
}

func TestAccessLog_RecordsRoutePattern(t *testing.T) {
	metrics := observability.NewMetrics("httpserver_test")
	s := newTestServer(t, Deps{Metrics: metrics})

	rec := do(t, s, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/v1/auth/me", "200")))
}

func TestAccessLog_LogsUserAndRoute(t *testing.T) {
	var buf bytes.Buffer
	s := NewServer(Config{}, Deps{Auth: &fakeAuth{}, Papers: &fakePapers{}}, zerolog.New(&buf))

	rec := do(t, s, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "http request", entry["message"])
	assert.Equal(t, "/api/v1/auth/me", entry["route"])
	assert.Equal(t, testUserID.String(), entry["user_id"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}
