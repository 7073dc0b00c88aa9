package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/auth"
	"github.com/helixir/paper-library-service/internal/domain"
)

// postAnonymous sends a JSON body without an Authorization header.
func postAnonymous(s *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		s := newTestServer(t, Deps{})

		rec := postAnonymous(s, "/api/v1/auth/register", `{"email":"nope","password":"longenough"}`)
		assertFieldError(t, rec, "email", "must be a valid e-mail address")

		rec = postAnonymous(s, "/api/v1/auth/register", `{"email":"a@example.com","password":"short"}`)
		assertFieldError(t, rec, "password", "must be at least 8 characters")
	})

	t.Run("returns a session without authentication", func(t *testing.T) {
		userID := uuid.New()
		expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		authSvc := &fakeAuth{registerFn: func(_ context.Context, email, password, displayName string) (*auth.Session, error) {
			assert.Equal(t, "a@example.com", email)
			assert.Equal(t, "longenough", password)
			assert.Equal(t, "Ada", displayName)
			return &auth.Session{
				Token:     "jwt",
				ExpiresAt: expires,
				User:      &domain.User{ID: userID, Email: email, DisplayName: displayName},
			}, nil
		}}
		s := newTestServer(t, Deps{Auth: authSvc})

		rec := postAnonymous(s, "/api/v1/auth/register", `{"email":"a@example.com","password":"longenough","displayName":"Ada"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body sessionResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, "jwt", body.Token)
		assert.True(t, expires.Equal(body.ExpiresAt))
		assert.Equal(t, userID, body.User.ID)
		assert.NotContains(t, rec.Body.String(), "longenough")
	})

	t.Run("taken e-mail conflicts", func(t *testing.T) {
		authSvc := &fakeAuth{registerFn: func(context.Context, string, string, string) (*auth.Session, error) {
			return nil, domain.NewAlreadyExistsError("user", "a@example.com")
		}}
		s := newTestServer(t, Deps{Auth: authSvc})

		rec := postAnonymous(s, "/api/v1/auth/register", `{"email":"a@example.com","password":"longenough"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("wrong credentials", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := postAnonymous(s, "/api/v1/auth/login", `{"email":"a@example.com","password":"wrong-password"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	})

	t.Run("missing password", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := postAnonymous(s, "/api/v1/auth/login", `{"email":"a@example.com"}`)
		assertFieldError(t, rec, "password", "is required")
	})

	t.Run("success", func(t *testing.T) {
		authSvc := &fakeAuth{loginFn: func(_ context.Context, email, _ string) (*auth.Session, error) {
			return &auth.Session{Token: "jwt", User: &domain.User{ID: testUserID, Email: email}}, nil
		}}
		s := newTestServer(t, Deps{Auth: authSvc})

		rec := postAnonymous(s, "/api/v1/auth/login", `{"email":"a@example.com","password":"longenough"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body sessionResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, "jwt", body.Token)
		assert.Equal(t, testUserID, body.User.ID)
	})
}
