package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/llm"
)

const maxRequestBodySize = 1 << 20

// writeDomainError maps domain errors to HTTP status codes. Upstream and
// internal details are logged, never returned.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	var fields domain.FieldErrors
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: fields})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation failed",
			Fields: map[string]string{ve.Field: ve.Message},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrFeatureDisabled):
		writeError(w, http.StatusServiceUnavailable, "feature disabled")
	case errors.Is(err, domain.ErrServiceUnavailable):
		s.requestLogger(r).Warn().Err(err).Msg("service unavailable")
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, domain.ErrUpstream):
		s.requestLogger(r).Error().Err(err).Msg("upstream request failed")
		writeError(w, http.StatusBadGateway, upstreamMessage(err))
	default:
		s.requestLogger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func upstreamMessage(err error) string {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) || errors.Is(err, llm.ErrEmptyResponse) {
		return "AI service request failed"
	}
	var extErr *domain.ExternalAPIError
	if errors.As(err, &extErr) {
		return "metadata lookup failed"
	}
	return "upstream request failed"
}

// decodeBody reads a JSON body of at most maxRequestBodySize into dst and
// validates its tags.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize+1))
	if err != nil {
		return domain.NewValidationError("body", "could not be read")
	}
	if len(body) > maxRequestBodySize {
		return domain.NewValidationError("body", "is too large")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(typeErr.Field, "has the wrong type")
		}
		return domain.NewValidationError("body", "must be valid JSON")
	}
	return validateStruct(dst)
}

// pathID parses the named URL parameter as a UUID. The raw value is not
// echoed back.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a valid UUID")
	}
	return id, nil
}

// pageRequest reads page and pageSize query parameters.
func pageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	page := domain.PageRequest{Page: 1, PageSize: domain.DefaultPageSize}
	errs := domain.FieldErrors{}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("page", "must be an integer")
		}
		page.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("pageSize", "must be an integer")
		}
		page.PageSize = n
	}
	if err := errs.Err(); err != nil {
		return page, err
	}
	return page, page.Validate()
}

// queryInt parses an optional integer query parameter into errs.
func queryInt(r *http.Request, name string, fallback int, errs domain.FieldErrors) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.Add(name, "must be an integer")
		return fallback
	}
	return n
}

// queryFloat parses an optional float query parameter into errs.
func queryFloat(r *http.Request, name string, fallback float64, errs domain.FieldErrors) float64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		errs.Add(name, "must be a number")
		return fallback
	}
	return f
}

// queryBool parses an optional boolean query parameter into errs.
func queryBool(r *http.Request, name string, errs domain.FieldErrors) *bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		errs.Add(name, "must be true or false")
		return nil
	}
	return &b
}

// queryUUID parses an optional UUID query parameter into errs.
func queryUUID(r *http.Request, name string, errs domain.FieldErrors) *uuid.UUID {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		errs.Add(name, "must be a valid UUID")
		return nil
	}
	return &id
}

func pageResponse[T, R any](p domain.Page[T], convert func(T) R) paginatedResponse[R] {
	data := make([]R, len(p.Items))
	for i, item := range p.Items {
		data[i] = convert(item)
	}
	return paginatedResponse[R]{
		Data:       data,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
	}
}

func convertAll[T, R any](items []T, convert func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}

func contentDisposition(fileName string) string {
	return fmt.Sprintf("attachment; filename=%q", fileName)
}
