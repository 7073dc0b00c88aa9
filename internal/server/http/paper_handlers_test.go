package httpserver

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/events"
	"github.com/helixir/paper-library-service/internal/papersources"
)

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, evts ...*domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

func TestCreatePaper(t *testing.T) {
	t.Run("missing title", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodPost, "/api/v1/papers", map[string]any{"authors": "Hinton"})
		assertFieldError(t, rec, "title", "is required")
	})

	t.Run("year out of range", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodPost, "/api/v1/papers", map[string]any{"title": "Old", "year": 999})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body validationResponse
		decodeJSON(t, rec, &body)
		assert.Contains(t, body.Fields, "year")
	})

	t.Run("unknown reading status", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodPost, "/api/v1/papers", map[string]any{"title": "T", "readingStatus": "skimmed"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body validationResponse
		decodeJSON(t, rec, &body)
		assert.Contains(t, body.Fields, "readingStatus")
	})

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodPost, "/api/v1/papers", "not an object")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created with defaults and event", func(t *testing.T) {
		var stored *domain.Paper
		papers := &fakePapers{
			createFn: func(_ context.Context, p *domain.Paper) (*domain.Paper, error) {
				stored = p
				p.ID = uuid.New()
				return p, nil
			},
		}
		pub := &capturePublisher{}
		s := newTestServer(t, Deps{Papers: papers, Emitter: events.NewEmitter(pub, nil, zerolog.Nop())})

		rec := do(t, s, http.MethodPost, "/api/v1/papers", map[string]any{
			"title": "  Deep Learning  ",
			"doi":   "https://doi.org/10.1038/NATURE14539",
			"year":  2015,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, stored)
		assert.Equal(t, testUserID, stored.UserID)
		assert.Equal(t, "Deep Learning", stored.Title)
		assert.Equal(t, domain.ReadingStatusToRead, stored.ReadingStatus)
		require.NotNil(t, stored.DOI)
		assert.Equal(t, "10.1038/nature14539", *stored.DOI)
		assert.Equal(t, []string{domain.EventTypePaperCreated}, pub.types())
	})

	t.Run("duplicate doi conflicts", func(t *testing.T) {
		papers := &fakePapers{
			createFn: func(context.Context, *domain.Paper) (*domain.Paper, error) {
				return nil, domain.NewAlreadyExistsError("paper", "10.1038/nature14539")
			},
		}
		s := newTestServer(t, Deps{Papers: papers})
		rec := do(t, s, http.MethodPost, "/api/v1/papers", map[string]any{"title": "Deep Learning", "doi": "10.1038/nature14539"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"resource already exists"}`, rec.Body.String())
	})
}

func TestListPapers(t *testing.T) {
	t.Run("renders the page envelope", func(t *testing.T) {
		var gotFilter domain.PaperFilter
		var gotPage domain.PageRequest
		papers := &fakePapers{
			listFn: func(_ context.Context, _ uuid.UUID, f domain.PaperFilter, page domain.PageRequest) (domain.Page[*domain.Paper], error) {
				gotFilter, gotPage = f, page
				return domain.Page[*domain.Paper]{
					Items:    []*domain.Paper{{ID: uuid.New(), Title: "One"}, {ID: uuid.New(), Title: "Two"}},
					Total:    7,
					Page:     page.Page,
					PageSize: page.PageSize,
				}, nil
			},
		}
		s := newTestServer(t, Deps{Papers: papers})

		rec := do(t, s, http.MethodGet, "/api/v1/papers?page=2&pageSize=2&status=reading&favorite=true&sort=year&search=+attention+", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, domain.PageRequest{Page: 2, PageSize: 2}, gotPage)
		assert.Equal(t, "attention", gotFilter.Search)
		assert.Equal(t, domain.PaperSortYear, gotFilter.Sort)
		require.NotNil(t, gotFilter.ReadingStatus)
		assert.Equal(t, domain.ReadingStatusReading, *gotFilter.ReadingStatus)
		require.NotNil(t, gotFilter.Favorite)
		assert.True(t, *gotFilter.Favorite)

		var body paginatedResponse[paperResponse]
		decodeJSON(t, rec, &body)
		assert.Len(t, body.Data, 2)
		assert.Equal(t, int64(7), body.Total)
		assert.Equal(t, 2, body.Page)
		assert.Equal(t, 2, body.PageSize)
		assert.Equal(t, 4, body.TotalPages)
	})

	t.Run("empty page renders an empty array", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodGet, "/api/v1/papers", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		decodeJSON(t, rec, &body)
		assert.Equal(t, []any{}, body["data"])
	})

	invalid := []struct {
		name  string
		query string
		field string
	}{
		{name: "page size too large", query: "pageSize=101", field: "pageSize"},
		{name: "page zero", query: "page=0", field: "page"},
		{name: "bad status", query: "status=skimmed", field: "status"},
		{name: "bad sort", query: "sort=rating", field: "sort"},
		{name: "bad tag id", query: "tagId=abc", field: "tagId"},
		{name: "bad favorite", query: "favorite=maybe", field: "favorite"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Deps{})
			rec := do(t, s, http.MethodGet, "/api/v1/papers?"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var body validationResponse
			decodeJSON(t, rec, &body)
			assert.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestQuickAddPaper(t *testing.T) {
	t.Run("unrecognised identifier", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodPost, "/api/v1/papers/quick-add", map[string]any{"identifier": "hello world"})
		assertFieldError(t, rec, "identifier", "must be a DOI or an arXiv id")
	})

	t.Run("existing paper is returned unchanged", func(t *testing.T) {
		existing := &domain.Paper{ID: uuid.New(), UserID: testUserID, Title: "Existing"}
		papers := &fakePapers{
			findByIdentifierFn: func(_ context.Context, _ uuid.UUID, id domain.Identifier) (*domain.Paper, error) {
				assert.Equal(t, domain.IdentifierDOI, id.Kind)
				return existing, nil
			},
			createFn: func(context.Context, *domain.Paper) (*domain.Paper, error) {
				t.Fatal("existing paper must not be recreated")
				return nil, nil
			},
		}
		s := newTestServer(t, Deps{Papers: papers, Resolver: &fakeResolver{}})

		rec := do(t, s, http.MethodPost, "/api/v1/papers/quick-add", map[string]any{"identifier": "10.1038/nature14539"})
		require.Equal(t, http.StatusOK, rec.Code)
		var body paperResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, existing.ID, body.ID)
	})

	t.Run("resolves and creates an arxiv paper", func(t *testing.T) {
		year := 2017
		resolver := &fakeResolver{
			resolveFn: func(_ context.Context, id domain.Identifier) (*papersources.Metadata, error) {
				assert.Equal(t, domain.Identifier{Kind: domain.IdentifierArXiv, Value: "1706.03762"}, id)
				return &papersources.Metadata{
					Source:  "arxiv",
					Title:   "Attention Is All You Need",
					Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
					Year:    &year,
				}, nil
			},
		}
		var stored *domain.Paper
		papers := &fakePapers{
			createFn: func(_ context.Context, p *domain.Paper) (*domain.Paper, error) {
				stored = p
				p.ID = uuid.New()
				return p, nil
			},
		}
		s := newTestServer(t, Deps{Papers: papers, Resolver: resolver})

		rec := do(t, s, http.MethodPost, "/api/v1/papers/quick-add", map[string]any{"identifier": "arXiv:1706.03762"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, stored)
		assert.Equal(t, "Attention Is All You Need", stored.Title)
		assert.Equal(t, "Ashish Vaswani, Noam Shazeer", stored.Authors)
		require.NotNil(t, stored.ArXivID)
		assert.Equal(t, "1706.03762", *stored.ArXivID)
	})

	t.Run("metadata source failure", func(t *testing.T) {
		resolver := &fakeResolver{
			resolveFn: func(context.Context, domain.Identifier) (*papersources.Metadata, error) {
				return nil, domain.NewExternalAPIError("crossref", http.StatusInternalServerError, "boom", nil)
			},
		}
		s := newTestServer(t, Deps{Resolver: resolver})

		rec := do(t, s, http.MethodPost, "/api/v1/papers/quick-add", map[string]any{"identifier": "10.1038/nature14539"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"metadata lookup failed"}`, rec.Body.String())
	})

	t.Run("unknown identifier upstream", func(t *testing.T) {
		resolver := &fakeResolver{
			resolveFn: func(context.Context, domain.Identifier) (*papersources.Metadata, error) {
				return nil, domain.NewNotFoundError("metadata", "10.1038/nature14539")
			},
		}
		s := newTestServer(t, Deps{Resolver: resolver})

		rec := do(t, s, http.MethodPost, "/api/v1/papers/quick-add", map[string]any{"identifier": "10.1038/nature14539"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPaperTags_RequireOwnedPaper(t *testing.T) {
	papers := &fakePapers{
		getFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Paper, error) {
			return nil, domain.ErrNotFound
		},
	}
	s := newTestServer(t, Deps{Papers: papers})

	rec := do(t, s, http.MethodPut, "/api/v1/papers/"+uuid.NewString()+"/tags", map[string]any{"tagIds": []uuid.UUID{uuid.New()}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
