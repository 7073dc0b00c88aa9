package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/repository"
)

type fakeNotes struct {
	repository.NoteRepository
	createFn func(ctx context.Context, note *domain.Note) (*domain.Note, error)
	getFn    func(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)
	updateFn func(ctx context.Context, note *domain.Note) error
	listFn   func(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error)
}

func (f *fakeNotes) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if f.createFn != nil {
		return f.createFn(ctx, note)
	}
	note.ID = uuid.New()
	return note, nil
}

func (f *fakeNotes) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	return f.getFn(ctx, userID, id)
}

func (f *fakeNotes) Update(ctx context.Context, note *domain.Note) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, note)
	}
	return nil
}

func (f *fakeNotes) List(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error) {
	return f.listFn(ctx, userID, paperID, page)
}

func TestCreateNote(t *testing.T) {
	paperID := uuid.New()

	t.Run("validation", func(t *testing.T) {
		s := newTestServer(t, Deps{Notes: &fakeNotes{}})

		rec := do(t, s, http.MethodPost, "/api/v1/notes", map[string]any{"title": "Idea"})
		assertFieldError(t, rec, "paperId", "is required")

		rec = do(t, s, http.MethodPost, "/api/v1/notes", map[string]any{"paperId": paperID, "title": "Idea", "pageNumber": 0})
		assertFieldError(t, rec, "pageNumber", "must be at least 1")

		rec = do(t, s, http.MethodPost, "/api/v1/notes", map[string]any{"paperId": "not-a-uuid", "title": "Idea"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("creates for the caller", func(t *testing.T) {
		var stored *domain.Note
		notes := &fakeNotes{createFn: func(_ context.Context, n *domain.Note) (*domain.Note, error) {
			stored = n
			n.ID = uuid.New()
			return n, nil
		}}
		s := newTestServer(t, Deps{Notes: notes})

		rec := do(t, s, http.MethodPost, "/api/v1/notes", map[string]any{
			"paperId": paperID, "title": " Idea ", "content": "attention is all you need", "pageNumber": 3,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, stored)
		assert.Equal(t, testUserID, stored.UserID)
		assert.Equal(t, "Idea", stored.Title)

		var body noteResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, paperID, body.PaperID)
		require.NotNil(t, body.PageNumber)
		assert.Equal(t, 3, *body.PageNumber)
	})

	t.Run("foreign paper is not found", func(t *testing.T) {
		notes := &fakeNotes{createFn: func(context.Context, *domain.Note) (*domain.Note, error) {
			return nil, domain.NewNotFoundError("paper", paperID.String())
		}}
		s := newTestServer(t, Deps{Notes: notes})
		rec := do(t, s, http.MethodPost, "/api/v1/notes", map[string]any{"paperId": paperID, "title": "Idea"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListNotes(t *testing.T) {
	paperID := uuid.New()

	t.Run("filters by paper", func(t *testing.T) {
		var gotPaper *uuid.UUID
		var gotPage domain.PageRequest
		notes := &fakeNotes{listFn: func(_ context.Context, _ uuid.UUID, p *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error) {
			gotPaper, gotPage = p, page
			return domain.Page[*domain.Note]{
				Items:    []*domain.Note{{ID: uuid.New(), PaperID: paperID, Title: "Idea"}},
				Total:    1,
				Page:     page.Page,
				PageSize: page.PageSize,
			}, nil
		}}
		s := newTestServer(t, Deps{Notes: notes})

		rec := do(t, s, http.MethodGet, "/api/v1/notes?paperId="+paperID.String()+"&pageSize=5", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, gotPaper)
		assert.Equal(t, paperID, *gotPaper)
		assert.Equal(t, 5, gotPage.PageSize)

		var body paginatedResponse[noteResponse]
		decodeJSON(t, rec, &body)
		assert.Equal(t, int64(1), body.Total)
		assert.Len(t, body.Data, 1)
	})

	t.Run("all notes without a filter", func(t *testing.T) {
		notes := &fakeNotes{listFn: func(_ context.Context, _ uuid.UUID, p *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error) {
			assert.Nil(t, p)
			return domain.Page[*domain.Note]{Page: page.Page, PageSize: page.PageSize}, nil
		}}
		s := newTestServer(t, Deps{Notes: notes})
		rec := do(t, s, http.MethodGet, "/api/v1/notes", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad paper id", func(t *testing.T) {
		s := newTestServer(t, Deps{Notes: &fakeNotes{}})
		rec := do(t, s, http.MethodGet, "/api/v1/notes?paperId=42", nil)
		assertFieldError(t, rec, "paperId", "must be a valid UUID")
	})
}

func TestUpdateNote(t *testing.T) {
	noteID := uuid.New()
	existing := func() *fakeNotes {
		return &fakeNotes{getFn: func(_ context.Context, userID, id uuid.UUID) (*domain.Note, error) {
			return &domain.Note{ID: id, UserID: userID, PaperID: uuid.New(), Title: "Idea", Content: "old"}, nil
		}}
	}

	t.Run("applies only sent fields", func(t *testing.T) {
		notes := existing()
		var saved *domain.Note
		notes.updateFn = func(_ context.Context, n *domain.Note) error {
			saved = n
			return nil
		}
		s := newTestServer(t, Deps{Notes: notes})

		rec := do(t, s, http.MethodPatch, "/api/v1/notes/"+noteID.String(), map[string]any{"content": "new"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, saved)
		assert.Equal(t, "Idea", saved.Title)
		assert.Equal(t, "new", saved.Content)
	})

	t.Run("blank title after update is rejected", func(t *testing.T) {
		s := newTestServer(t, Deps{Notes: existing()})
		rec := do(t, s, http.MethodPatch, "/api/v1/notes/"+noteID.String(), map[string]any{"title": " "})
		assertFieldError(t, rec, "title", "is required")
	})

	t.Run("missing note", func(t *testing.T) {
		notes := &fakeNotes{getFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Note, error) {
			return nil, domain.NewNotFoundError("note", noteID.String())
		}}
		s := newTestServer(t, Deps{Notes: notes})
		rec := do(t, s, http.MethodPatch, "/api/v1/notes/"+noteID.String(), map[string]any{"content": "new"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
