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

type fakeLibraries struct {
	repository.LibraryRepository
	createFn     func(ctx context.Context, l *domain.Library) (*domain.Library, error)
	getFn        func(ctx context.Context, userID, id uuid.UUID) (*domain.Library, error)
	addItemFn    func(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) (*domain.LibraryItem, error)
	getItemFn    func(ctx context.Context, userID, libraryID, itemID uuid.UUID) (*domain.LibraryItem, error)
	updateItemFn func(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) error
	listItemsFn  func(ctx context.Context, userID, libraryID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.LibraryItem], error)
}

func (f *fakeLibraries) Create(ctx context.Context, l *domain.Library) (*domain.Library, error) {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	l.ID = uuid.New()
	return l, nil
}

func (f *fakeLibraries) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Library, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, id)
	}
	return &domain.Library{ID: id, UserID: userID, Name: "Reading list"}, nil
}

func (f *fakeLibraries) AddItem(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) (*domain.LibraryItem, error) {
	if f.addItemFn != nil {
		return f.addItemFn(ctx, userID, item)
	}
	item.ID = uuid.New()
	return item, nil
}

func (f *fakeLibraries) GetItem(ctx context.Context, userID, libraryID, itemID uuid.UUID) (*domain.LibraryItem, error) {
	return f.getItemFn(ctx, userID, libraryID, itemID)
}

func (f *fakeLibraries) UpdateItem(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) error {
	if f.updateItemFn != nil {
		return f.updateItemFn(ctx, userID, item)
	}
	return nil
}

func (f *fakeLibraries) ListItems(ctx context.Context, userID, libraryID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.LibraryItem], error) {
	return f.listItemsFn(ctx, userID, libraryID, page)
}

func TestCreateLibrary(t *testing.T) {
	t.Run("name is required", func(t *testing.T) {
		s := newTestServer(t, Deps{Libraries: &fakeLibraries{}})
		rec := do(t, s, http.MethodPost, "/api/v1/libraries", map[string]any{"description": "x"})
		assertFieldError(t, rec, "name", "is required")
	})

	t.Run("created", func(t *testing.T) {
		s := newTestServer(t, Deps{Libraries: &fakeLibraries{}})
		rec := do(t, s, http.MethodPost, "/api/v1/libraries", map[string]any{"name": " Thesis "})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body libraryResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, "Thesis", body.Name)
	})
}

func TestAddLibraryItem(t *testing.T) {
	libraryID := uuid.New()
	paperID := uuid.New()
	path := "/api/v1/libraries/" + libraryID.String() + "/items"

	t.Run("defaults to to_read", func(t *testing.T) {
		var stored *domain.LibraryItem
		libs := &fakeLibraries{addItemFn: func(_ context.Context, userID uuid.UUID, item *domain.LibraryItem) (*domain.LibraryItem, error) {
			assert.Equal(t, testUserID, userID)
			stored = item
			item.ID = uuid.New()
			return item, nil
		}}
		s := newTestServer(t, Deps{Libraries: libs})

		rec := do(t, s, http.MethodPost, path, map[string]any{"paperId": paperID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, stored)
		assert.Equal(t, libraryID, stored.LibraryID)
		assert.Equal(t, domain.ReadingStatusToRead, stored.ReadingStatus)
	})

	t.Run("invalid input", func(t *testing.T) {
		s := newTestServer(t, Deps{Libraries: &fakeLibraries{}})

		rec := do(t, s, http.MethodPost, path, map[string]any{"paperId": paperID, "rating": 6})
		assertFieldError(t, rec, "rating", "must be at most 5")

		rec = do(t, s, http.MethodPost, path, map[string]any{"paperId": paperID, "readingStatus": "skimmed"})
		assertFieldError(t, rec, "readingStatus", "must be one of to_read, reading, completed")

		rec = do(t, s, http.MethodPost, path, map[string]any{})
		assertFieldError(t, rec, "paperId", "is required")
	})

	t.Run("paper already in library", func(t *testing.T) {
		libs := &fakeLibraries{addItemFn: func(context.Context, uuid.UUID, *domain.LibraryItem) (*domain.LibraryItem, error) {
			return nil, domain.NewAlreadyExistsError("library item", paperID.String())
		}}
		s := newTestServer(t, Deps{Libraries: libs})
		rec := do(t, s, http.MethodPost, path, map[string]any{"paperId": paperID})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestListLibraryItems(t *testing.T) {
	libraryID := uuid.New()

	t.Run("foreign library", func(t *testing.T) {
		libs := &fakeLibraries{getFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Library, error) {
			return nil, domain.NewNotFoundError("library", libraryID.String())
		}}
		s := newTestServer(t, Deps{Libraries: libs})
		rec := do(t, s, http.MethodGet, "/api/v1/libraries/"+libraryID.String()+"/items", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("embeds papers", func(t *testing.T) {
		paper := &domain.Paper{ID: uuid.New(), Title: "Deep learning"}
		libs := &fakeLibraries{listItemsFn: func(_ context.Context, _ uuid.UUID, id uuid.UUID, page domain.PageRequest) (domain.Page[*domain.LibraryItem], error) {
			return domain.Page[*domain.LibraryItem]{
				Items: []*domain.LibraryItem{{
					ID: uuid.New(), LibraryID: id, PaperID: paper.ID, ReadingStatus: domain.ReadingStatusReading, Paper: paper,
				}},
				Total:    1,
				Page:     page.Page,
				PageSize: page.PageSize,
			}, nil
		}}
		s := newTestServer(t, Deps{Libraries: libs})

		rec := do(t, s, http.MethodGet, "/api/v1/libraries/"+libraryID.String()+"/items", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body paginatedResponse[libraryItemResponse]
		decodeJSON(t, rec, &body)
		require.Len(t, body.Data, 1)
		require.NotNil(t, body.Data[0].Paper)
		assert.Equal(t, "Deep learning", body.Data[0].Paper.Title)
		assert.Equal(t, "reading", body.Data[0].ReadingStatus)
	})

	t.Run("page size out of range", func(t *testing.T) {
		s := newTestServer(t, Deps{Libraries: &fakeLibraries{}})
		rec := do(t, s, http.MethodGet, "/api/v1/libraries/"+libraryID.String()+"/items?pageSize=101", nil)
		assertFieldError(t, rec, "pageSize", "must be between 1 and 100")
	})
}

func TestUpdateLibraryItem(t *testing.T) {
	libraryID, itemID := uuid.New(), uuid.New()
	path := "/api/v1/libraries/" + libraryID.String() + "/items/" + itemID.String()

	rating := 2
	var saved *domain.LibraryItem
	libs := &fakeLibraries{
		getItemFn: func(_ context.Context, _ uuid.UUID, lib, id uuid.UUID) (*domain.LibraryItem, error) {
			return &domain.LibraryItem{ID: id, LibraryID: lib, PaperID: uuid.New(), ReadingStatus: domain.ReadingStatusToRead, Rating: &rating}, nil
		},
		updateItemFn: func(_ context.Context, _ uuid.UUID, item *domain.LibraryItem) error {
			saved = item
			return nil
		},
	}
	s := newTestServer(t, Deps{Libraries: libs})

	rec := do(t, s, http.MethodPatch, path, map[string]any{"readingStatus": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, saved)
	assert.Equal(t, domain.ReadingStatusCompleted, saved.ReadingStatus)
	require.NotNil(t, saved.Rating)
	assert.Equal(t, 2, *saved.Rating)

	rec = do(t, s, http.MethodPatch, path, map[string]any{"rating": 0})
	assertFieldError(t, rec, "rating", "must be at least 1")
}
