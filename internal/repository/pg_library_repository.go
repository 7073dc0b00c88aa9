package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var _ LibraryRepository = (*PgLibraryRepository)(nil)

const libraryColumns = `l.id, l.user_id, l.name, l.description, l.created_at, l.updated_at,
	(SELECT COUNT(*) FROM library_items i WHERE i.library_id = l.id) AS item_count`

const libraryItemColumns = `i.id, i.library_id, i.paper_id, i.reading_status, i.rating, i.added_at`

var libraryItemConstraintFields = map[string]string{
	"library_items_rating_check":         "rating",
	"library_items_reading_status_check": "readingStatus",
}

// PgLibraryRepository is a PostgreSQL implementation of LibraryRepository.
type PgLibraryRepository struct {
	db DBTX
}

// NewPgLibraryRepository creates a new PostgreSQL library repository.
func NewPgLibraryRepository(db DBTX) *PgLibraryRepository {
	return &PgLibraryRepository{db: db}
}

// Create inserts a library.
func (r *PgLibraryRepository) Create(ctx context.Context, library *domain.Library) (*domain.Library, error) {
	query := `
		INSERT INTO libraries (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, library.UserID, library.Name, library.Description).
		Scan(&library.ID, &library.CreatedAt, &library.UpdatedAt)
	if err != nil {
		return nil, translateWriteError(err, "insert library", "library", library.Name, nil)
	}
	return library, nil
}

// Get retrieves one of the user's libraries.
func (r *PgLibraryRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Library, error) {
	query := `SELECT ` + libraryColumns + ` FROM libraries l WHERE l.id = $1 AND l.user_id = $2`

	lib, err := scanLibrary(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get library", "library", id.String())
	}
	return lib, nil
}

// List returns all of the user's libraries ordered by name.
func (r *PgLibraryRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Library, error) {
	query := `SELECT ` + libraryColumns + ` FROM libraries l WHERE l.user_id = $1 ORDER BY lower(l.name), l.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list libraries: %w", err)
	}
	libs, err := collect(rows, scanLibrary)
	if err != nil {
		return nil, fmt.Errorf("failed to scan libraries: %w", err)
	}
	return libs, nil
}

// Update renames or redescribes a library.
func (r *PgLibraryRepository) Update(ctx context.Context, library *domain.Library) error {
	err := r.db.QueryRow(ctx,
		`UPDATE libraries SET name = $3, description = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2 RETURNING updated_at`,
		library.ID, library.UserID, library.Name, library.Description,
	).Scan(&library.UpdatedAt)
	if err != nil {
		return notFound(err, "update library", "library", library.ID.String())
	}
	return nil
}

// Delete removes a library and its items.
func (r *PgLibraryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM libraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete library: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("library", id.String())
	}
	return nil
}

// AddItem places a paper in a library.
func (r *PgLibraryRepository) AddItem(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) (*domain.LibraryItem, error) {
	if item.ReadingStatus == "" {
		item.ReadingStatus = domain.ReadingStatusToRead
	}

	query := `
		INSERT INTO library_items (library_id, paper_id, reading_status, rating)
		SELECT $2::uuid, $3::uuid, $4::text, $5::smallint
		WHERE EXISTS (SELECT 1 FROM libraries WHERE id = $2 AND user_id = $1)
			AND EXISTS (SELECT 1 FROM papers WHERE id = $3 AND user_id = $1)
		RETURNING id, added_at`

	err := r.db.QueryRow(ctx, query, userID, item.LibraryID, item.PaperID, item.ReadingStatus, item.Rating).
		Scan(&item.ID, &item.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("library or paper", item.LibraryID.String()+","+item.PaperID.String())
		}
		return nil, translateWriteError(err, "add library item", "library item", item.PaperID.String(), libraryItemConstraintFields)
	}
	return item, nil
}

// GetItem retrieves one item of one of the user's libraries.
func (r *PgLibraryRepository) GetItem(ctx context.Context, userID, libraryID, itemID uuid.UUID) (*domain.LibraryItem, error) {
	query := `
		SELECT ` + libraryItemColumns + `
		FROM library_items i
		JOIN libraries l ON l.id = i.library_id
		WHERE i.id = $1 AND i.library_id = $2 AND l.user_id = $3`

	item, err := scanLibraryItem(r.db.QueryRow(ctx, query, itemID, libraryID, userID))
	if err != nil {
		return nil, notFound(err, "get library item", "library item", itemID.String())
	}
	return item, nil
}

// UpdateItem persists the item's reading status and rating.
func (r *PgLibraryRepository) UpdateItem(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) error {
	query := `
		UPDATE library_items i SET reading_status = $4, rating = $5
		FROM libraries l
		WHERE i.id = $1 AND i.library_id = $2 AND l.id = i.library_id AND l.user_id = $3`

	result, err := r.db.Exec(ctx, query, item.ID, item.LibraryID, userID, item.ReadingStatus, item.Rating)
	if err != nil {
		return translateWriteError(err, "update library item", "library item", item.ID.String(), libraryItemConstraintFields)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("library item", item.ID.String())
	}
	return nil
}

// RemoveItem takes a paper out of a library.
func (r *PgLibraryRepository) RemoveItem(ctx context.Context, userID, libraryID, itemID uuid.UUID) error {
	query := `
		DELETE FROM library_items i
		USING libraries l
		WHERE i.id = $1 AND i.library_id = $2 AND l.id = i.library_id AND l.user_id = $3`

	result, err := r.db.Exec(ctx, query, itemID, libraryID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove library item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("library item", itemID.String())
	}
	return nil
}

// ListItems returns one page of items joined to their papers.
func (r *PgLibraryRepository) ListItems(ctx context.Context, userID, libraryID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.LibraryItem], error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM library_items i
		JOIN libraries l ON l.id = i.library_id
		WHERE i.library_id = $1 AND l.user_id = $2`, libraryID, userID).Scan(&total)
	if err != nil {
		return domain.Page[*domain.LibraryItem]{}, fmt.Errorf("failed to count library items: %w", err)
	}

	query := `
		SELECT ` + libraryItemColumns + `, ` + paperColumns + `
		FROM library_items i
		JOIN libraries l ON l.id = i.library_id
		JOIN papers p ON p.id = i.paper_id
		WHERE i.library_id = $1 AND l.user_id = $2
		ORDER BY i.added_at DESC, i.id
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, libraryID, userID, page.Limit(), page.Offset())
	if err != nil {
		return domain.Page[*domain.LibraryItem]{}, fmt.Errorf("failed to list library items: %w", err)
	}
	items, err := collect(rows, scanLibraryItemWithPaper)
	if err != nil {
		return domain.Page[*domain.LibraryItem]{}, fmt.Errorf("failed to scan library items: %w", err)
	}

	return domain.Page[*domain.LibraryItem]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func scanLibrary(row pgx.Row) (*domain.Library, error) {
	var l domain.Library
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt, &l.ItemCount); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanLibraryItem(row pgx.Row) (*domain.LibraryItem, error) {
	var i domain.LibraryItem
	if err := row.Scan(&i.ID, &i.LibraryID, &i.PaperID, &i.ReadingStatus, &i.Rating, &i.AddedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func scanLibraryItemWithPaper(row pgx.Row) (*domain.LibraryItem, error) {
	var i domain.LibraryItem
	var p domain.Paper
	err := row.Scan(
		&i.ID, &i.LibraryID, &i.PaperID, &i.ReadingStatus, &i.Rating, &i.AddedAt,
		&p.ID, &p.UserID, &p.Title, &p.Authors, &p.Abstract, &p.Year, &p.Journal,
		&p.DOI, &p.URL, &p.ArXivID, &p.CitationCount, &p.IsFavorite, &p.ReadingStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Paper = &p
	return &i, nil
}
