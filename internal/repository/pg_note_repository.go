package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var _ NoteRepository = (*PgNoteRepository)(nil)

const noteColumns = `n.id, n.user_id, n.paper_id, n.title, n.content, n.highlighted_text,
	n.page_number, n.created_at, n.updated_at`

var noteConstraintFields = map[string]string{
	"notes_page_number_check": "pageNumber",
	"notes_paper_id_fkey":     "paperId",
}

// PgNoteRepository is a PostgreSQL implementation of NoteRepository.
type PgNoteRepository struct {
	db DBTX
}

// NewPgNoteRepository creates a new PostgreSQL note repository.
func NewPgNoteRepository(db DBTX) *PgNoteRepository {
	return &PgNoteRepository{db: db}
}

// Create inserts a note.
func (r *PgNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	query := `
		INSERT INTO notes (user_id, paper_id, title, content, highlighted_text, page_number)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::integer
		WHERE EXISTS (SELECT 1 FROM papers WHERE id = $2 AND user_id = $1)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		note.UserID, note.PaperID, note.Title, note.Content, note.HighlightedText, note.PageNumber,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", note.PaperID.String())
		}
		return nil, translateWriteError(err, "insert note", "note", note.Title, noteConstraintFields)
	}
	return note, nil
}

// Get retrieves one of the user's notes.
func (r *PgNoteRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes n WHERE n.id = $1 AND n.user_id = $2`

	note, err := scanNote(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get note", "note", id.String())
	}
	return note, nil
}

// Update persists every mutable field of note.
func (r *PgNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	query := `
		UPDATE notes SET title = $3, content = $4, highlighted_text = $5,
			page_number = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		note.ID, note.UserID, note.Title, note.Content, note.HighlightedText, note.PageNumber,
	).Scan(&note.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("note", note.ID.String())
		}
		return translateWriteError(err, "update note", "note", note.ID.String(), noteConstraintFields)
	}
	return nil
}

// Delete removes a note.
func (r *PgNoteRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("note", id.String())
	}
	return nil
}

// List returns one page of notes, newest first.
func (r *PgNoteRepository) List(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error) {
	where := `n.user_id = $1`
	args := []interface{}{userID}
	if paperID != nil {
		args = append(args, *paperID)
		where += ` AND n.paper_id = $2`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notes n WHERE `+where, args...).Scan(&total); err != nil {
		return domain.Page[*domain.Note]{}, fmt.Errorf("failed to count notes: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM notes n WHERE %s ORDER BY n.created_at DESC, n.id LIMIT $%d OFFSET $%d`,
		noteColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return domain.Page[*domain.Note]{}, fmt.Errorf("failed to list notes: %w", err)
	}
	notes, err := collect(rows, scanNote)
	if err != nil {
		return domain.Page[*domain.Note]{}, fmt.Errorf("failed to scan notes: %w", err)
	}

	return domain.Page[*domain.Note]{Items: notes, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.UserID, &n.PaperID, &n.Title, &n.Content, &n.HighlightedText,
		&n.PageNumber, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
