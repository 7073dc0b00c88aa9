package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var _ TagRepository = (*PgTagRepository)(nil)

const tagColumns = `t.id, t.user_id, t.name, t.color, t.created_at,
	(SELECT COUNT(*) FROM paper_tags pt WHERE pt.tag_id = t.id) AS paper_count`

// PgTagRepository is a PostgreSQL implementation of TagRepository.
type PgTagRepository struct {
	db DBTX
}

// NewPgTagRepository creates a new PostgreSQL tag repository.
func NewPgTagRepository(db DBTX) *PgTagRepository {
	return &PgTagRepository{db: db}
}

// Create inserts a tag.
func (r *PgTagRepository) Create(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	query := `
		INSERT INTO tags (user_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := r.db.QueryRow(ctx, query, tag.UserID, tag.Name, tag.Color).Scan(&tag.ID, &tag.CreatedAt); err != nil {
		return nil, translateWriteError(err, "insert tag", "tag", tag.Name, nil)
	}
	return tag, nil
}

// Get retrieves one of the user's tags.
func (r *PgTagRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.id = $1 AND t.user_id = $2`

	tag, err := scanTag(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get tag", "tag", id.String())
	}
	return tag, nil
}

// List returns all of the user's tags.
func (r *PgTagRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.user_id = $1 ORDER BY lower(t.name), t.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags: %w", err)
	}
	return tags, nil
}

// Update renames or recolors a tag.
func (r *PgTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	result, err := r.db.Exec(ctx,
		`UPDATE tags SET name = $3, color = $4 WHERE id = $1 AND user_id = $2`,
		tag.ID, tag.UserID, tag.Name, tag.Color)
	if err != nil {
		return translateWriteError(err, "update tag", "tag", tag.Name, nil)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("tag", tag.ID.String())
	}
	return nil
}

// Delete removes a tag and its paper links.
func (r *PgTagRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("tag", id.String())
	}
	return nil
}

// ListForPaper returns the tags attached to a paper.
func (r *PgTagRepository) ListForPaper(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Tag, error) {
	query := `
		SELECT ` + tagColumns + `
		FROM tags t
		JOIN paper_tags l ON l.tag_id = t.id
		WHERE l.paper_id = $1 AND t.user_id = $2
		ORDER BY lower(t.name), t.id`

	rows, err := r.db.Query(ctx, query, paperID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paper tags: %w", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("failed to scan paper tags: %w", err)
	}
	return tags, nil
}

// ReplacePaperTags sets the paper's tag set to exactly tagIDs.
func (r *PgTagRepository) ReplacePaperTags(ctx context.Context, userID, paperID uuid.UUID, tagIDs []uuid.UUID) error {
	tagIDs = uniqueIDs(tagIDs)

	var owned int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tags WHERE user_id = $1 AND id = ANY($2)`,
		userID, tagIDs).Scan(&owned)
	if err != nil {
		return fmt.Errorf("failed to check tag ownership: %w", err)
	}
	if owned != len(tagIDs) {
		return domain.NewNotFoundError("tag", "one or more tags")
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM paper_tags WHERE paper_id = $1`, paperID); err != nil {
		return fmt.Errorf("failed to clear paper tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range tagIDs {
		batch.Queue(`INSERT INTO paper_tags (paper_id, tag_id) VALUES ($1, $2)`, paperID, id)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range tagIDs {
		if _, err := results.Exec(); err != nil {
			return translateWriteError(err, "attach tag", "paper tag", paperID.String(), nil)
		}
	}
	return nil
}

func scanTag(row pgx.Row) (*domain.Tag, error) {
	var t domain.Tag
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt, &t.PaperCount); err != nil {
		return nil, err
	}
	return &t, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
