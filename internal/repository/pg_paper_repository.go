package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

// Compile-time interface verification.
var _ PaperRepository = (*PgPaperRepository)(nil)

const paperColumns = `p.id, p.user_id, p.title, p.authors, p.abstract, p.publication_year,
	p.journal, p.doi, p.url, p.arxiv_id, p.citation_count, p.is_favorite,
	p.reading_status, p.created_at, p.updated_at`

var paperConstraintFields = map[string]string{
	"idx_papers_user_doi":           "doi",
	"papers_publication_year_check": "year",
	"papers_citation_count_check":   "citationCount",
	"papers_reading_status_check":   "readingStatus",
	"papers_user_id_fkey":           "userId",
}

// PgPaperRepository is a PostgreSQL implementation of PaperRepository.
type PgPaperRepository struct {
	db DBTX
}

// NewPgPaperRepository creates a new PostgreSQL paper repository.
func NewPgPaperRepository(db DBTX) *PgPaperRepository {
	return &PgPaperRepository{db: db}
}

// Create inserts a new paper.
func (r *PgPaperRepository) Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, error) {
	if paper == nil {
		return nil, domain.NewValidationError("paper", "paper cannot be nil")
	}
	if paper.ReadingStatus == "" {
		paper.ReadingStatus = domain.ReadingStatusToRead
	}

	query := `
		INSERT INTO papers (
			user_id, title, authors, abstract, publication_year, journal,
			doi, url, arxiv_id, citation_count, is_favorite, reading_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		paper.UserID,
		paper.Title,
		paper.Authors,
		paper.Abstract,
		paper.Year,
		paper.Journal,
		paper.DOI,
		paper.URL,
		paper.ArXivID,
		paper.CitationCount,
		paper.IsFavorite,
		paper.ReadingStatus,
	).Scan(&paper.ID, &paper.CreatedAt, &paper.UpdatedAt)
	if err != nil {
		return nil, translateWriteError(err, "insert paper", "paper", derefOr(paper.DOI, paper.Title), paperConstraintFields)
	}

	return paper, nil
}

// Get retrieves one of the user's papers.
func (r *PgPaperRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers p WHERE p.id = $1 AND p.user_id = $2`

	paper, err := scanPaper(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get paper", "paper", id.String())
	}
	return paper, nil
}

// GetMany retrieves the user's papers with the given ids.
func (r *PgPaperRepository) GetMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Paper, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Paper{}, nil
	}

	query := `SELECT ` + paperColumns + ` FROM papers p WHERE p.user_id = $1 AND p.id = ANY($2)`

	rows, err := r.db.Query(ctx, query, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get papers: %w", err)
	}
	papers, err := collect(rows, scanPaper)
	if err != nil {
		return nil, fmt.Errorf("failed to scan papers: %w", err)
	}

	out := make(map[uuid.UUID]*domain.Paper, len(papers))
	for _, p := range papers {
		out[p.ID] = p
	}
	return out, nil
}

// FindByIdentifier retrieves the user's paper carrying a DOI or arXiv id.
func (r *PgPaperRepository) FindByIdentifier(ctx context.Context, userID uuid.UUID, id domain.Identifier) (*domain.Paper, error) {
	var where string
	switch id.Kind {
	case domain.IdentifierDOI:
		where = `lower(p.doi) = lower($2)`
	case domain.IdentifierArXiv:
		where = `p.arxiv_id = $2`
	default:
		return nil, domain.NewValidationError("identifier", fmt.Sprintf("unsupported identifier kind: %q", id.Kind))
	}

	query := `SELECT ` + paperColumns + ` FROM papers p WHERE p.user_id = $1 AND ` + where + ` LIMIT 1`

	paper, err := scanPaper(r.db.QueryRow(ctx, query, userID, id.Value))
	if err != nil {
		return nil, notFound(err, "find paper by identifier", "paper", id.String())
	}
	return paper, nil
}

// Update persists every mutable field of paper.
func (r *PgPaperRepository) Update(ctx context.Context, paper *domain.Paper) error {
	query := `
		UPDATE papers SET
			title = $3, authors = $4, abstract = $5, publication_year = $6,
			journal = $7, doi = $8, url = $9, arxiv_id = $10, citation_count = $11,
			is_favorite = $12, reading_status = $13, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		paper.ID,
		paper.UserID,
		paper.Title,
		paper.Authors,
		paper.Abstract,
		paper.Year,
		paper.Journal,
		paper.DOI,
		paper.URL,
		paper.ArXivID,
		paper.CitationCount,
		paper.IsFavorite,
		paper.ReadingStatus,
	).Scan(&paper.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("paper", paper.ID.String())
		}
		return translateWriteError(err, "update paper", "paper", derefOr(paper.DOI, paper.ID.String()), paperConstraintFields)
	}
	return nil
}

// ToggleFavorite flips the favorite flag.
func (r *PgPaperRepository) ToggleFavorite(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error) {
	query := `
		UPDATE papers p SET is_favorite = NOT p.is_favorite, updated_at = now()
		WHERE p.id = $1 AND p.user_id = $2
		RETURNING ` + paperColumns

	paper, err := scanPaper(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "toggle favorite", "paper", id.String())
	}
	return paper, nil
}

// Delete removes the paper.
func (r *PgPaperRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM papers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("paper", id.String())
	}
	return nil
}

// List returns one page of the user's papers matching filter.
func (r *PgPaperRepository) List(ctx context.Context, userID uuid.UUID, filter domain.PaperFilter, page domain.PageRequest) (domain.Page[*domain.Paper], error) {
	where, args := buildPaperWhere(userID, filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM papers p WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.Page[*domain.Paper]{}, fmt.Errorf("failed to count papers: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM papers p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		paperColumns, where, paperOrderBy(filter.Sort), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return domain.Page[*domain.Paper]{}, fmt.Errorf("failed to list papers: %w", err)
	}
	papers, err := collect(rows, scanPaper)
	if err != nil {
		return domain.Page[*domain.Paper]{}, fmt.Errorf("failed to scan papers: %w", err)
	}

	return domain.Page[*domain.Paper]{
		Items:    papers,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

// buildPaperWhere renders the filter as a WHERE clause over alias p.
func buildPaperWhere(userID uuid.UUID, filter domain.PaperFilter) (string, []interface{}) {
	conditions := []string{"p.user_id = $1"}
	args := []interface{}{userID}

	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.authors ILIKE $%d)", n, n))
	}
	if filter.ReadingStatus != nil {
		args = append(args, *filter.ReadingStatus)
		conditions = append(conditions, fmt.Sprintf("p.reading_status = $%d", len(args)))
	}
	if filter.Favorite != nil {
		args = append(args, *filter.Favorite)
		conditions = append(conditions, fmt.Sprintf("p.is_favorite = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("p.publication_year = $%d", len(args)))
	}
	if filter.TagID != nil {
		args = append(args, *filter.TagID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM paper_tags pt WHERE pt.paper_id = p.id AND pt.tag_id = $%d)", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func paperOrderBy(sort domain.PaperSort) string {
	switch sort {
	case domain.PaperSortYear:
		return "p.publication_year DESC NULLS LAST, p.created_at DESC, p.id"
	case domain.PaperSortTitle:
		return "lower(p.title) ASC, p.id"
	default:
		return "p.created_at DESC, p.id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scanPaper scans a row selected with paperColumns.
func scanPaper(row pgx.Row) (*domain.Paper, error) {
	var p domain.Paper
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Authors,
		&p.Abstract,
		&p.Year,
		&p.Journal,
		&p.DOI,
		&p.URL,
		&p.ArXivID,
		&p.CitationCount,
		&p.IsFavorite,
		&p.ReadingStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
