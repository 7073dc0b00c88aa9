package domain

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of a list.
type PageRequest struct {
	Page     int
	PageSize int
}

// Validate checks the page bounds.
func (p PageRequest) Validate() error {
	errs := FieldErrors{}
	if p.Page < 1 {
		errs.Add("page", "must be at least 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		errs.Add("pageSize", "must be between 1 and 100")
	}
	return errs.Err()
}

// Limit returns the SQL LIMIT for the page.
func (p PageRequest) Limit() int {
	return p.PageSize
}

// Offset returns the SQL OFFSET for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of a list plus the total row count.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// TotalPages returns the number of pages for Total rows.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
