package domain

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// PaginationParams - страница результатов, Page начинается с 1
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams нормализует page/limit: page >= 1, 1 <= limit <= maxLimit
func NewPaginationParams(page, limit, defaultLimit, maxLimit int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: defaultLimit}
	if page >= 1 {
		p.Page = page
	}
	if limit >= 1 {
		p.Limit = limit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
