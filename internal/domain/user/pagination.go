package user

// PageSize is the number of records shown per console page.
const PageSize = 13

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64 // Total number of records
	Page       int64 // Current page number (1-based)
	Limit      int64 // Number of records per page
	TotalPages int64 // Total number of pages
}

// NewPagination creates a new Pagination instance with calculated total pages.
// An empty collection still has one (empty) page. Page is clamped into
// [1, TotalPages].
func NewPagination(total, page, limit int64) *Pagination {
	if limit <= 0 {
		limit = PageSize
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// Valid reports whether page is inside [1, TotalPages].
func (p *Pagination) Valid(page int64) bool {
	return page >= 1 && page <= p.TotalPages
}

// HasPrev reports whether a previous page exists.
func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p *Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Bounds returns the zero-based [start, end) offsets of the current page.
func (p *Pagination) Bounds() (start, end int64) {
	start = (p.Page - 1) * p.Limit
	end = start + p.Limit
	if start > p.Total {
		start = p.Total
	}
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Slice returns the records of the current page.
func (p *Pagination) Slice(users []User) []User {
	start, end := p.Bounds()
	if int64(len(users)) < end {
		end = int64(len(users))
	}
	if start > end {
		start = end
	}
	return users[start:end]
}
