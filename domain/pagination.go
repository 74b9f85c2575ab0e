package domain

// MaxPageLimit bounds how many records a single page may carry.
const MaxPageLimit = 100

// Page is a validated 1-indexed page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage validates page and limit; limits above MaxPageLimit are clamped.
func NewPage(number, limit int) (Page, error) {
	if number < 1 || limit < 1 {
		return Page{}, ErrInvalidPage
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}, nil
}

// Skip returns how many records precede the page.
func (p Page) Skip() int {
	return (p.Number - 1) * p.Limit
}

// Pagination describes a page of results in responses.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count as ceil(total/limit).
func NewPagination(total int64, page Page) Pagination {
	pages := 0
	if page.Limit > 0 {
		pages = int((total + int64(page.Limit) - 1) / int64(page.Limit))
	}
	return Pagination{
		Total: total,
		Page:  page.Number,
		Limit: page.Limit,
		Pages: pages,
	}
}
