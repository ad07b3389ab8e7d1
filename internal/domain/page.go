package domain

import "math"

const (
	defaultLimit = 20
	maxLimit     = 100
	// MaxPage keeps (page-1)*limit inside int for every accepted limit.
	MaxPage = math.MaxInt / maxLimit
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. A zero Limit means "no pagination": the full result set
// is returned, which is the default for every collection endpoint.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return. Zero disables paging.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// When both are nil paging stays disabled. Otherwise nil pointers fall back
// to page=1, limit=20. The limit is capped at 100 to prevent runaway queries
// and the page at MaxPage so the offset cannot overflow.
func NewPaginationParams(page, limit *int) PaginationParams {
	if page == nil && limit == nil {
		return PaginationParams{}
	}
	p := PaginationParams{Page: 1, Limit: defaultLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, maxLimit)
	}
	return p
}

// Enabled reports whether a LIMIT/OFFSET clause should be applied.
func (p PaginationParams) Enabled() bool {
	return p.Limit > 0
}

// Offset returns the zero-based row offset for a SQL OFFSET clause. It
// saturates at math.MaxInt instead of wrapping negative.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}
