package domain

// PaginationParams carries page/limit values from the HTTP layer down to the
// listing code. Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 to keep response sizes bounded.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based element offset for slicing or SQL OFFSET.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Slice applies the pagination window to a slice of trips, returning the
// page contents and the total count. Out-of-range pages yield an empty,
// non-nil slice so callers can range safely.
func (p PaginationParams) Slice(trips []PotentialTrip) ([]PotentialTrip, int) {
	total := len(trips)
	start := p.Offset()
	if start >= total {
		return []PotentialTrip{}, total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return trips[start:end], total
}
