package domain

import "strings"

// Sort orders accepted by the potential-trips listing. All four key on the
// first log's check-in date or the trip's overall span.
const (
	SortLatest   = "latest"
	SortOldest   = "oldest"
	SortShortest = "shortest"
	SortLongest  = "longest"
)

// Review-status filter values. StatusAny disables the filter; StatusValidated
// matches trips whose review status is empty (reviewed and accepted).
const (
	StatusAny       = ""
	StatusValidated = "validated"
)

// TripQuery bundles the client-side filter, search, sort and pagination
// options for the potential-trips listing.
type TripQuery struct {
	// Region filters by core destination (exact match); empty means all.
	Region string
	// Year filters by the year of the trip's first check-in; zero means all.
	Year int
	// OnlyIssues keeps just trips with at least one flag set.
	OnlyIssues bool
	// Status filters by review status: "pending", "flagged", "validated",
	// or StatusAny.
	Status string
	// Search is a case-sensitive substring matched against trip name,
	// primary travelers, and consultant names.
	Search string
	// Sort is one of the Sort* constants; empty defaults to SortLatest.
	Sort string

	Page PaginationParams
}

// Matches reports whether the trip passes the query's filter and search
// terms (sorting and pagination are applied by the caller).
func (q TripQuery) Matches(t PotentialTrip) bool {
	if q.Region != "" && t.CoreDestination != q.Region {
		return false
	}
	if q.Year != 0 {
		first := t.FirstDateIn()
		if first.IsZero() || first.Year() != q.Year {
			return false
		}
	}
	if q.OnlyIssues && !t.HasIssues() {
		return false
	}
	switch q.Status {
	case StatusAny:
	case StatusValidated:
		if t.ReviewStatus != "" {
			return false
		}
	default:
		if t.ReviewStatus != q.Status {
			return false
		}
	}
	if q.Search != "" && !matchesSearch(t, q.Search) {
		return false
	}
	return true
}

// matchesSearch checks the free-text term against trip name, traveler names,
// and consultant names. Matching is case-sensitive substring, same as the
// dashboard it replaces.
func matchesSearch(t PotentialTrip, term string) bool {
	if contains(t.DisplayName(), term) {
		return true
	}
	for _, l := range t.Logs {
		if contains(l.PrimaryTraveler, term) || contains(l.ConsultantDisplayName, term) {
			return true
		}
	}
	return false
}

func contains(s, sub string) bool {
	return sub != "" && strings.Contains(s, sub)
}
