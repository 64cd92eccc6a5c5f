package domain

import "time"

// Review statuses a potential trip can carry. An empty status on a trip a
// reviewer has already touched means "validated".
const (
	ReviewStatusPending = "pending"
	ReviewStatusFlagged = "flagged"
)

// UnnamedTrip is the display name used when the backend has no name on file.
const UnnamedTrip = "Unnamed Trip"

// DateIssue records one adjacency problem found between two logs of a trip.
// The flag contract on the logs themselves does not distinguish gap from
// overlap, so the cause is kept here for display.
type DateIssue struct {
	// Kind is "gap" or "overlap".
	Kind string `json:"kind"`
	// FirstLogID and SecondLogID identify the adjacent pair, in date order.
	FirstLogID  string `json:"first_log_id"`
	SecondLogID string `json:"second_log_id"`
}

// PotentialTrip is a backend-proposed grouping of accommodation logs believed
// to belong to one real trip, awaiting human confirmation.
// Logs is kept ordered by date_in; a trip with zero remaining logs is never
// shown and is pruned from any working selection.
type PotentialTrip struct {
	ID              string             `json:"id"`
	TripName        string             `json:"trip_name"`
	ReviewStatus    string             `json:"review_status,omitempty"`
	ReviewedBy      string             `json:"reviewed_by,omitempty"`
	ReviewNotes     string             `json:"review_notes,omitempty"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	StartDate       time.Time          `json:"start_date"`
	CoreDestination string             `json:"core_destination"`
	Logs            []AccommodationLog `json:"accommodation_logs"`

	// Derived by validate.Annotate; zero until then.
	TotalFlags int         `json:"total_flags"`
	DateIssues []DateIssue `json:"date_issues,omitempty"`
}

// DisplayName returns the trip name, or UnnamedTrip when the backend has none.
func (t PotentialTrip) DisplayName() string {
	if t.TripName == "" {
		return UnnamedTrip
	}
	return t.TripName
}

// FirstDateIn returns the earliest check-in across the trip's logs, skipping
// logs with missing dates. Returns the zero time when no log has a date.
func (t PotentialTrip) FirstDateIn() time.Time {
	var first time.Time
	for _, l := range t.Logs {
		if !l.HasDateIn() {
			continue
		}
		if first.IsZero() || l.DateIn.Before(first) {
			first = l.DateIn
		}
	}
	return first
}

// LastDateOut returns the latest check-out across the trip's logs, skipping
// logs with missing dates. Returns the zero time when no log has a date.
func (t PotentialTrip) LastDateOut() time.Time {
	var last time.Time
	for _, l := range t.Logs {
		if !l.HasDateOut() {
			continue
		}
		if l.DateOut.After(last) {
			last = l.DateOut
		}
	}
	return last
}

// SpanDays returns the whole-day span from the first check-in to the last
// check-out, or 0 when either end is missing.
func (t PotentialTrip) SpanDays() int {
	first, last := t.FirstDateIn(), t.LastDateOut()
	if first.IsZero() || last.IsZero() {
		return 0
	}
	return int(last.Sub(first).Hours() / 24)
}

// HasIssues reports whether any log in the trip carries a flag.
func (t PotentialTrip) HasIssues() bool {
	return t.TotalFlags > 0
}
