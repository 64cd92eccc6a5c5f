package domain

import "strings"

// Entry kinds for the confirm-modal working set.
// An original entry was picked by the reviewer; a related entry was
// discovered by the related-trips lookup when the modal opened.
const (
	EntryKindOriginal = "original"
	EntryKindRelated  = "related"
)

// SelectedTripEntry wraps a potential trip held in a review session's
// working set, tagged with how it got there.
type SelectedTripEntry struct {
	Kind string        `json:"type"`
	Trip PotentialTrip `json:"trip"`
}

// ClientID returns the deterministic composite key used to deduplicate
// related-trip results against the working set: trip name, destination and
// date range, lowercased with all spaces stripped. Two records describing
// the same real-world trip collapse to the same key even when spacing or
// casing differ.
func (e SelectedTripEntry) ClientID() string {
	return TripClientID(e.Trip)
}

// TripClientID computes the composite dedup key for a trip.
// Keys are only compared to each other, never parsed, so lossy
// normalization (dropping every space) is fine.
func TripClientID(t PotentialTrip) string {
	var b strings.Builder
	b.WriteString(t.TripName)
	b.WriteString(t.CoreDestination)
	first := t.FirstDateIn()
	if !first.IsZero() {
		b.WriteString(first.Format("2006-01-02"))
	}
	last := t.LastDateOut()
	if !last.IsZero() {
		b.WriteString(last.Format("2006-01-02"))
	}
	key := strings.ToLower(b.String())
	return strings.ReplaceAll(key, " ", "")
}

// ConfirmedTripPayload is the sole mutation this service sends to the travel
// backend: the merged, ordered log-id set plus the resolved trip name.
type ConfirmedTripPayload struct {
	TripName            string   `json:"trip_name"`
	AccommodationLogIDs []string `json:"accommodation_log_ids"`
	UpdatedBy           string   `json:"updated_by"`
}

// ConfirmResult is the backend's response to a confirm_trip submission.
type ConfirmResult struct {
	InsertedCount int    `json:"inserted_count,omitempty"`
	UpdatedCount  int    `json:"updated_count,omitempty"`
	Error         string `json:"error,omitempty"`
	Message       string `json:"message,omitempty"`
}
