package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review-event outcomes. A confirm attempt is journaled whether or not the
// backend accepted it, so reviewers can see failed submissions too.
const (
	OutcomeAccepted = "accepted"
	OutcomeFailed   = "failed"
)

// ReviewEvent is one row of the local audit journal: a reviewer action
// against the travel backend, with enough context to answer "who confirmed
// what, when, and did it stick". The backend does not retain this history.
type ReviewEvent struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"` // currently always "confirm"
	TripName  string    `json:"trip_name"`
	LogCount  int       `json:"log_count"`
	ActedBy   string    `json:"acted_by"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
