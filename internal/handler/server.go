// Package handler implements the HTTP surface of the tripdesk review API.
// Handlers decode requests, call the review service, and map domain
// sentinel errors to HTTP status codes. Methods are split into files by
// resource (review.go, session.go, health.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/safariops/tripdesk/internal/domain"
	"github.com/safariops/tripdesk/internal/service"
)

// ReviewServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the backend or the database.
type ReviewServicer interface {
	ListPotentialTrips(ctx context.Context, q domain.TripQuery) (service.TripPage, error)
	Progress(ctx context.Context) (json.RawMessage, error)
	ListEvents(ctx context.Context, page domain.PaginationParams) ([]domain.ReviewEvent, int64, error)

	OpenSession(ctx context.Context, tripIDs []string) (service.SessionView, error)
	GetSession(sessionID uuid.UUID) (service.SessionView, error)
	ToggleTrip(ctx context.Context, sessionID uuid.UUID, tripID string) (service.SessionView, error)
	RemoveLog(sessionID uuid.UUID, tripID, logID string) (service.SessionView, error)
	CloseSession(sessionID uuid.UUID) error
	Confirm(ctx context.Context, sessionID uuid.UUID, nameOverride, updatedBy string) (domain.ConfirmResult, error)
}

// Server holds the handler dependencies. Wire it in main.go via Routes.
type Server struct {
	review ReviewServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(review ReviewServicer) *Server {
	return &Server{review: review}
}

// Routes registers every endpoint on a fresh chi router. The caller mounts
// the result under the middleware stack.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/v1/review", func(r chi.Router) {
		r.Get("/trips", s.ListTrips)
		r.Get("/progress", s.GetProgress)
		r.Get("/events", s.ListEvents)

		r.Post("/sessions", s.OpenSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Post("/confirm", s.ConfirmSession)
			r.Post("/trips/{tripID}", s.ToggleTrip)
			r.Delete("/trips/{tripID}/logs/{logID}", s.RemoveLog)
		})
	})

	return r
}

// sessionID extracts and parses the {sessionID} URL parameter.
func sessionID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	return id, err == nil
}
