// Package service contains the business logic for the tripdesk review
// workflow. It orchestrates the travel-backend client, the consistency
// validator, the related-trip finder and the audit journal; no HTTP or SQL
// lives here.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/safariops/tripdesk/internal/domain"
	"github.com/safariops/tripdesk/internal/validate"
)

// Backend defines the travel-backend operations the review service depends
// on. Defining the interface here (in the consumer package) lets tests
// inject a mock without a live backend.
type Backend interface {
	ListPotentialTrips(ctx context.Context) ([]domain.PotentialTrip, error)
	Progress(ctx context.Context) (json.RawMessage, error)
	ConfirmTrip(ctx context.Context, payload domain.ConfirmedTripPayload) (domain.ConfirmResult, error)
}

// RelatedFinder expands a selection with backend-suggested related trips.
type RelatedFinder interface {
	Find(ctx context.Context, originals []domain.SelectedTripEntry) ([]domain.SelectedTripEntry, error)
}

// EventJournal records reviewer actions. Satisfied by repo.ReviewEventRepo.
type EventJournal interface {
	Insert(ctx context.Context, event domain.ReviewEvent) (domain.ReviewEvent, error)
	List(ctx context.Context, page domain.PaginationParams) ([]domain.ReviewEvent, int64, error)
}

// ReviewService implements the potential-trips review workflow end to end:
// listing, filtering, review sessions, and trip confirmation.
type ReviewService struct {
	backend  Backend
	finder   RelatedFinder
	journal  EventJournal
	log      *slog.Logger
	sessions *sessionStore
}

// NewReviewService constructs a ReviewService. A nil logger falls back to
// slog.Default.
func NewReviewService(backend Backend, finder RelatedFinder, journal EventJournal, log *slog.Logger) *ReviewService {
	if log == nil {
		log = slog.Default()
	}
	return &ReviewService{
		backend:  backend,
		finder:   finder,
		journal:  journal,
		log:      log,
		sessions: newSessionStore(),
	}
}

// TripPage is one page of the potential-trips listing.
type TripPage struct {
	Trips []domain.PotentialTrip `json:"trips"`
	Total int                    `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// ListPotentialTrips fetches the backend's proposed trips, annotates every
// one with consistency flags, then applies the query's filter, search, sort
// and pagination.
//
// A backend failure other than credential expiry degrades to an empty page
// with a logged warning: the dashboard shows "no data" rather than an error
// wall, and the reviewer refreshes. Credential expiry propagates so the
// caller can force re-authentication.
func (s *ReviewService) ListPotentialTrips(ctx context.Context, q domain.TripQuery) (TripPage, error) {
	trips, err := s.fetchAnnotated(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return TripPage{}, fmt.Errorf("service.ReviewService.ListPotentialTrips: %w", err)
		}
		s.log.WarnContext(ctx, "potential-trips fetch failed; serving empty page", "error", err)
		return TripPage{Trips: []domain.PotentialTrip{}, Page: q.Page.Page, Limit: q.Page.Limit}, nil
	}

	filtered := trips[:0:0]
	for _, t := range trips {
		if q.Matches(t) {
			filtered = append(filtered, t)
		}
	}
	sortTrips(filtered, q.Sort)

	pageTrips, total := q.Page.Slice(filtered)
	return TripPage{Trips: pageTrips, Total: total, Page: q.Page.Page, Limit: q.Page.Limit}, nil
}

// Progress returns the backend's aggregate completion metrics unchanged.
// Same degradation rules as ListPotentialTrips: transient failures yield an
// empty object, credential expiry propagates.
func (s *ReviewService) Progress(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.backend.Progress(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, fmt.Errorf("service.ReviewService.Progress: %w", err)
		}
		s.log.WarnContext(ctx, "progress fetch failed; serving empty metrics", "error", err)
		return json.RawMessage(`{}`), nil
	}
	return raw, nil
}

// ListEvents returns a page of the local audit journal, newest first.
func (s *ReviewService) ListEvents(ctx context.Context, page domain.PaginationParams) ([]domain.ReviewEvent, int64, error) {
	events, total, err := s.journal.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReviewService.ListEvents: %w", err)
	}
	return events, total, nil
}

// fetchAnnotated pulls every potential trip and runs the validator over it.
func (s *ReviewService) fetchAnnotated(ctx context.Context) ([]domain.PotentialTrip, error) {
	trips, err := s.backend.ListPotentialTrips(ctx)
	if err != nil {
		return nil, err
	}
	return validate.AnnotateAll(trips), nil
}

// sortTrips orders trips in place. Latest/oldest key on the first log's
// check-in; shortest/longest on the overall span. Sorting is stable with a
// trip-ID tiebreak so identical input always produces identical pages.
func sortTrips(trips []domain.PotentialTrip, order string) {
	less := func(a, b domain.PotentialTrip) bool {
		return a.FirstDateIn().After(b.FirstDateIn()) // SortLatest default
	}
	switch order {
	case domain.SortOldest:
		less = func(a, b domain.PotentialTrip) bool { return a.FirstDateIn().Before(b.FirstDateIn()) }
	case domain.SortShortest:
		less = func(a, b domain.PotentialTrip) bool { return a.SpanDays() < b.SpanDays() }
	case domain.SortLongest:
		less = func(a, b domain.PotentialTrip) bool { return a.SpanDays() > b.SpanDays() }
	}
	sort.SliceStable(trips, func(i, j int) bool {
		a, b := trips[i], trips[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})
}
