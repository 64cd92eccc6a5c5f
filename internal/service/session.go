package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/safariops/tripdesk/internal/domain"
	"github.com/safariops/tripdesk/internal/naming"
	"github.com/safariops/tripdesk/internal/selection"
)

// Review-session states. A session is created in StateConfirming while the
// related-trip lookup is in flight, moves to StateReady when the batch
// settles, and to StateSubmitting for the duration of a confirm call.
// Closed sessions are removed from the store entirely.
const (
	StateConfirming = "confirming"
	StateReady      = "ready"
	StateSubmitting = "submitting"
)

// SessionView is the snapshot of a review session handed to the HTTP layer.
type SessionView struct {
	ID           uuid.UUID                  `json:"id"`
	State        string                     `json:"state"`
	Entries      []domain.SelectedTripEntry `json:"entries"`
	ProposedName string                     `json:"proposed_name"`
	NameResolved bool                       `json:"name_resolved"`
	// Closed is true when the operation that produced this view also closed
	// the session (e.g. the last log was removed).
	Closed bool `json:"closed"`
}

// session is one open confirm flow. generation guards against a stale
// related-lookup batch being applied after the session was closed and its
// slot reused: the lookup captures the generation at launch and the result
// is discarded if it no longer matches.
type session struct {
	id         uuid.UUID
	state      string
	generation uint64
	set        *selection.Set
	name       string
}

// sessionStore owns every open session. All access goes through the mutex;
// individual sessions are only touched while it is held.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	nextGen  uint64
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[uuid.UUID]*session)}
}

// OpenSession starts the confirm flow for the given trips: it resolves the
// IDs against the backend's current potential trips, seeds the working set,
// runs the related-trip lookup, and proposes a merged name. The returned
// view is StateReady unless the lookup hit credential expiry, which aborts
// and closes the session.
//
// Unknown trip IDs are rejected with domain.ErrValidation: confirming
// trips the backend no longer proposes would silently merge stale data.
func (s *ReviewService) OpenSession(ctx context.Context, tripIDs []string) (SessionView, error) {
	if len(tripIDs) == 0 {
		return SessionView{}, fmt.Errorf("service.ReviewService.OpenSession: %w: at least one trip is required", domain.ErrValidation)
	}

	trips, err := s.fetchAnnotated(ctx)
	if err != nil {
		return SessionView{}, fmt.Errorf("service.ReviewService.OpenSession: %w", err)
	}
	byID := make(map[string]domain.PotentialTrip, len(trips))
	for _, t := range trips {
		byID[t.ID] = t
	}

	set := selection.New()
	for _, id := range tripIDs {
		trip, ok := byID[id]
		if !ok {
			return SessionView{}, fmt.Errorf("service.ReviewService.OpenSession: %w: unknown trip %s", domain.ErrValidation, id)
		}
		if len(trip.Logs) == 0 {
			continue // never admit an empty trip into the working set
		}
		set.Add(domain.SelectedTripEntry{Kind: domain.EntryKindOriginal, Trip: trip})
	}
	if set.Len() == 0 {
		return SessionView{}, fmt.Errorf("service.ReviewService.OpenSession: %w: no usable trips in selection", domain.ErrValidation)
	}

	sess := &session{id: uuid.New(), state: StateConfirming, set: set}
	s.sessions.mu.Lock()
	s.sessions.nextGen++
	sess.generation = s.sessions.nextGen
	s.sessions.sessions[sess.id] = sess
	originals := set.Originals()
	gen := sess.generation
	s.sessions.mu.Unlock()

	relatedEntries, err := s.finder.Find(ctx, originals)
	if err != nil {
		s.closeSession(sess.id)
		return SessionView{}, fmt.Errorf("service.ReviewService.OpenSession: %w", err)
	}

	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	cur, ok := s.sessions.sessions[sess.id]
	if !ok || cur.generation != gen {
		// Session was closed while the lookup was in flight; drop the batch.
		return SessionView{}, fmt.Errorf("service.ReviewService.OpenSession: %w", domain.ErrSessionClosed)
	}
	for _, e := range relatedEntries {
		cur.set.Add(e)
	}
	cur.state = StateReady
	cur.name = naming.Infer(cur.set.Entries())
	return viewOf(cur), nil
}

// GetSession returns the current snapshot of an open session.
func (s *ReviewService) GetSession(sessionID uuid.UUID) (SessionView, error) {
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	sess, ok := s.sessions.sessions[sessionID]
	if !ok {
		return SessionView{}, fmt.Errorf("service.ReviewService.GetSession: %w", domain.ErrNotFound)
	}
	return viewOf(sess), nil
}

// ToggleTrip adds the trip to the session's working set when absent and
// removes it when present. Removing the last trip closes the session.
// Newly added trips are fetched fresh from the backend and join as
// originals; the related lookup is not re-run (it fires once, on open).
func (s *ReviewService) ToggleTrip(ctx context.Context, sessionID uuid.UUID, tripID string) (SessionView, error) {
	s.sessions.mu.Lock()
	sess, ok := s.sessions.sessions[sessionID]
	if !ok {
		s.sessions.mu.Unlock()
		return SessionView{}, fmt.Errorf("service.ReviewService.ToggleTrip: %w", domain.ErrNotFound)
	}
	if sess.set.Contains(tripID) {
		sess.set.Toggle(domain.SelectedTripEntry{Trip: domain.PotentialTrip{ID: tripID}})
		view := s.refreshLocked(sess)
		s.sessions.mu.Unlock()
		return view, nil
	}
	s.sessions.mu.Unlock()

	// Adding: resolve the trip against the backend outside the lock.
	trips, err := s.fetchAnnotated(ctx)
	if err != nil {
		return SessionView{}, fmt.Errorf("service.ReviewService.ToggleTrip: %w", err)
	}
	var found *domain.PotentialTrip
	for i := range trips {
		if trips[i].ID == tripID {
			found = &trips[i]
			break
		}
	}
	if found == nil || len(found.Logs) == 0 {
		return SessionView{}, fmt.Errorf("service.ReviewService.ToggleTrip: trip %s: %w", tripID, domain.ErrNotFound)
	}

	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	sess, ok = s.sessions.sessions[sessionID]
	if !ok {
		return SessionView{}, fmt.Errorf("service.ReviewService.ToggleTrip: %w", domain.ErrSessionClosed)
	}
	sess.set.Add(domain.SelectedTripEntry{Kind: domain.EntryKindOriginal, Trip: *found})
	return s.refreshLocked(sess), nil
}

// RemoveLog removes one accommodation log from a trip in the session's
// working set. A trip left with zero logs is pruned; a working set left
// with zero trips closes the session, and the returned view says so.
func (s *ReviewService) RemoveLog(sessionID uuid.UUID, tripID, logID string) (SessionView, error) {
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	sess, ok := s.sessions.sessions[sessionID]
	if !ok {
		return SessionView{}, fmt.Errorf("service.ReviewService.RemoveLog: %w", domain.ErrNotFound)
	}
	if err := sess.set.RemoveLog(tripID, logID); err != nil {
		return SessionView{}, fmt.Errorf("service.ReviewService.RemoveLog: %w", err)
	}
	return s.refreshLocked(sess), nil
}

// CloseSession cancels the confirm flow and clears its selection.
func (s *ReviewService) CloseSession(sessionID uuid.UUID) error {
	if !s.closeSession(sessionID) {
		return fmt.Errorf("service.ReviewService.CloseSession: %w", domain.ErrNotFound)
	}
	return nil
}

// Confirm submits the session's merged log set to the backend as one trip.
// The name must be resolved (no template braces); nameOverride, when given,
// replaces the inferred proposal. On backend failure the session stays open
// in StateReady so the reviewer can retry without redoing the selection.
// Every attempt, accepted or failed, lands in the audit journal.
func (s *ReviewService) Confirm(ctx context.Context, sessionID uuid.UUID, nameOverride, updatedBy string) (domain.ConfirmResult, error) {
	if updatedBy == "" {
		return domain.ConfirmResult{}, fmt.Errorf("service.ReviewService.Confirm: %w: updated_by is required", domain.ErrValidation)
	}

	s.sessions.mu.Lock()
	sess, ok := s.sessions.sessions[sessionID]
	if !ok {
		s.sessions.mu.Unlock()
		return domain.ConfirmResult{}, fmt.Errorf("service.ReviewService.Confirm: %w", domain.ErrNotFound)
	}
	if sess.state != StateReady {
		s.sessions.mu.Unlock()
		return domain.ConfirmResult{}, fmt.Errorf("service.ReviewService.Confirm: %w: session is %s", domain.ErrValidation, sess.state)
	}
	name := sess.name
	if nameOverride != "" {
		name = nameOverride
	}
	if !naming.Resolved(name) {
		s.sessions.mu.Unlock()
		return domain.ConfirmResult{}, fmt.Errorf("service.ReviewService.Confirm: %w: trip name is not resolved", domain.ErrValidation)
	}
	sess.state = StateSubmitting
	payload := domain.ConfirmedTripPayload{
		TripName:            name,
		AccommodationLogIDs: sess.set.LogIDs(),
		UpdatedBy:           updatedBy,
	}
	s.sessions.mu.Unlock()

	result, err := s.backend.ConfirmTrip(ctx, payload)
	if err != nil {
		s.reopenAfterFailedSubmit(sessionID)
		s.journalConfirm(ctx, payload, domain.OutcomeFailed, err.Error())
		return domain.ConfirmResult{}, fmt.Errorf("service.ReviewService.Confirm: %w", err)
	}
	if result.Error != "" {
		s.reopenAfterFailedSubmit(sessionID)
		s.journalConfirm(ctx, payload, domain.OutcomeFailed, result.Error)
		return result, fmt.Errorf("service.ReviewService.Confirm: %w: %s", domain.ErrUpstream, result.Error)
	}

	s.journalConfirm(ctx, payload, domain.OutcomeAccepted, result.Message)
	s.closeSession(sessionID)
	return result, nil
}

// ---- internals -------------------------------------------------------------

// refreshLocked recomputes the proposed name after a set change, closing the
// session when the set has emptied. Caller holds the store mutex.
func (s *ReviewService) refreshLocked(sess *session) SessionView {
	if sess.set.Len() == 0 {
		delete(s.sessions.sessions, sess.id)
		return SessionView{ID: sess.id, State: sess.state, Entries: []domain.SelectedTripEntry{}, Closed: true}
	}
	sess.name = naming.Infer(sess.set.Entries())
	return viewOf(sess)
}

// closeSession removes the session and bumps its generation out from under
// any in-flight lookup. Returns false when the session was not open.
func (s *ReviewService) closeSession(sessionID uuid.UUID) bool {
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	sess, ok := s.sessions.sessions[sessionID]
	if !ok {
		return false
	}
	sess.generation = 0 // invalidate stale lookups
	sess.set.Clear()
	delete(s.sessions.sessions, sessionID)
	return true
}

// reopenAfterFailedSubmit puts the session back in StateReady, preserving
// the selection so the reviewer can retry.
func (s *ReviewService) reopenAfterFailedSubmit(sessionID uuid.UUID) {
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	if sess, ok := s.sessions.sessions[sessionID]; ok {
		sess.state = StateReady
	}
}

// journalConfirm best-effort records a confirm attempt. Journal failures are
// logged, never surfaced: losing an audit row must not break a review.
func (s *ReviewService) journalConfirm(ctx context.Context, payload domain.ConfirmedTripPayload, outcome, detail string) {
	_, err := s.journal.Insert(ctx, domain.ReviewEvent{
		Action:   "confirm",
		TripName: payload.TripName,
		LogCount: len(payload.AccommodationLogIDs),
		ActedBy:  payload.UpdatedBy,
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.log.WarnContext(ctx, "audit journal write failed", "error", err)
	}
}

func viewOf(sess *session) SessionView {
	return SessionView{
		ID:           sess.id,
		State:        sess.state,
		Entries:      sess.set.Entries(),
		ProposedName: sess.name,
		NameResolved: naming.Resolved(sess.name),
	}
}
