package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// openSessionRequest starts a confirm flow over the selected trips.
type openSessionRequest struct {
	TripIDs []string `json:"trip_ids"`
}

// confirmRequest submits a session. TripName is optional: when empty the
// session's inferred proposal is used.
type confirmRequest struct {
	TripName  string `json:"trip_name"`
	UpdatedBy string `json:"updated_by"`
}

// OpenSession handles POST /v1/review/sessions.
// Opening a session runs the related-trip lookup; the response is the
// expanded working set with a proposed name.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, "request body must be JSON with a trip_ids array")
		return
	}

	view, err := s.review.OpenSession(r.Context(), req.TripIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /v1/review/sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeRequestError(w, "session id must be a UUID")
		return
	}

	view, err := s.review.GetSession(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CloseSession handles DELETE /v1/review/sessions/{sessionID}.
// Closing cancels the confirm flow and clears its selection.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeRequestError(w, "session id must be a UUID")
		return
	}

	if err := s.review.CloseSession(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTrip handles POST /v1/review/sessions/{sessionID}/trips/{tripID}.
// Adds the trip to the working set when absent, removes it when present.
// The response view's closed field is true when removing the last trip
// ended the session.
func (s *Server) ToggleTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeRequestError(w, "session id must be a UUID")
		return
	}

	view, err := s.review.ToggleTrip(r.Context(), id, chi.URLParam(r, "tripID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveLog handles
// DELETE /v1/review/sessions/{sessionID}/trips/{tripID}/logs/{logID}.
// A trip left without logs is pruned; a session left without trips closes
// (signalled by the view's closed field).
func (s *Server) RemoveLog(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeRequestError(w, "session id must be a UUID")
		return
	}

	view, err := s.review.RemoveLog(id, chi.URLParam(r, "tripID"), chi.URLParam(r, "logID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ConfirmSession handles POST /v1/review/sessions/{sessionID}/confirm.
// On success the merged trip has been accepted by the travel backend and
// the session is gone. On failure the session survives for retry.
func (s *Server) ConfirmSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeRequestError(w, "session id must be a UUID")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, "request body must be JSON")
		return
	}

	result, err := s.review.Confirm(r.Context(), id, req.TripName, req.UpdatedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
