package handler

import (
	"net/http"
	"strconv"

	"github.com/safariops/tripdesk/internal/domain"
)

// ListTrips handles GET /v1/review/trips.
// Query parameters: region, year, issues (true/false), status
// (pending|flagged|validated), q (case-sensitive substring), sort
// (latest|oldest|shortest|longest), page, limit.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	q, err := tripQueryFromRequest(r)
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	page, err := s.review.ListPotentialTrips(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProgress handles GET /v1/review/progress. The body is the backend's
// metrics payload passed through unchanged.
func (s *Server) GetProgress(w http.ResponseWriter, r *http.Request) {
	raw, err := s.review.Progress(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// eventsResponse is the paginated audit-journal listing.
type eventsResponse struct {
	Data       []domain.ReviewEvent `json:"data"`
	Pagination pagination           `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListEvents handles GET /v1/review/events.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(intQuery(r, "page"), intQuery(r, "limit"))

	events, total, err := s.review.ListEvents(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Data: events,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// tripQueryFromRequest parses the listing's filter/sort/search/pagination
// query parameters.
func tripQueryFromRequest(r *http.Request) (domain.TripQuery, error) {
	q := domain.TripQuery{
		Region: r.URL.Query().Get("region"),
		Search: r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
		Sort:   r.URL.Query().Get("sort"),
		Page:   domain.NewPaginationParams(intQuery(r, "page"), intQuery(r, "limit")),
	}

	if y := r.URL.Query().Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return domain.TripQuery{}, errInvalidParam("year")
		}
		q.Year = year
	}
	if v := r.URL.Query().Get("issues"); v != "" {
		issues, err := strconv.ParseBool(v)
		if err != nil {
			return domain.TripQuery{}, errInvalidParam("issues")
		}
		q.OnlyIssues = issues
	}
	return q, nil
}

// intQuery parses an optional integer query parameter; malformed values are
// treated as absent (pagination falls back to defaults).
func intQuery(r *http.Request, name string) *int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

type paramError string

func (e paramError) Error() string { return "invalid query parameter: " + string(e) }

func errInvalidParam(name string) error { return paramError(name) }
