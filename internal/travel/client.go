// Package travel is the typed HTTP client for the travel-data backend.
// Every request carries the service's bearer token; every response is
// checked for the backend's credential-expiry marker before its payload is
// used. Calendar dates travel as YYYY-MM-DD strings (types.Date).
package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/safariops/tripdesk/internal/domain"
)

// credentialExpiryDetail is the exact body the backend sends on any endpoint
// when the bearer token is no longer valid. Expiry is signalled by payload
// shape, not HTTP status.
const credentialExpiryDetail = "Could not validate credentials"

// Client calls the travel-data backend over HTTPS.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a Client for the backend at baseURL. A trailing slash on
// baseURL is tolerated. The underlying http.Client carries a request
// timeout so a hung backend cannot pin a handler forever.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// RelatedTripsRequest identifies one selected trip for the related-trips
// lookup. The backend matches on name, destination and date range.
type RelatedTripsRequest struct {
	TripName        string             `json:"trip_name"`
	CoreDestination string             `json:"core_destination"`
	StartDate       openapi_types.Date `json:"start_date"`
	EndDate         openapi_types.Date `json:"end_date"`
}

// wireLog mirrors the backend's accommodation-log JSON, with calendar dates
// as YYYY-MM-DD strings.
type wireLog struct {
	ID                    string              `json:"id"`
	PrimaryTraveler       string              `json:"primary_traveler"`
	NumPax                domain.FlexInt      `json:"num_pax"`
	DateIn                *openapi_types.Date `json:"date_in"`
	DateOut               *openapi_types.Date `json:"date_out"`
	PropertyName          string              `json:"property_name"`
	CoreDestinationName   string              `json:"core_destination_name"`
	ConsultantDisplayName string              `json:"consultant_display_name"`
}

// wireTrip mirrors the backend's potential-trip JSON.
type wireTrip struct {
	ID              string              `json:"id"`
	TripName        string              `json:"trip_name"`
	ReviewStatus    string              `json:"review_status"`
	ReviewedBy      string              `json:"reviewed_by"`
	ReviewNotes     string              `json:"review_notes"`
	ReviewedAt      *time.Time          `json:"reviewed_at"`
	StartDate       *openapi_types.Date `json:"start_date"`
	CoreDestination string              `json:"core_destination"`
	Logs            []wireLog           `json:"accommodation_logs"`
}

// ListPotentialTrips fetches every backend-proposed trip grouping awaiting
// review. Returns domain.ErrSessionExpired when the token has lapsed and
// domain.ErrUpstream for transport or decode failures.
func (c *Client) ListPotentialTrips(ctx context.Context) ([]domain.PotentialTrip, error) {
	var wire []wireTrip
	if err := c.do(ctx, http.MethodGet, "/v1/potential_trips", nil, &wire); err != nil {
		return nil, fmt.Errorf("travel.Client.ListPotentialTrips: %w", err)
	}
	trips := make([]domain.PotentialTrip, len(wire))
	for i, w := range wire {
		trips[i] = w.toDomain()
	}
	return trips, nil
}

// Progress fetches the aggregate completion metrics. The payload is an
// opaque pass-through for the dashboard; this service does not interpret it.
func (c *Client) Progress(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/v1/progress", nil, &raw); err != nil {
		return nil, fmt.Errorf("travel.Client.Progress: %w", err)
	}
	return raw, nil
}

// RelatedTrips looks up potential trips the backend judges likely to belong
// to the same real-world trip as the one described by req.
func (c *Client) RelatedTrips(ctx context.Context, req RelatedTripsRequest) ([]domain.PotentialTrip, error) {
	var wire []wireTrip
	if err := c.do(ctx, http.MethodPost, "/v1/related_trips", req, &wire); err != nil {
		return nil, fmt.Errorf("travel.Client.RelatedTrips: %w", err)
	}
	trips := make([]domain.PotentialTrip, len(wire))
	for i, w := range wire {
		trips[i] = w.toDomain()
	}
	return trips, nil
}

// ConfirmTrip submits the merged log-id set and resolved name. This is the
// sole mutation the service sends to the backend.
func (c *Client) ConfirmTrip(ctx context.Context, payload domain.ConfirmedTripPayload) (domain.ConfirmResult, error) {
	var result domain.ConfirmResult
	if err := c.do(ctx, http.MethodPatch, "/v1/confirm_trip", payload, &result); err != nil {
		return domain.ConfirmResult{}, fmt.Errorf("travel.Client.ConfirmTrip: %w", err)
	}
	return result, nil
}

// do performs one JSON round-trip: marshal body (if any), send with bearer
// auth, check for the credential-expiry marker, then decode into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}

	// Credential expiry arrives as a detail payload, sometimes on a 200.
	// It must be checked before any decode so no partial result is used.
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &detail) == nil && detail.Detail == credentialExpiryDetail {
		return domain.ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", domain.ErrUpstream, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (w wireTrip) toDomain() domain.PotentialTrip {
	t := domain.PotentialTrip{
		ID:              w.ID,
		TripName:        w.TripName,
		ReviewStatus:    w.ReviewStatus,
		ReviewedBy:      w.ReviewedBy,
		ReviewNotes:     w.ReviewNotes,
		ReviewedAt:      w.ReviewedAt,
		CoreDestination: w.CoreDestination,
		Logs:            make([]domain.AccommodationLog, len(w.Logs)),
	}
	if w.StartDate != nil {
		t.StartDate = w.StartDate.Time
	}
	for i, l := range w.Logs {
		t.Logs[i] = l.toDomain()
	}
	return t
}

func (w wireLog) toDomain() domain.AccommodationLog {
	l := domain.AccommodationLog{
		ID:                    w.ID,
		PrimaryTraveler:       w.PrimaryTraveler,
		NumPax:                w.NumPax,
		PropertyName:          w.PropertyName,
		CoreDestinationName:   w.CoreDestinationName,
		ConsultantDisplayName: w.ConsultantDisplayName,
	}
	if w.DateIn != nil {
		l.DateIn = w.DateIn.Time
	}
	if w.DateOut != nil {
		l.DateOut = w.DateOut.Time
	}
	return l
}
