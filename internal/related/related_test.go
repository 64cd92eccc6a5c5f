package related_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safariops/tripdesk/internal/domain"
	"github.com/safariops/tripdesk/internal/related"
	"github.com/safariops/tripdesk/internal/travel"
)

// mockLookup is a test double for related.Lookup. Set the function field to
// control each test's backend behavior.
type mockLookup struct {
	relatedTrips func(ctx context.Context, req travel.RelatedTripsRequest) ([]domain.PotentialTrip, error)
	calls        atomic.Int32
}

func (m *mockLookup) RelatedTrips(ctx context.Context, req travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
	m.calls.Add(1)
	return m.relatedTrips(ctx, req)
}

var _ related.Lookup = (*mockLookup)(nil)

// ---- helpers ---------------------------------------------------------------

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func trip(id, name, destination string, in, out int) domain.PotentialTrip {
	return domain.PotentialTrip{
		ID:              id,
		TripName:        name,
		CoreDestination: destination,
		Logs: []domain.AccommodationLog{{
			ID:                  id + "-log",
			DateIn:              day(in),
			DateOut:             day(out),
			CoreDestinationName: destination,
		}},
	}
}

func original(t domain.PotentialTrip) domain.SelectedTripEntry {
	return domain.SelectedTripEntry{Kind: domain.EntryKindOriginal, Trip: t}
}

// ---- tests -----------------------------------------------------------------

func TestFind_TagsResultsAsRelated(t *testing.T) {
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			return []domain.PotentialTrip{trip("r1", "Jones x1, Kenya, June 2024", "Kenya", 2, 6)}, nil
		},
	}
	f := related.NewFinder(lookup, nil)

	got, err := f.Find(context.Background(), []domain.SelectedTripEntry{
		original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)),
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EntryKindRelated, got[0].Kind)
	assert.Equal(t, "r1", got[0].Trip.ID)
}

func TestFind_DropsCandidateMatchingOriginalClientID(t *testing.T) {
	// The lookup echoes back a record describing the same trip the reviewer
	// already selected (same name/destination/dates, different backend ID).
	echo := trip("echo", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			return []domain.PotentialTrip{echo}, nil
		},
	}
	f := related.NewFinder(lookup, nil)

	got, err := f.Find(context.Background(), []domain.SelectedTripEntry{
		original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)),
	})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_DeduplicatesAcrossLookups(t *testing.T) {
	// Both originals surface the same candidate: it must appear once.
	shared := trip("r1", "Jones x1, Kenya, June 2024", "Kenya", 2, 6)
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			return []domain.PotentialTrip{shared}, nil
		},
	}
	f := related.NewFinder(lookup, nil)

	got, err := f.Find(context.Background(), []domain.SelectedTripEntry{
		original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)),
		original(trip("o2", "Brown x4, Kenya, June 2024", "Kenya", 3, 9)),
	})

	require.NoError(t, err)
	assert.Equal(t, int32(2), lookup.calls.Load())
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].Trip.ID)
}

func TestFind_RepeatedRunProducesSameSingleEntry(t *testing.T) {
	shared := trip("r1", "Jones x1, Kenya, June 2024", "Kenya", 2, 6)
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			return []domain.PotentialTrip{shared}, nil
		},
	}
	f := related.NewFinder(lookup, nil)
	sel := []domain.SelectedTripEntry{original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5))}

	first, err := f.Find(context.Background(), sel)
	require.NoError(t, err)
	second, err := f.Find(context.Background(), sel)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ClientID(), second[0].ClientID())
}

func TestFind_PartialFailureOmitsOnlyThatLookup(t *testing.T) {
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, req travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			if req.CoreDestination == "Kenya" {
				return nil, errors.New("upstream timeout")
			}
			return []domain.PotentialTrip{trip("r1", "Diaz x2, Botswana, June 2024", "Botswana", 2, 6)}, nil
		},
	}
	f := related.NewFinder(lookup, nil)

	got, err := f.Find(context.Background(), []domain.SelectedTripEntry{
		original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)),
		original(trip("o2", "Diaz x2, Botswana, July 2024", "Botswana", 10, 14)),
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].Trip.ID)
}

func TestFind_CredentialExpiryAbortsBatch(t *testing.T) {
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			return nil, domain.ErrSessionExpired
		},
	}
	f := related.NewFinder(lookup, nil)

	_, err := f.Find(context.Background(), []domain.SelectedTripEntry{
		original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)),
	})

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestFind_ResultsAreValidated(t *testing.T) {
	// The candidate has an internal overlap; its logs must come back flagged.
	overlapping := domain.PotentialTrip{
		ID:              "r1",
		TripName:        "Jones x1, Kenya, June 2024",
		CoreDestination: "Kenya",
		Logs: []domain.AccommodationLog{
			{ID: "a", DateIn: day(1), DateOut: day(5)},
			{ID: "b", DateIn: day(3), DateOut: day(8)},
		},
	}
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			return []domain.PotentialTrip{overlapping}, nil
		},
	}
	f := related.NewFinder(lookup, nil)

	got, err := f.Find(context.Background(), []domain.SelectedTripEntry{
		original(trip("o1", "Smith x2, Kenya, June 2024", "Kenya", 1, 5)),
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Trip.TotalFlags)
}

func TestFind_NoOriginalsNoLookups(t *testing.T) {
	lookup := &mockLookup{
		relatedTrips: func(_ context.Context, _ travel.RelatedTripsRequest) ([]domain.PotentialTrip, error) {
			t.Fatal("lookup must not be called for an empty selection")
			return nil, nil
		},
	}
	f := related.NewFinder(lookup, nil)

	got, err := f.Find(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}
