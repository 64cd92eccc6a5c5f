// Package related expands a reviewer's selection with backend-suggested
// trips that likely belong to the same real-world journey. One lookup is
// issued per selected trip, concurrently; individual lookup failures drop
// that lookup's contribution without failing the batch.
package related

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"golang.org/x/sync/errgroup"

	"github.com/safariops/tripdesk/internal/domain"
	"github.com/safariops/tripdesk/internal/travel"
	"github.com/safariops/tripdesk/internal/validate"
)

// Lookup is the one backend call the finder depends on. Defined here, in
// the consumer package, so tests can inject a stub without a live backend.
type Lookup interface {
	RelatedTrips(ctx context.Context, req travel.RelatedTripsRequest) ([]domain.PotentialTrip, error)
}

// Finder runs the related-trip expansion for a review session.
type Finder struct {
	lookup Lookup
	log    *slog.Logger
}

// NewFinder constructs a Finder. A nil logger falls back to slog.Default.
func NewFinder(lookup Lookup, log *slog.Logger) *Finder {
	if log == nil {
		log = slog.Default()
	}
	return &Finder{lookup: lookup, log: log}
}

// Find returns the related entries to merge into the selection, already
// deduplicated against the originals and against each other by clientID.
// Guarantees:
//   - no returned entry's clientID collides with an original or another
//     returned entry (at most one entry per clientID across the set),
//   - every returned trip has been run through the consistency validator,
//   - one failing lookup never fails the others (its results are omitted
//     and the failure is logged),
//   - a credential-expiry response aborts the whole batch.
//
// Result order is deterministic: originals' order, then each lookup's
// result order.
func (f *Finder) Find(ctx context.Context, originals []domain.SelectedTripEntry) ([]domain.SelectedTripEntry, error) {
	seen := make(map[string]struct{}, len(originals))
	for _, o := range originals {
		seen[o.ClientID()] = struct{}{}
	}

	results := make([][]domain.PotentialTrip, len(originals))
	g, gctx := errgroup.WithContext(ctx)
	for i, o := range originals {
		i, o := i, o
		g.Go(func() error {
			trips, err := f.lookup.RelatedTrips(gctx, lookupRequest(o.Trip))
			if err != nil {
				if errors.Is(err, domain.ErrSessionExpired) {
					return err
				}
				f.log.WarnContext(gctx, "related-trip lookup failed; omitting its results",
					"trip_id", o.Trip.ID, "error", err)
				return nil
			}
			results[i] = trips
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("related.Finder.Find: %w", err)
	}

	// Merge sequentially so dedup order does not depend on goroutine timing.
	var merged []domain.SelectedTripEntry
	for _, trips := range results {
		for _, trip := range trips {
			entry := domain.SelectedTripEntry{
				Kind: domain.EntryKindRelated,
				Trip: validate.Annotate(trip),
			}
			id := entry.ClientID()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, entry)
		}
	}
	return merged, nil
}

// lookupRequest builds the identifying fields the backend matches on.
func lookupRequest(t domain.PotentialTrip) travel.RelatedTripsRequest {
	return travel.RelatedTripsRequest{
		TripName:        t.DisplayName(),
		CoreDestination: t.CoreDestination,
		StartDate:       openapi_types.Date{Time: t.FirstDateIn()},
		EndDate:         openapi_types.Date{Time: t.LastDateOut()},
	}
}
