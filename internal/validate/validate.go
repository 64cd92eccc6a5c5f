// Package validate implements the consistency checks run over every
// potential trip before it is shown to a reviewer. It flags logs whose
// field values deviate from the trip's majority and logs involved in date
// gaps or overlaps with their neighbours.
//
// Annotate is a pure transform: it returns a new trip with fresh log copies
// and never mutates its input, so re-validating after an edit can never see
// flags left over from an earlier pass.
package validate

import (
	"sort"

	"github.com/safariops/tripdesk/internal/domain"
)

// Annotate returns a copy of trip whose logs carry consistency flags and
// whose TotalFlags/DateIssues fields are populated. The input is not
// modified. Trips with zero or one log come back flag-free (a single log
// is trivially its own majority and has no neighbours).
func Annotate(trip domain.PotentialTrip) domain.PotentialTrip {
	out := trip
	out.Logs = make([]domain.AccommodationLog, len(trip.Logs))
	copy(out.Logs, trip.Logs)
	out.DateIssues = nil
	out.TotalFlags = 0

	for i := range out.Logs {
		out.Logs[i].Flags = domain.LogFlags{}
	}

	// Order by check-in date so both the majority tie-break and the
	// adjacency walk are deterministic for identical input. Logs without a
	// date sort last, keyed by ID.
	sort.SliceStable(out.Logs, func(i, j int) bool {
		a, b := out.Logs[i], out.Logs[j]
		switch {
		case a.HasDateIn() && b.HasDateIn():
			if !a.DateIn.Equal(b.DateIn) {
				return a.DateIn.Before(b.DateIn)
			}
			return a.ID < b.ID
		case a.HasDateIn():
			return true
		case b.HasDateIn():
			return false
		default:
			return a.ID < b.ID
		}
	})

	flagFieldOutliers(out.Logs)
	out.DateIssues = flagDateBoundaries(out.Logs)

	for _, l := range out.Logs {
		out.TotalFlags += l.Flags.Count()
	}
	return out
}

// AnnotateAll maps Annotate over a slice of trips.
func AnnotateAll(trips []domain.PotentialTrip) []domain.PotentialTrip {
	out := make([]domain.PotentialTrip, len(trips))
	for i, t := range trips {
		out[i] = Annotate(t)
	}
	return out
}

// flagFieldOutliers sets the per-field flags on every log whose value
// differs from the trip's majority value for that field. num_pax is
// compared numerically (FlexInt coerces "2" and 2 to the same int at
// decode time, so plain equality here is already numeric).
func flagFieldOutliers(logs []domain.AccommodationLog) {
	if len(logs) < 2 {
		return
	}

	consultant := majority(logs, func(l domain.AccommodationLog) string { return l.ConsultantDisplayName })
	destination := majority(logs, func(l domain.AccommodationLog) string { return l.CoreDestinationName })
	traveler := majority(logs, func(l domain.AccommodationLog) string { return l.PrimaryTraveler })
	pax := majorityPax(logs)

	for i := range logs {
		l := &logs[i]
		if l.ConsultantDisplayName != consultant {
			l.Flags.Consultant = true
		}
		if l.CoreDestinationName != destination {
			l.Flags.CoreDestination = true
		}
		if l.PrimaryTraveler != traveler {
			l.Flags.PrimaryTraveler = true
		}
		if int(l.NumPax) != pax {
			l.Flags.NumPax = true
		}
	}
}

// majority returns the most frequent value of field across the logs.
// Ties break to the value that reached the winning count first in log
// order, which is stable because the caller has already sorted the logs.
func majority(logs []domain.AccommodationLog, field func(domain.AccommodationLog) string) string {
	counts := make(map[string]int, len(logs))
	best := ""
	bestCount := 0
	for _, l := range logs {
		v := field(l)
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// majorityPax is the numeric counterpart of majority for num_pax.
func majorityPax(logs []domain.AccommodationLog) int {
	counts := make(map[int]int, len(logs))
	best := 0
	bestCount := 0
	for _, l := range logs {
		v := int(l.NumPax)
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// flagDateBoundaries walks adjacent log pairs in date order and flags both
// sides of every gap or overlap. A boundary where either log is missing the
// relevant date is skipped entirely. Exact contiguity (check-out equals the
// next check-in) is the expected shape and sets nothing.
func flagDateBoundaries(logs []domain.AccommodationLog) []domain.DateIssue {
	var issues []domain.DateIssue
	for i := 0; i+1 < len(logs); i++ {
		cur, next := &logs[i], &logs[i+1]
		if !cur.HasDateOut() || !next.HasDateIn() {
			continue
		}
		var kind string
		switch {
		case cur.DateOut.After(next.DateIn):
			kind = "overlap"
		case next.DateIn.After(cur.DateOut):
			kind = "gap"
		default:
			continue
		}
		cur.Flags.DateOut = true
		next.Flags.DateIn = true
		issues = append(issues, domain.DateIssue{
			Kind:        kind,
			FirstLogID:  cur.ID,
			SecondLogID: next.ID,
		})
	}
	return issues
}
