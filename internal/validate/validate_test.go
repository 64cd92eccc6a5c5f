package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safariops/tripdesk/internal/domain"
	"github.com/safariops/tripdesk/internal/validate"
)

// ---- helpers ---------------------------------------------------------------

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

// stay builds a log with sensible defaults; tests override what they care about.
func stay(id string, in, out int) domain.AccommodationLog {
	return domain.AccommodationLog{
		ID:                    id,
		PrimaryTraveler:       "Marie Smith",
		NumPax:                2,
		DateIn:                day(in),
		DateOut:               day(out),
		PropertyName:          "Mara Plains Camp",
		CoreDestinationName:   "Kenya",
		ConsultantDisplayName: "A. Okafor",
	}
}

func tripOf(logs ...domain.AccommodationLog) domain.PotentialTrip {
	return domain.PotentialTrip{
		ID:              "pt-1",
		TripName:        "Smith x2, Kenya, June 2024",
		CoreDestination: "Kenya",
		Logs:            logs,
	}
}

func logByID(t *testing.T, trip domain.PotentialTrip, id string) domain.AccommodationLog {
	t.Helper()
	for _, l := range trip.Logs {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("log %q not found in annotated trip", id)
	return domain.AccommodationLog{}
}

// ---- field majority --------------------------------------------------------

func TestAnnotate_ConsultantOutlierFlagged(t *testing.T) {
	a := stay("a", 1, 3)
	b := stay("b", 3, 5)
	c := stay("c", 5, 7)
	d := stay("d", 7, 9)
	d.ConsultantDisplayName = "B. Ndlovu"

	got := validate.Annotate(tripOf(a, b, c, d))

	assert.False(t, logByID(t, got, "a").Flags.Consultant)
	assert.False(t, logByID(t, got, "b").Flags.Consultant)
	assert.False(t, logByID(t, got, "c").Flags.Consultant)
	assert.True(t, logByID(t, got, "d").Flags.Consultant)
	assert.Equal(t, 1, got.TotalFlags)
}

func TestAnnotate_SingleLogNeverFlagged(t *testing.T) {
	got := validate.Annotate(tripOf(stay("a", 1, 5)))

	assert.Equal(t, 0, got.TotalFlags)
	assert.False(t, got.Logs[0].Flags.Any())
}

func TestAnnotate_MajorityTieBreaksToFirstSeen(t *testing.T) {
	a := stay("a", 1, 3) // Kenya
	b := stay("b", 3, 5)
	b.CoreDestinationName = "Tanzania"

	got := validate.Annotate(tripOf(a, b))

	// 1-1 tie: the first value in date order wins, so only "b" is flagged.
	assert.False(t, logByID(t, got, "a").Flags.CoreDestination)
	assert.True(t, logByID(t, got, "b").Flags.CoreDestination)
}

func TestAnnotate_TravelerOutlierFlagged(t *testing.T) {
	a := stay("a", 1, 3)
	b := stay("b", 3, 5)
	c := stay("c", 5, 7)
	c.PrimaryTraveler = "John Carter"

	got := validate.Annotate(tripOf(a, b, c))

	assert.True(t, logByID(t, got, "c").Flags.PrimaryTraveler)
	assert.False(t, logByID(t, got, "a").Flags.PrimaryTraveler)
}

func TestAnnotate_NumPaxStringAndNumberCompareEqual(t *testing.T) {
	// FlexInt has already coerced "2" to 2 at decode time; verify a trip
	// mixing both spellings produces no pax flags.
	a := stay("a", 1, 3)
	b := stay("b", 3, 5)
	a.NumPax = 2
	b.NumPax = 2 // decoded from "2"

	got := validate.Annotate(tripOf(a, b))

	assert.False(t, logByID(t, got, "a").Flags.NumPax)
	assert.False(t, logByID(t, got, "b").Flags.NumPax)
}

func TestAnnotate_NumPaxOutlierFlagged(t *testing.T) {
	a := stay("a", 1, 3)
	b := stay("b", 3, 5)
	c := stay("c", 5, 7)
	c.NumPax = 4

	got := validate.Annotate(tripOf(a, b, c))

	assert.True(t, logByID(t, got, "c").Flags.NumPax)
	assert.False(t, logByID(t, got, "a").Flags.NumPax)
}

// ---- date boundaries -------------------------------------------------------

func TestAnnotate_OverlapFlagsBothSides(t *testing.T) {
	a := stay("a", 1, 5)
	b := stay("b", 3, 8)

	got := validate.Annotate(tripOf(a, b))

	assert.True(t, logByID(t, got, "a").Flags.DateOut)
	assert.True(t, logByID(t, got, "b").Flags.DateIn)
	require.Len(t, got.DateIssues, 1)
	assert.Equal(t, "overlap", got.DateIssues[0].Kind)
	assert.Equal(t, "a", got.DateIssues[0].FirstLogID)
	assert.Equal(t, "b", got.DateIssues[0].SecondLogID)
}

func TestAnnotate_GapFlagsBothSides(t *testing.T) {
	a := stay("a", 1, 5)
	b := stay("b", 10, 12)

	got := validate.Annotate(tripOf(a, b))

	assert.True(t, logByID(t, got, "a").Flags.DateOut)
	assert.True(t, logByID(t, got, "b").Flags.DateIn)
	require.Len(t, got.DateIssues, 1)
	assert.Equal(t, "gap", got.DateIssues[0].Kind)
}

func TestAnnotate_ContiguousStaysNotFlagged(t *testing.T) {
	a := stay("a", 1, 5)
	b := stay("b", 5, 8)
	c := stay("c", 8, 12)

	got := validate.Annotate(tripOf(a, b, c))

	assert.Equal(t, 0, got.TotalFlags)
	assert.Empty(t, got.DateIssues)
}

func TestAnnotate_MissingDateSkipsBoundaryButVotes(t *testing.T) {
	a := stay("a", 1, 5)
	b := stay("b", 5, 8)
	b.DateIn = time.Time{}
	b.DateOut = time.Time{}
	b.ConsultantDisplayName = "B. Ndlovu"
	c := stay("c", 8, 12)

	got := validate.Annotate(tripOf(a, b, c))

	// No date flags anywhere: both boundaries touching "b" are skipped.
	for _, l := range got.Logs {
		assert.False(t, l.Flags.DateIn, "log %s", l.ID)
		assert.False(t, l.Flags.DateOut, "log %s", l.ID)
	}
	// But "b" still participates in field-majority checks.
	assert.True(t, logByID(t, got, "b").Flags.Consultant)
}

func TestAnnotate_LogsSortedByDateInBeforePairing(t *testing.T) {
	// Input arrives out of order; the walk must pair a-b, not b-a.
	b := stay("b", 5, 8)
	a := stay("a", 1, 5)

	got := validate.Annotate(tripOf(b, a))

	require.Len(t, got.Logs, 2)
	assert.Equal(t, "a", got.Logs[0].ID)
	assert.Equal(t, "b", got.Logs[1].ID)
	assert.Equal(t, 0, got.TotalFlags)
}

// ---- purity ----------------------------------------------------------------

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	a := stay("a", 1, 5)
	b := stay("b", 3, 8) // overlap with a
	in := tripOf(a, b)

	_ = validate.Annotate(in)

	assert.False(t, in.Logs[0].Flags.Any(), "input logs must stay untouched")
	assert.False(t, in.Logs[1].Flags.Any(), "input logs must stay untouched")
	assert.Equal(t, 0, in.TotalFlags)
}

func TestAnnotate_RevalidationStartsClean(t *testing.T) {
	a := stay("a", 1, 5)
	b := stay("b", 3, 8)
	first := validate.Annotate(tripOf(a, b))
	require.Equal(t, 2, first.TotalFlags)

	// Fix the overlap on the annotated copy and validate again: the stale
	// flags must not survive.
	for i := range first.Logs {
		if first.Logs[i].ID == "b" {
			first.Logs[i].DateIn = day(5)
		}
	}
	second := validate.Annotate(first)

	assert.Equal(t, 0, second.TotalFlags)
	assert.Empty(t, second.DateIssues)
}
