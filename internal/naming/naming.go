// Package naming derives a proposed trip name from the names of the trips a
// reviewer is about to merge. Confirmed trips follow the house convention
// "{Surname/s} x{pax}, {destination}, {month year}", e.g.
// "Smith x2, Kenya, June 2024".
package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/safariops/tripdesk/internal/domain"
)

// Placeholder is returned when no name can be inferred and the reviewer must
// type one. Callers must block submission while the working name still
// contains '{' or is empty.
const Placeholder = "{Last Name/s} x{Num Pax}, {Destination}, {Month} {Year}"

// namePattern matches the canonical confirmed-trip name. Group sizes are
// intentionally loose: surnames may contain spaces and slashes
// ("Smith/Jones"), destinations may contain spaces ("South Africa").
var namePattern = regexp.MustCompile(`^(.+?) x(\d+), (.+), (.+)$`)

// parsedName is one selection entry's name broken into its components,
// paired with the travelers behind it so same-surname groups can be told
// apart from the same party selected twice.
type parsedName struct {
	title       string
	size        int
	destination string
	date        string
	travelers   []string
}

// Infer proposes a name for the merged trip the entries describe. Entries
// whose names do not match the house pattern are ignored for naming (they
// stay in the selection). When nothing matches, or the matched entries
// disagree on destination or date, the literal Placeholder is returned.
// Infer never fails; it always returns a usable or placeholder string.
func Infer(entries []domain.SelectedTripEntry) string {
	parsed := make([]parsedName, 0, len(entries))
	for _, e := range entries {
		p, ok := parse(e)
		if !ok {
			continue
		}
		parsed = append(parsed, p)
	}
	if len(parsed) == 0 {
		return Placeholder
	}

	destinations := distinct(parsed, func(p parsedName) string { return p.destination })
	dates := distinct(parsed, func(p parsedName) string { return p.date })
	if len(destinations) > 1 || len(dates) > 1 {
		return Placeholder
	}

	names, total := mergeParties(parsed)
	return fmt.Sprintf("%s x%d, %s, %s", strings.Join(names, "/"), total, destinations[0], dates[0])
}

// distinct returns the unique values of key over parsed, in first-seen order.
func distinct(parsed []parsedName, key func(parsedName) string) []string {
	seen := make(map[string]struct{}, len(parsed))
	var out []string
	for _, p := range parsed {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// parse splits an entry's trip name into its components and captures the
// entry's traveler list.
func parse(e domain.SelectedTripEntry) (parsedName, bool) {
	m := namePattern.FindStringSubmatch(e.Trip.TripName)
	if m == nil {
		return parsedName{}, false
	}
	size, err := strconv.Atoi(m[2])
	if err != nil {
		return parsedName{}, false
	}
	return parsedName{
		title:       m[1],
		size:        size,
		destination: m[3],
		date:        m[4],
		travelers:   travelerList(e.Trip),
	}, true
}

// travelerList collects the distinct primary travelers across the trip's
// logs, sorted, so two entries can be compared for "same party".
func travelerList(t domain.PotentialTrip) []string {
	seen := make(map[string]struct{}, len(t.Logs))
	var out []string
	for _, l := range t.Logs {
		name := strings.TrimSpace(l.PrimaryTraveler)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// mergeParties groups the parsed names by surname, in first-seen order.
// Two entries with the same surname are the same party when their traveler
// lists are identical: count them once. Differing traveler lists mean two
// parties who happen to share a surname: their sizes add.
func mergeParties(parsed []parsedName) (names []string, total int) {
	type party struct {
		size      int
		travelers [][]string
	}
	order := make([]string, 0, len(parsed))
	parties := make(map[string]*party, len(parsed))

	for _, p := range parsed {
		g, ok := parties[p.title]
		if !ok {
			parties[p.title] = &party{size: p.size, travelers: [][]string{p.travelers}}
			order = append(order, p.title)
			continue
		}
		if hasTravelers(g.travelers, p.travelers) {
			// Same party seen again (e.g. original + its related twin).
			continue
		}
		g.size += p.size
		g.travelers = append(g.travelers, p.travelers)
	}

	for _, title := range order {
		names = append(names, title)
		total += parties[title].size
	}
	return names, total
}

// hasTravelers reports whether lists already contains an identical
// traveler-name list. Both sides are sorted by travelerList.
func hasTravelers(lists [][]string, candidate []string) bool {
	for _, l := range lists {
		if equalStrings(l, candidate) {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Resolved reports whether name is ready to submit: non-empty and free of
// template braces.
func Resolved(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.Contains(name, "{")
}
