// Package selection holds the working set of trips a reviewer has marked
// for merging. The set is keyed by trip ID (not object identity) and keeps
// insertion order, so the confirm modal renders entries in the order the
// reviewer picked them.
package selection

import (
	"fmt"

	"github.com/safariops/tripdesk/internal/domain"
)

// Set is an ordered, ID-keyed collection of selection entries.
// It enforces two invariants:
//   - at most one entry per trip ID,
//   - no entry ever has zero accommodation logs (RemoveLog prunes).
//
// Set is not safe for concurrent use; the owning session serializes access.
type Set struct {
	order []string
	byID  map[string]*domain.SelectedTripEntry
}

// New returns an empty set.
func New() *Set {
	return &Set{byID: make(map[string]*domain.SelectedTripEntry)}
}

// Len returns the number of trips in the set.
func (s *Set) Len() int { return len(s.order) }

// Contains reports whether the trip ID is in the set.
func (s *Set) Contains(tripID string) bool {
	_, ok := s.byID[tripID]
	return ok
}

// Toggle adds the trip when absent and removes it when present.
// Returns true when the trip is in the set after the call.
func (s *Set) Toggle(entry domain.SelectedTripEntry) bool {
	if s.Contains(entry.Trip.ID) {
		s.remove(entry.Trip.ID)
		return false
	}
	s.insert(entry)
	return true
}

// Add inserts the trip if absent. Adding a trip that is already present is
// a no-op: membership stays at exactly one.
func (s *Set) Add(entry domain.SelectedTripEntry) {
	if s.Contains(entry.Trip.ID) {
		return
	}
	s.insert(entry)
}

// RemoveLog deletes one accommodation log from the named trip. When the
// trip's last log is removed the trip itself is dropped from the set.
// Returns domain.ErrNotFound when either the trip or the log is absent.
func (s *Set) RemoveLog(tripID, logID string) error {
	entry, ok := s.byID[tripID]
	if !ok {
		return fmt.Errorf("selection.Set.RemoveLog: trip %s: %w", tripID, domain.ErrNotFound)
	}
	logs := entry.Trip.Logs
	idx := -1
	for i, l := range logs {
		if l.ID == logID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("selection.Set.RemoveLog: log %s: %w", logID, domain.ErrNotFound)
	}
	entry.Trip.Logs = append(logs[:idx:idx], logs[idx+1:]...)
	if len(entry.Trip.Logs) == 0 {
		s.remove(tripID)
	}
	return nil
}

// Clear empties the set.
func (s *Set) Clear() {
	s.order = s.order[:0]
	for id := range s.byID {
		delete(s.byID, id)
	}
}

// Entries returns the entries in insertion order. Entries are deep copies
// (logs included); callers may not reach back into the set through them.
func (s *Set) Entries() []domain.SelectedTripEntry {
	out := make([]domain.SelectedTripEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneEntry(*s.byID[id]))
	}
	return out
}

// Originals returns only the reviewer-picked entries, in insertion order.
// Related entries discovered by lookup are excluded.
func (s *Set) Originals() []domain.SelectedTripEntry {
	var out []domain.SelectedTripEntry
	for _, id := range s.order {
		if e := s.byID[id]; e.Kind == domain.EntryKindOriginal {
			out = append(out, cloneEntry(*e))
		}
	}
	return out
}

// cloneEntry copies an entry along with its log slice so callers cannot
// alias the set's internal state.
func cloneEntry(e domain.SelectedTripEntry) domain.SelectedTripEntry {
	logs := make([]domain.AccommodationLog, len(e.Trip.Logs))
	copy(logs, e.Trip.Logs)
	e.Trip.Logs = logs
	return e
}

// LogIDs returns every accommodation-log ID across all entries, in entry
// order then log order. This is the id list the confirm payload carries.
func (s *Set) LogIDs() []string {
	var ids []string
	for _, id := range s.order {
		for _, l := range s.byID[id].Trip.Logs {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func (s *Set) insert(entry domain.SelectedTripEntry) {
	e := cloneEntry(entry)
	s.byID[e.Trip.ID] = &e
	s.order = append(s.order, e.Trip.ID)
}

func (s *Set) remove(tripID string) {
	delete(s.byID, tripID)
	for i, id := range s.order {
		if id == tripID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
