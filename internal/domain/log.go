// Package domain contains the core data types for the tripdesk reconciliation
// service. This package has zero external dependencies beyond uuid and is
// imported by every other internal package (travel, validate, service, handler).
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexInt is an int that accepts both JSON numbers and numeric strings.
// The travel backend is inconsistent about num_pax: some records carry 2,
// others "2". Both must compare equal during validation, so the coercion
// happens once at decode time.
type FlexInt int

// UnmarshalJSON decodes a JSON number, a quoted number, null, or an empty
// string. Anything unparsable decodes to zero rather than failing the whole
// response; a single dirty record must not take down a page load.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}

// MarshalJSON always emits a plain JSON number.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// LogFlags marks the fields of an accommodation log that are inconsistent
// with the rest of its trip. Flags are derived on every load, never persisted.
//
// DateIn/DateOut are set when the log participates in a date gap or overlap
// with an adjacent log; the pair of flags is the same for both conditions
// (the per-trip DateIssues list records which condition fired).
type LogFlags struct {
	DateIn          bool `json:"date_in_flag"`
	DateOut         bool `json:"date_out_flag"`
	Consultant      bool `json:"consultant_flag"`
	CoreDestination bool `json:"core_destination_flag"`
	PrimaryTraveler bool `json:"primary_traveler_flag"`
	NumPax          bool `json:"num_pax_flag"`
}

// Count returns how many flags are set.
func (f LogFlags) Count() int {
	n := 0
	for _, b := range []bool{f.DateIn, f.DateOut, f.Consultant, f.CoreDestination, f.PrimaryTraveler, f.NumPax} {
		if b {
			n++
		}
	}
	return n
}

// Any reports whether at least one flag is set.
func (f LogFlags) Any() bool {
	return f.Count() > 0
}

// AccommodationLog is a single booking segment: one party at one property
// for one date range. Logs are created and owned by the travel backend;
// this service reads them and annotates flags transiently.
type AccommodationLog struct {
	ID                    string    `json:"id"`
	PrimaryTraveler       string    `json:"primary_traveler"`
	NumPax                FlexInt   `json:"num_pax"`
	DateIn                time.Time `json:"date_in"`
	DateOut               time.Time `json:"date_out"`
	PropertyName          string    `json:"property_name"`
	CoreDestinationName   string    `json:"core_destination_name"`
	ConsultantDisplayName string    `json:"consultant_display_name"`

	Flags LogFlags `json:"flags"`
}

// HasDateIn reports whether the log carries a usable check-in date.
// The backend occasionally ships logs with missing dates; those logs skip
// adjacency checks but still vote in field-majority checks.
func (l AccommodationLog) HasDateIn() bool { return !l.DateIn.IsZero() }

// HasDateOut reports whether the log carries a usable check-out date.
func (l AccommodationLog) HasDateOut() bool { return !l.DateOut.IsZero() }

// Nights returns the length of the stay in whole nights, or 0 when either
// date is missing.
func (l AccommodationLog) Nights() int {
	if !l.HasDateIn() || !l.HasDateOut() {
		return 0
	}
	return int(l.DateOut.Sub(l.DateIn).Hours() / 24)
}
