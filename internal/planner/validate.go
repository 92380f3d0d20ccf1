package planner

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	minPlaceLen  = 2
	maxDays      = 365
	maxTravelers = 50
	minBudget    = 5000
	maxBudget    = 10000000
)

// FieldErrors maps request fields to a human readable problem. A non-empty
// FieldErrors means the request was rejected before anything was sent.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, fe[k])
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func checkPlace(fe FieldErrors, field, value, msg string) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < minPlaceLen {
		fe[field] = msg
	}
}

func checkRange(fe FieldErrors, field string, v, low, high int, lowMsg, highMsg string) {
	switch {
	case v < low:
		fe[field] = lowMsg
	case v > high:
		fe[field] = highMsg
	}
}

func (r BudgetRequest) Validate() error {
	fe := FieldErrors{}
	checkPlace(fe, "origin", r.Origin, "Please select or enter your starting location")
	checkPlace(fe, "destination", r.Destination, "Please select or enter your destination")
	checkRange(fe, "days", r.Days, 1, maxDays, "Duration must be at least 1 day", "Duration cannot exceed 365 days")
	checkRange(fe, "travelers", r.Travelers, 1, maxTravelers, "At least 1 traveler required", "Maximum 50 travelers")
	switch r.Transportation {
	case TransportPublic, TransportPersonal, TransportFlight:
	default:
		fe["transportation"] = "Please select a transportation mode"
	}
	switch r.Accommodation {
	case StayHostel, StayHotel, StayLuxury:
	default:
		fe["accommodation"] = "Please select an accommodation type"
	}
	return fe.orNil()
}

func (r TripRequest) Validate() error {
	fe := FieldErrors{}
	checkPlace(fe, "origin", r.Origin, "Please select or enter your starting location")
	checkPlace(fe, "destination", r.Destination, "Please select or enter your destination")
	checkRange(fe, "budget", r.Budget, minBudget, maxBudget, "Budget must be at least ₹5,000", "Budget cannot exceed ₹1,00,00,000")
	checkRange(fe, "travelers", r.Travelers, 1, maxTravelers, "At least 1 traveler required", "Maximum 50 travelers")
	checkRange(fe, "duration", r.Duration, 1, maxDays, "Duration must be at least 1 day", "Duration cannot exceed 365 days")
	switch r.TravelStyle {
	case StyleRelaxing, StyleAdventurous:
	default:
		fe["travel_style"] = "Please select a travel style"
	}
	return fe.orNil()
}

func (r MusicRequest) Validate() error {
	fe := FieldErrors{}
	if strings.TrimSpace(r.Genre) == "" {
		fe["genre"] = "Please select a music genre"
	}
	return fe.orNil()
}
