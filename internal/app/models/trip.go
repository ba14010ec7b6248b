package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// MaxTripDays bounds the number of days a single itinerary may cover.
const MaxTripDays = 30

// DefaultTripDays is used when the duration tag is unknown.
const DefaultTripDays = 3

const (
	Duration1Day    = "1day"
	DurationWeekend = "weekend"
	DurationWeek    = "week"
	DurationCustom  = "custom"
)

var durationDays = map[string]int{
	Duration1Day:    1,
	DurationWeekend: 2,
	DurationWeek:    7,
}

// TripConfiguration is what the trip selector submits for generation.
type TripConfiguration struct {
	Destination string    `json:"destination"`
	Location    *Location `json:"location,omitempty"`
	Group       string    `json:"group"`
	Duration    string    `json:"duration"`
	CustomDays  int       `json:"customDays,omitempty"`
	Budget      string    `json:"budget"`
	Interests   []string  `json:"interests,omitempty"`
	Mood        string    `json:"mood,omitempty"`

	Accessibility []string `json:"accessibility,omitempty"`
	AgeGroups     []string `json:"ageGroups,omitempty"`
	Season        string   `json:"season,omitempty"`
	Experience    string   `json:"experience,omitempty"`
	Dietary       []string `json:"dietary,omitempty"`
	Pace          string   `json:"pace,omitempty"`
	Accommodation string   `json:"accommodation,omitempty"`
	Transport     []string `json:"transport,omitempty"`
	Tech          string   `json:"tech,omitempty"`

	// SubmittedAt is the date the traveller planned the trip. Zero leaves the
	// date out of the prompt.
	SubmittedAt time.Time `json:"submittedAt,omitzero"`
}

// DayCount is the authoritative number of days for prompts, fallbacks and
// the days-length check.
func (c TripConfiguration) DayCount() int {
	if c.Duration == DurationCustom && c.CustomDays > 0 {
		return c.CustomDays
	}
	if n, ok := durationDays[c.Duration]; ok {
		return n
	}
	return DefaultTripDays
}

// Validate rejects configurations generation cannot honour.
func (c TripConfiguration) Validate() error {
	if strings.TrimSpace(c.DestinationName()) == "" {
		return Errorf(KindValidation, "trip.Validate", "destination is required")
	}
	if c.Duration == DurationCustom && c.CustomDays < 1 {
		return Errorf(KindValidation, "trip.Validate", "custom duration needs a positive day count, got %d", c.CustomDays)
	}
	if n := c.DayCount(); n > MaxTripDays {
		return Errorf(KindValidation, "trip.Validate", "trip of %d days exceeds the %d day limit", n, MaxTripDays)
	}
	return nil
}

// DestinationName prefers the selected location's display name over the
// free-text destination.
func (c TripConfiguration) DestinationName() string {
	if c.Location != nil && c.Location.DisplayName != "" {
		return c.Location.DisplayName
	}
	return c.Destination
}

// Clone returns a deep copy so a submitted configuration cannot be mutated
// through the itinerary metadata.
func (c TripConfiguration) Clone() TripConfiguration {
	out := c
	if c.Location != nil {
		loc := *c.Location
		out.Location = &loc
	}
	out.Interests = slices.Clone(c.Interests)
	out.Accessibility = slices.Clone(c.Accessibility)
	out.AgeGroups = slices.Clone(c.AgeGroups)
	out.Dietary = slices.Clone(c.Dietary)
	out.Transport = slices.Clone(c.Transport)
	return out
}

func (c TripConfiguration) String() string {
	return fmt.Sprintf("%s (%d days, %s, %s)", c.DestinationName(), c.DayCount(), c.Group, c.Budget)
}
