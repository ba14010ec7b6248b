package models

// PlaceType is the coarse settlement class of a search result.
type PlaceType string

const (
	PlaceCity    PlaceType = "city"
	PlaceTown    PlaceType = "town"
	PlaceVillage PlaceType = "village"
	PlaceOther   PlaceType = "other"
)

// Rank orders place types for display: cities first, everything unknown last.
func (p PlaceType) Rank() int {
	switch p {
	case PlaceCity:
		return 1
	case PlaceTown:
		return 2
	case PlaceVillage:
		return 3
	default:
		return 99
	}
}

// ParsePlaceType maps a provider place type to the enum. An empty type is
// treated as a city.
func ParsePlaceType(s string) PlaceType {
	switch s {
	case "", "city":
		return PlaceCity
	case "town":
		return PlaceTown
	case "village":
		return PlaceVillage
	default:
		return PlaceOther
	}
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a normalized geocoding search result.
type Location struct {
	ID               string      `json:"id"`
	DisplayName      string      `json:"displayName"`
	City             string      `json:"city,omitempty"`
	Country          string      `json:"country,omitempty"`
	CountryCode      string      `json:"countryCode,omitempty"`
	State            string      `json:"state,omitempty"`
	Coordinates      Coordinates `json:"coordinates"`
	ImportanceScore  float64     `json:"importanceScore"`
	PlaceType        PlaceType   `json:"placeType"`
	FormattedAddress string      `json:"formatted,omitempty"`
}
