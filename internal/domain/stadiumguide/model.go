package stadiumguide

import "time"

type Section struct {
	Heading string   `json:"heading"`
	Body    string   `json:"body"`
	Items   []string `json:"items,omitempty"`
}

// Guide is enrichment-derived visitor content for one venue. It can be regenerated at any time.
type Guide struct {
	VenueID     string
	Title       string
	Sections    []Section
	Facilities  []string
	ImageURLs   []string
	Source      string
	GeneratedAt time.Time
}

const (
	SourcePlaces      = "places"
	SourcePlaceholder = "placeholder"
)

// PlaceInfo is what the enrichment source knows about a place.
type PlaceInfo struct {
	Overview    string
	Attractions []string
	Restaurants []string
	Facilities  []string
	Images      []string
}
