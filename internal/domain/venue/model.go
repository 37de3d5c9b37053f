package venue

import (
	"fmt"
	"strings"
)

// Venue is a stadium referenced by fixtures, created lazily on first sight.
type Venue struct {
	ID         string
	Name       string
	City       string
	Capacity   *int
	VenueRefID int64
}

func (v Venue) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("venue id is required")
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("venue name is required")
	}
	if v.Capacity != nil && *v.Capacity < 0 {
		return fmt.Errorf("venue capacity must be >= 0")
	}

	return nil
}
