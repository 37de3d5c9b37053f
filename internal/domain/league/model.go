package league

import (
	"fmt"
	"strings"
)

// League is a football competition tracked from the provider.
type League struct {
	ID          string
	Name        string
	Country     string
	Season      int
	LeagueRefID int64
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Season <= 0 {
		return fmt.Errorf("league season must be > 0")
	}
	if l.LeagueRefID <= 0 {
		return fmt.Errorf("league ref id must be > 0")
	}

	return nil
}

// Target is one configured league/season pair to ingest.
type Target struct {
	LeagueRefID int64
	Season      int
}
