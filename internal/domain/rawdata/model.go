package rawdata

import "time"

// Payload is one archived provider response, deduplicated by hash.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	LeagueID    string
	MatchID     string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
