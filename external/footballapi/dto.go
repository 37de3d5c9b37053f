package footballapi

// envelope is the common API-Football response wrapper. Errors is either an empty
// array or an object keyed by parameter name.
type envelope[T any] struct {
	Get      string `json:"get"`
	Results  int    `json:"results"`
	Errors   any    `json:"errors"`
	Response []T    `json:"response"`
}

type fixtureItem struct {
	Fixture fixtureInfo  `json:"fixture"`
	League  leagueInfo   `json:"league"`
	Teams   fixtureTeams `json:"teams"`
	Goals   fixtureGoals `json:"goals"`
}

type fixtureInfo struct {
	ID        int64         `json:"id"`
	Referee   *string       `json:"referee"`
	Timezone  string        `json:"timezone"`
	Date      string        `json:"date"`
	Timestamp int64         `json:"timestamp"`
	Venue     venueInfo     `json:"venue"`
	Status    fixtureStatus `json:"status"`
}

type venueInfo struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	City *string `json:"city"`
}

type fixtureStatus struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
	Extra   *int   `json:"extra"`
}

type leagueInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

type fixtureTeams struct {
	Home teamInfo `json:"home"`
	Away teamInfo `json:"away"`
}

type teamInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Winner *bool  `json:"winner"`
}

type fixtureGoals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type eventItem struct {
	Time     eventTime  `json:"time"`
	Team     teamInfo   `json:"team"`
	Player   personInfo `json:"player"`
	Assist   personInfo `json:"assist"`
	Type     string     `json:"type"`
	Detail   string     `json:"detail"`
	Comments *string    `json:"comments"`
}

type eventTime struct {
	Elapsed int  `json:"elapsed"`
	Extra   *int `json:"extra"`
}

type personInfo struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

type statisticsItem struct {
	Team       teamInfo        `json:"team"`
	Statistics []statisticItem `json:"statistics"`
}

type statisticItem struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type lineupItem struct {
	Team        teamInfo      `json:"team"`
	Formation   string        `json:"formation"`
	Coach       personInfo    `json:"coach"`
	StartXI     []lineupEntry `json:"startXI"`
	Substitutes []lineupEntry `json:"substitutes"`
}

type lineupEntry struct {
	Player lineupPlayer `json:"player"`
}

type lineupPlayer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Pos    string `json:"pos"`
}
