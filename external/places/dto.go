package places

type searchResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

func (r searchResponse) apiStatus() string { return r.Status }

type placeResult struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Geometry         placeGeometry `json:"geometry"`
	Photos           []placePhoto  `json:"photos"`
	Types            []string      `json:"types"`
}

type placeGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type placePhoto struct {
	Reference string `json:"photo_reference"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type detailsResponse struct {
	Status string       `json:"status"`
	Result placeDetails `json:"result"`
}

func (r detailsResponse) apiStatus() string { return r.Status }

type placeDetails struct {
	EditorialSummary struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary"`
	FormattedAddress             string `json:"formatted_address"`
	WheelchairAccessibleEntrance *bool  `json:"wheelchair_accessible_entrance"`
	Website                      string `json:"website"`
}
