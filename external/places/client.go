package places

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL   = "https://maps.googleapis.com"
	nearbyRadius     = "1500"
	maxNearbyResults = 5
	maxImages        = 4
)

var errPlacesTransient = crerr.New("places transient failure")

type ClientConfig struct {
	HTTPClient *fasthttp.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	CacheSize  int
	Logger     *logging.Logger
}

// Client looks stadiums up in a Places-style text search API and collects nearby
// attractions and restaurants around the match.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	cache      *placeCache
	flight     resilience.Flight[*stadiumguide.PlaceInfo]
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "matchday-places",
			MaxConnsPerHost:     8,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		cache:      newPlaceCache(cfg.CacheTTL, cacheSize),
		logger:     logger,
	}
}

// FindPlaceInfo returns nil without error when the place is unknown.
func (c *Client) FindPlaceInfo(ctx context.Context, name, city string) (*stadiumguide.PlaceInfo, error) {
	query := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(city))
	if query == "" {
		return nil, nil
	}
	key := strings.ToLower(query)
	if info, ok := c.cache.Get(key); ok {
		return info, nil
	}

	info, _, err := c.flight.Do(ctx, key, func() (*stadiumguide.PlaceInfo, error) {
		return c.lookup(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, info)
	return info, nil
}

func (c *Client) lookup(ctx context.Context, query string) (*stadiumguide.PlaceInfo, error) {
	var search searchResponse
	if err := c.getJSON(ctx, "/maps/api/place/textsearch/json", url.Values{
		"query": {query},
		"type":  {"stadium"},
	}, &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, nil
	}
	place := search.Results[0]

	info := &stadiumguide.PlaceInfo{
		Facilities: facilitiesFromTypes(place.Types),
		Images:     c.photoURLs(place.Photos),
	}

	var details detailsResponse
	if err := c.getJSON(ctx, "/maps/api/place/details/json", url.Values{
		"place_id": {place.PlaceID},
		"fields":   {"editorial_summary,formatted_address,wheelchair_accessible_entrance,website"},
	}, &details); err != nil {
		c.logger.WarnContext(ctx, "places details lookup failed", "place_id", place.PlaceID, "error", err)
	} else {
		info.Overview = strings.TrimSpace(details.Result.EditorialSummary.Overview)
		if details.Result.WheelchairAccessibleEntrance != nil && *details.Result.WheelchairAccessibleEntrance {
			info.Facilities = appendUnique(info.Facilities, "Wheelchair accessible entrance")
		}
	}
	if info.Overview == "" {
		info.Overview = strings.TrimSpace(place.FormattedAddress)
	}

	location := fmt.Sprintf("%f,%f", place.Geometry.Location.Lat, place.Geometry.Location.Lng)
	info.Attractions = c.nearbyNames(ctx, location, "tourist_attraction")
	info.Restaurants = c.nearbyNames(ctx, location, "restaurant")
	return info, nil
}

func (c *Client) nearbyNames(ctx context.Context, location, placeType string) []string {
	var nearby searchResponse
	if err := c.getJSON(ctx, "/maps/api/place/nearbysearch/json", url.Values{
		"location": {location},
		"radius":   {nearbyRadius},
		"type":     {placeType},
	}, &nearby); err != nil {
		c.logger.WarnContext(ctx, "places nearby lookup failed", "type", placeType, "error", err)
		return nil
	}

	out := make([]string, 0, maxNearbyResults)
	for _, item := range nearby.Results {
		if len(out) == maxNearbyResults {
			break
		}
		if name := strings.TrimSpace(item.Name); name != "" {
			out = appendUnique(out, name)
		}
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	query.Set("key", c.apiKey)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path + "?" + query.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "places request %s", path), errPlacesTransient)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return crerr.Newf("places request %s status=%d", path, status)
	}

	if err := sonic.Unmarshal(resp.Body(), target); err != nil {
		return crerr.Wrap(err, "decode places payload")
	}
	if status, ok := target.(interface{ apiStatus() string }); ok {
		switch code := status.apiStatus(); code {
		case "OK", "ZERO_RESULTS":
		default:
			return crerr.Newf("places request %s status=%s", path, code)
		}
	}
	return nil
}

// photoURLs omits the API key; clients fetch photos through their own proxy.
func (c *Client) photoURLs(photos []placePhoto) []string {
	out := make([]string, 0, min(len(photos), maxImages))
	for _, photo := range photos {
		if len(out) == maxImages {
			break
		}
		ref := strings.TrimSpace(photo.Reference)
		if ref == "" {
			continue
		}
		out = append(out, c.baseURL+"/maps/api/place/photo?maxwidth=1200&photo_reference="+url.QueryEscape(ref))
	}
	return out
}

func facilitiesFromTypes(types []string) []string {
	labels := map[string]string{
		"parking":           "Parking",
		"transit_station":   "Public transport nearby",
		"atm":               "ATM",
		"store":             "Club shop",
		"food":              "Food and drink",
		"point_of_interest": "Visitor attraction",
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		if label, ok := labels[t]; ok {
			out = appendUnique(out, label)
		}
	}
	return out
}

func appendUnique(items []string, value string) []string {
	for _, item := range items {
		if strings.EqualFold(item, value) {
			return items
		}
	}
	return append(items, value)
}
