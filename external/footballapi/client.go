package footballapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday/internal/domain/rawdata"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	apiKeyHeader   = "x-apisports-key"
	sourceName     = "api-football"
	maxBodySize    = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`(?i)(x-apisports-key[=:]\s*)[^&\s"']+`)
var errProviderTransient = crerr.New("football api transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// RawPayloads archives every successful response when set.
	RawPayloads PayloadArchiver
}

// Quota is the provider's rate-limit view as of the last response.
type Quota struct {
	DailyLimit      int       `json:"dailyLimit"`
	DailyRemaining  int       `json:"dailyRemaining"`
	MinuteLimit     int       `json:"minuteLimit"`
	MinuteRemaining int       `json:"minuteRemaining"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PayloadArchiver stores raw provider responses.
type PayloadArchiver interface {
	UpsertMany(ctx context.Context, items []rawdata.Payload) error
}

// Client talks to API-Football v3. It does not pace requests; callers do.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Flight[[]byte]
	rawRepo    PayloadArchiver
	calls      atomic.Int64
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error

	quotaMu sync.RWMutex
	quota   Quota
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "matchday-ingest",
			MaxConnsPerHost:     32,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
			MaxResponseBodySize: maxBodySize,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := cfg.CircuitBreaker
	breakerCfg.IsFailure = isCircuitFailure

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(breakerCfg),
		rawRepo:    cfg.RawPayloads,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// APICalls is the number of HTTP requests sent since the client was built.
func (c *Client) APICalls() int64 {
	return c.calls.Load()
}

func (c *Client) Quota() Quota {
	c.quotaMu.RLock()
	defer c.quotaMu.RUnlock()
	return c.quota
}

// Snapshot reports the circuit breaker state for health checks.
func (c *Client) Snapshot() resilience.Snapshot {
	return c.breaker.Snapshot()
}

func (c *Client) GetFixtures(ctx context.Context, date time.Time, leagueRefID int64, season int) ([]usecase.ExternalFixture, error) {
	query := map[string]string{
		"date":   date.UTC().Format(time.DateOnly),
		"league": strconv.FormatInt(leagueRefID, 10),
		"season": strconv.Itoa(season),
	}
	var payload envelope[fixtureItem]
	if err := c.doJSON(ctx, "/fixtures", query, "fixtures", &payload); err != nil {
		return nil, err
	}
	return mapFixtures(payload.Response), nil
}

// GetLiveFixtures fetches in-play fixtures of every given league in one request.
func (c *Client) GetLiveFixtures(ctx context.Context, leagueRefIDs []int64) ([]usecase.ExternalFixture, error) {
	live := "all"
	if len(leagueRefIDs) > 0 {
		parts := make([]string, 0, len(leagueRefIDs))
		for _, id := range leagueRefIDs {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		live = strings.Join(parts, "-")
	}

	var payload envelope[fixtureItem]
	if err := c.doJSON(ctx, "/fixtures", map[string]string{"live": live}, "live_fixtures", &payload); err != nil {
		return nil, err
	}
	return mapFixtures(payload.Response), nil
}

func (c *Client) GetFixtureEvents(ctx context.Context, fixtureRefID int64) ([]usecase.ExternalEvent, error) {
	var payload envelope[eventItem]
	query := map[string]string{"fixture": strconv.FormatInt(fixtureRefID, 10)}
	if err := c.doJSON(ctx, "/fixtures/events", query, "fixture_events", &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalEvent, 0, len(payload.Response))
	for _, item := range payload.Response {
		out = append(out, usecase.ExternalEvent{
			FixtureExternalID: fixtureRefID,
			Elapsed:           item.Time.Elapsed,
			Extra:             item.Time.Extra,
			TeamExternalID:    item.Team.ID,
			TeamName:          item.Team.Name,
			PlayerExternalID:  derefInt64(item.Player.ID),
			PlayerName:        derefString(item.Player.Name),
			AssistName:        derefString(item.Assist.Name),
			Type:              item.Type,
			Detail:            item.Detail,
			Comments:          derefString(item.Comments),
		})
	}
	return out, nil
}

// GetFixtureStatistics never fails; a broken response yields no statistics.
func (c *Client) GetFixtureStatistics(ctx context.Context, fixtureRefID int64) []usecase.ExternalTeamStatistics {
	var payload envelope[statisticsItem]
	query := map[string]string{"fixture": strconv.FormatInt(fixtureRefID, 10)}
	if err := c.doJSON(ctx, "/fixtures/statistics", query, "fixture_statistics", &payload); err != nil {
		c.logger.WarnContext(ctx, "fetch fixture statistics failed", "fixture_ref_id", fixtureRefID, "error", err)
		return []usecase.ExternalTeamStatistics{}
	}

	out := make([]usecase.ExternalTeamStatistics, 0, len(payload.Response))
	for _, item := range payload.Response {
		stats := make([]usecase.ExternalStatistic, 0, len(item.Statistics))
		for _, stat := range item.Statistics {
			stats = append(stats, usecase.ExternalStatistic{Type: stat.Type, Value: stat.Value})
		}
		out = append(out, usecase.ExternalTeamStatistics{TeamExternalID: item.Team.ID, Statistics: stats})
	}
	return out
}

// GetFixtureLineups never fails; a broken response yields no lineups.
func (c *Client) GetFixtureLineups(ctx context.Context, fixtureRefID int64) []usecase.ExternalLineup {
	var payload envelope[lineupItem]
	query := map[string]string{"fixture": strconv.FormatInt(fixtureRefID, 10)}
	if err := c.doJSON(ctx, "/fixtures/lineups", query, "fixture_lineups", &payload); err != nil {
		c.logger.WarnContext(ctx, "fetch fixture lineups failed", "fixture_ref_id", fixtureRefID, "error", err)
		return []usecase.ExternalLineup{}
	}

	out := make([]usecase.ExternalLineup, 0, len(payload.Response))
	for _, item := range payload.Response {
		out = append(out, usecase.ExternalLineup{
			TeamExternalID: item.Team.ID,
			Formation:      item.Formation,
			Coach:          derefString(item.Coach.Name),
			StartXI:        mapLineupPlayers(item.StartXI),
			Substitutes:    mapLineupPlayers(item.Substitutes),
		})
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, entityType string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "football api circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, _, err := c.flight.Do(ctx, fullURL, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Record(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	if providerErr := envelopeError(target); providerErr != "" {
		return fmt.Errorf("provider rejected request %s: %s", path, sanitizeSensitiveText(providerErr, c.apiKey))
	}

	c.archive(ctx, entityType, path+"?"+values.Encode(), raw)
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status, raw, err := c.send(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = crerr.Mark(
				crerr.Wrapf(err, "send request (attempt %d)", attempt+1),
				errProviderTransient,
			)
		case status >= fasthttp.StatusOK && status < fasthttp.StatusMultipleChoices:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = crerr.Mark(
				crerr.Newf("provider status=%d body=%s", status, abbreviateBody(raw)),
				errProviderTransient,
			)
		default:
			return nil, fmt.Errorf("provider status=%d body=%s", status, sanitizeSensitiveText(abbreviateBody(raw), c.apiKey))
		}

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt+1)*time.Second); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football api request failed", "url", fullURL, "error", sanitizeSensitiveText(lastErr.Error(), c.apiKey))
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, fullURL string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	deadline := c.now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	c.calls.Add(1)
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}
	c.updateQuota(resp)

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func (c *Client) updateQuota(resp *fasthttp.Response) {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	setInt := func(dst *int, header string) {
		if raw := string(resp.Header.Peek(header)); raw != "" {
			if val, err := strconv.Atoi(raw); err == nil {
				*dst = val
			}
		}
	}
	setInt(&c.quota.DailyLimit, "x-ratelimit-requests-limit")
	setInt(&c.quota.DailyRemaining, "x-ratelimit-requests-remaining")
	setInt(&c.quota.MinuteLimit, "X-RateLimit-Limit")
	setInt(&c.quota.MinuteRemaining, "X-RateLimit-Remaining")
	c.quota.UpdatedAt = c.now().UTC()
}

// archive stores the raw response. Failures are logged and ignored.
func (c *Client) archive(ctx context.Context, entityType, entityKey string, raw []byte) {
	if c.rawRepo == nil {
		return
	}
	sum := sha256.Sum256(raw)
	item := rawdata.Payload{
		Source:      sourceName,
		EntityType:  entityType,
		EntityKey:   entityKey,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   c.now().UTC(),
	}
	if err := c.rawRepo.UpsertMany(ctx, []rawdata.Payload{item}); err != nil {
		c.logger.WarnContext(ctx, "archive provider payload failed", "entity_type", entityType, "error", err)
	}
}

func envelopeError(target any) string {
	var errs any
	switch v := target.(type) {
	case *envelope[fixtureItem]:
		errs = v.Errors
	case *envelope[eventItem]:
		errs = v.Errors
	case *envelope[statisticsItem]:
		errs = v.Errors
	case *envelope[lineupItem]:
		errs = v.Errors
	default:
		return ""
	}

	switch v := errs.(type) {
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		parts := make([]string, 0, len(v))
		for key, value := range v {
			parts = append(parts, fmt.Sprintf("%s=%v", key, value))
		}
		return strings.Join(parts, "; ")
	case []any:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprint(v...)
	default:
		return ""
	}
}

func mapFixtures(items []fixtureItem) []usecase.ExternalFixture {
	out := make([]usecase.ExternalFixture, 0, len(items))
	for _, item := range items {
		kickoff, ok := parseKickoff(item.Fixture)
		if !ok {
			continue
		}
		fixture := usecase.ExternalFixture{
			ExternalID: item.Fixture.ID,
			League: usecase.ExternalLeague{
				ExternalID: item.League.ID,
				Name:       item.League.Name,
				Country:    item.League.Country,
				Season:     item.League.Season,
			},
			HomeTeam:   usecase.ExternalTeam{ExternalID: item.Teams.Home.ID, Name: item.Teams.Home.Name, LogoURL: item.Teams.Home.Logo},
			AwayTeam:   usecase.ExternalTeam{ExternalID: item.Teams.Away.ID, Name: item.Teams.Away.Name, LogoURL: item.Teams.Away.Logo},
			KickoffAt:  kickoff,
			StatusCode: item.Fixture.Status.Short,
			Elapsed:    item.Fixture.Status.Elapsed,
			HomeGoals:  item.Goals.Home,
			AwayGoals:  item.Goals.Away,
		}
		if venueID := derefInt64(item.Fixture.Venue.ID); venueID > 0 {
			fixture.Venue = &usecase.ExternalVenue{
				ExternalID: venueID,
				Name:       derefString(item.Fixture.Venue.Name),
				City:       derefString(item.Fixture.Venue.City),
			}
		}
		out = append(out, fixture)
	}
	return out
}

func parseKickoff(info fixtureInfo) (time.Time, bool) {
	if raw := strings.TrimSpace(info.Date); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	if info.Timestamp > 0 {
		return time.Unix(info.Timestamp, 0).UTC(), true
	}
	return time.Time{}, false
}

func mapLineupPlayers(items []lineupEntry) []usecase.ExternalLineupPlayer {
	out := make([]usecase.ExternalLineupPlayer, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.ExternalLineupPlayer{
			ExternalID: item.Player.ID,
			Name:       item.Player.Name,
			Number:     item.Player.Number,
			Position:   item.Player.Pos,
		})
	}
	return out
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "${1}REDACTED")
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errProviderTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func derefInt64(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
