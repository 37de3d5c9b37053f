package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchday/internal/domain/follow"
	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// UserNotifier delivers one message to every active device of the given users.
type UserNotifier interface {
	DispatchToUsers(ctx context.Context, userIDs []string, msg notification.Message) (DispatchMetrics, error)
}

type FollowConfig struct {
	MaxTeams        int
	MaxLeagues      int
	MaxMatches      int
	FanoutBatchSize int
	FanoutWorkers   int
}

func (c FollowConfig) limitFor(entityType follow.EntityType) int {
	switch entityType {
	case follow.EntityTeam:
		return c.MaxTeams
	case follow.EntityLeague:
		return c.MaxLeagues
	case follow.EntityMatch:
		return c.MaxMatches
	default:
		return 0
	}
}

type FollowInput struct {
	UserID      string                   `validate:"required,max=128"`
	EntityType  string                   `validate:"required"`
	EntityID    string                   `validate:"required,max=128"`
	Preferences *follow.PreferencesPatch `validate:"-"`
}

type FollowTarget struct {
	EntityType  string                   `json:"entityType"`
	EntityID    string                   `json:"entityId"`
	Preferences *follow.PreferencesPatch `json:"preferences,omitempty"`
}

type BulkFollowFailure struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Reason     string `json:"reason"`
}

type BulkFollowResult struct {
	Followed []follow.Follow     `json:"followed"`
	Skipped  int                 `json:"skipped"`
	Failures []BulkFollowFailure `json:"failures"`
}

// FanoutResult summarizes one processed notification event.
type FanoutResult struct {
	EventType      string `json:"eventType"`
	Followers      int    `json:"followers"`
	Recipients     int    `json:"recipients"`
	Batches        int    `json:"batches"`
	Dispatched     int    `json:"dispatched"`
	DispatchErrors int    `json:"dispatchErrors"`
	Delivered      int    `json:"delivered"`
	Failed         int    `json:"failed"`
	DurationMs     int64  `json:"durationMs"`
}

type FollowService struct {
	followRepo follow.Repository
	userRepo   user.Repository
	teamRepo   team.Repository
	leagueRepo league.Repository
	matchRepo  match.Repository
	notifier   UserNotifier
	idGen      id.Generator
	cfg        FollowConfig
	validator  *validator.Validate
	logger     *logging.Logger
	now        func() time.Time

	// Serializes the limit check and insert for a user within this process.
	userLocks [followLockStripes]sync.Mutex
}

const followLockStripes = 64

func NewFollowService(
	followRepo follow.Repository,
	userRepo user.Repository,
	teamRepo team.Repository,
	leagueRepo league.Repository,
	matchRepo match.Repository,
	notifier UserNotifier,
	idGen id.Generator,
	cfg FollowConfig,
	logger *logging.Logger,
) *FollowService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if cfg.MaxTeams <= 0 {
		cfg.MaxTeams = 50
	}
	if cfg.MaxLeagues <= 0 {
		cfg.MaxLeagues = 30
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = 100
	}
	if cfg.FanoutBatchSize <= 0 {
		cfg.FanoutBatchSize = 500
	}
	if cfg.FanoutWorkers <= 0 {
		cfg.FanoutWorkers = 16
	}

	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		leagueRepo: leagueRepo,
		matchRepo:  matchRepo,
		notifier:   notifier,
		idGen:      idGen,
		cfg:        cfg,
		validator:  validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *FollowService) FollowEntity(ctx context.Context, input FollowInput) (follow.Follow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.FollowEntity")
	defer span.End()

	if err := s.validator.StructCtx(ctx, input); err != nil {
		return follow.Follow{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	entityType, err := follow.ParseEntityType(input.EntityType)
	if err != nil {
		return follow.Follow{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	userID := strings.TrimSpace(input.UserID)
	entityID := strings.TrimSpace(input.EntityID)
	span.SetAttributes(
		attribute.String("follow.entity_type", string(entityType)),
		attribute.String("follow.entity_id", entityID),
	)

	if err := s.ensureActiveUser(ctx, userID); err != nil {
		return follow.Follow{}, err
	}
	if err := s.ensureEntityExists(ctx, entityType, entityID); err != nil {
		return follow.Follow{}, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	_, exists, err := s.followRepo.Get(ctx, userID, entityType, entityID)
	if err != nil {
		return follow.Follow{}, fmt.Errorf("get follow: %w", err)
	}
	if exists {
		return follow.Follow{}, fmt.Errorf("%w: %s %s", ErrAlreadyFollowing, entityType, entityID)
	}

	counts, err := s.followRepo.CountByUser(ctx, userID)
	if err != nil {
		return follow.Follow{}, fmt.Errorf("count follows: %w", err)
	}
	if limit := s.cfg.limitFor(entityType); counts[entityType] >= limit {
		return follow.Follow{}, fmt.Errorf("%w: at most %d %s follows allowed", ErrFollowLimitExceeded, limit, entityType)
	}

	prefs := follow.DefaultPreferences()
	if input.Preferences != nil {
		prefs = prefs.Apply(*input.Preferences)
	}

	followID, err := s.idGen.NewID()
	if err != nil {
		return follow.Follow{}, fmt.Errorf("generate follow id: %w", err)
	}
	now := s.now().UTC()
	item := follow.Follow{
		ID:          followID,
		UserID:      userID,
		EntityType:  entityType,
		EntityID:    entityID,
		Preferences: prefs,
		Active:      true,
		Status:      follow.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.followRepo.Create(ctx, item); err != nil {
		if errors.Is(err, follow.ErrDuplicate) {
			return follow.Follow{}, fmt.Errorf("%w: %s %s", ErrAlreadyFollowing, entityType, entityID)
		}
		return follow.Follow{}, fmt.Errorf("create follow: %w", err)
	}

	return item, nil
}

func (s *FollowService) UnfollowEntity(ctx context.Context, userID, entityTypeRaw, entityID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.UnfollowEntity")
	defer span.End()

	userID, entityType, entityID, err := normalizeFollowKey(userID, entityTypeRaw, entityID)
	if err != nil {
		return err
	}

	deleted, err := s.followRepo.Delete(ctx, userID, entityType, entityID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: follow %s %s", ErrNotFound, entityType, entityID)
	}

	return nil
}

func (s *FollowService) UpdateNotificationPreferences(
	ctx context.Context,
	userID, entityTypeRaw, entityID string,
	patch follow.PreferencesPatch,
) (follow.Follow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.UpdateNotificationPreferences")
	defer span.End()

	userID, entityType, entityID, err := normalizeFollowKey(userID, entityTypeRaw, entityID)
	if err != nil {
		return follow.Follow{}, err
	}

	item, exists, err := s.followRepo.Get(ctx, userID, entityType, entityID)
	if err != nil {
		return follow.Follow{}, fmt.Errorf("get follow: %w", err)
	}
	if !exists {
		return follow.Follow{}, fmt.Errorf("%w: follow %s %s", ErrNotFound, entityType, entityID)
	}
	if patch.IsEmpty() {
		return item, nil
	}

	item.Preferences = item.Preferences.Apply(patch)
	item.UpdatedAt = s.now().UTC()
	if err := s.followRepo.UpdatePreferences(ctx, item); err != nil {
		return follow.Follow{}, fmt.Errorf("update follow preferences: %w", err)
	}

	return item, nil
}

// BulkFollow follows each target independently. Individual failures are reported, never returned.
// The user is checked once before any target; an unknown or inactive user fails the whole call.
func (s *FollowService) BulkFollow(ctx context.Context, userID string, targets []FollowTarget) (BulkFollowResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.BulkFollow")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return BulkFollowResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if len(targets) == 0 {
		return BulkFollowResult{}, fmt.Errorf("%w: at least one entity is required", ErrInvalidInput)
	}
	if err := s.ensureActiveUser(ctx, userID); err != nil {
		return BulkFollowResult{}, err
	}

	result := BulkFollowResult{
		Followed: make([]follow.Follow, 0, len(targets)),
		Failures: make([]BulkFollowFailure, 0),
	}
	for _, target := range targets {
		item, err := s.FollowEntity(ctx, FollowInput{
			UserID:      userID,
			EntityType:  target.EntityType,
			EntityID:    target.EntityID,
			Preferences: target.Preferences,
		})
		if err != nil {
			result.Skipped++
			result.Failures = append(result.Failures, BulkFollowFailure{
				EntityType: target.EntityType,
				EntityID:   target.EntityID,
				Reason:     bulkFailureReason(err),
			})
			continue
		}
		result.Followed = append(result.Followed, item)
	}

	return result, nil
}

func bulkFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyFollowing):
		return "already_following"
	case errors.Is(err, ErrFollowLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

func (s *FollowService) GetUserFollowStats(ctx context.Context, userID string) (follow.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.GetUserFollowStats")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return follow.Stats{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	counts, err := s.followRepo.CountByUser(ctx, userID)
	if err != nil {
		return follow.Stats{}, fmt.Errorf("count follows: %w", err)
	}

	stats := follow.Stats{
		TeamFollows:   counts[follow.EntityTeam],
		LeagueFollows: counts[follow.EntityLeague],
		MatchFollows:  counts[follow.EntityMatch],
	}
	stats.TotalFollows = stats.TeamFollows + stats.LeagueFollows + stats.MatchFollows
	return stats, nil
}

// ListFollows returns the user's follows, optionally narrowed to one entity type.
func (s *FollowService) ListFollows(ctx context.Context, userID, entityTypeRaw string) ([]follow.Follow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.ListFollows")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var filter follow.EntityType
	if strings.TrimSpace(entityTypeRaw) != "" {
		parsed, err := follow.ParseEntityType(entityTypeRaw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter = parsed
	}

	items, err := s.followRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	if filter == "" {
		return items, nil
	}

	out := make([]follow.Follow, 0, len(items))
	for _, item := range items {
		if item.EntityType == filter {
			out = append(out, item)
		}
	}
	return out, nil
}

// ProcessNotificationEvent notifies every follower whose preferences opt into the event.
// Delivery problems are logged and counted; they never fail the event.
func (s *FollowService) ProcessNotificationEvent(ctx context.Context, event NotificationEvent) (FanoutResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.ProcessNotificationEvent")
	defer span.End()

	started := s.now()
	event.EventType = strings.ToUpper(strings.TrimSpace(event.EventType))
	result := FanoutResult{EventType: event.EventType}
	if event.EventType == "" || strings.TrimSpace(event.EntityID) == "" {
		return result, fmt.Errorf("%w: event type and entity id are required", ErrInvalidInput)
	}
	span.SetAttributes(
		attribute.String("notification.event_type", event.EventType),
		attribute.String("notification.entity_type", string(event.EntityType)),
		attribute.String("notification.entity_id", event.EntityID),
	)

	userIDs, followers, err := s.resolveRecipients(ctx, event.targets(), func(item follow.Follow) bool {
		return preferenceAllows(item.Preferences, event.EventType)
	})
	if err != nil {
		return result, err
	}
	result.Followers = followers
	result.Recipients = len(userIDs)
	if len(userIDs) == 0 {
		result.DurationMs = time.Since(started).Milliseconds()
		return result, nil
	}

	title, body := defaultNotificationText(event)
	msg := notification.Message{
		Title:     title,
		Body:      body,
		EventType: event.EventType,
		Data:      notificationData(event),
	}
	s.fanout(ctx, userIDs, msg, &result)
	result.DurationMs = time.Since(started).Milliseconds()

	s.logger.InfoContext(ctx, "notification event processed",
		"event_type", event.EventType,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"recipients", result.Recipients,
		"delivered", result.Delivered,
		"failed", result.Failed,
		"dispatch_errors", result.DispatchErrors,
	)
	return result, nil
}

// NotifyEntityFollowers broadcasts msg to every active follower of one entity, regardless
// of event preferences.
func (s *FollowService) NotifyEntityFollowers(
	ctx context.Context,
	entityTypeRaw, entityID string,
	msg notification.Message,
) (FanoutResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.NotifyEntityFollowers")
	defer span.End()

	entityType, err := follow.ParseEntityType(entityTypeRaw)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return FanoutResult{}, fmt.Errorf("%w: entity id is required", ErrInvalidInput)
	}
	if err := validateMessage(msg); err != nil {
		return FanoutResult{}, err
	}

	return s.broadcast(ctx, []EntityRef{{Type: entityType, ID: entityID}}, msg)
}

// NotifyVenue broadcasts msg to the followers of every match played at the venue on the
// given day, and of the teams playing them.
func (s *FollowService) NotifyVenue(ctx context.Context, venueID string, day time.Time, msg notification.Message) (FanoutResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.NotifyVenue")
	defer span.End()

	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return FanoutResult{}, fmt.Errorf("%w: venue id is required", ErrInvalidInput)
	}
	if err := validateMessage(msg); err != nil {
		return FanoutResult{}, err
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	matches, err := s.matchRepo.ListByVenueBetween(ctx, venueID, from, from.Add(24*time.Hour))
	if err != nil {
		return FanoutResult{}, fmt.Errorf("list matches at venue: %w", err)
	}

	targets := make([]EntityRef, 0, len(matches)*3)
	for _, item := range matches {
		targets = append(targets,
			EntityRef{Type: follow.EntityMatch, ID: item.ID},
			EntityRef{Type: follow.EntityTeam, ID: item.HomeTeamID},
			EntityRef{Type: follow.EntityTeam, ID: item.AwayTeamID},
		)
	}
	if msg.Data == nil {
		msg.Data = map[string]string{}
	}
	msg.Data["venue_id"] = venueID

	return s.broadcast(ctx, NotificationEvent{Related: targets}.targets(), msg)
}

func validateMessage(msg notification.Message) error {
	if strings.TrimSpace(msg.Title) == "" || strings.TrimSpace(msg.Body) == "" {
		return fmt.Errorf("%w: title and body are required", ErrInvalidInput)
	}
	return nil
}

func (s *FollowService) broadcast(ctx context.Context, targets []EntityRef, msg notification.Message) (FanoutResult, error) {
	started := s.now()
	result := FanoutResult{EventType: msg.EventType}

	userIDs, followers, err := s.resolveRecipients(ctx, targets, nil)
	if err != nil {
		return result, err
	}
	result.Followers = followers
	result.Recipients = len(userIDs)
	if len(userIDs) > 0 {
		s.fanout(ctx, userIDs, msg, &result)
	}
	result.DurationMs = time.Since(started).Milliseconds()
	return result, nil
}

func (s *FollowService) resolveRecipients(
	ctx context.Context,
	targets []EntityRef,
	allow func(follow.Follow) bool,
) ([]string, int, error) {
	seen := make(map[string]struct{})
	followers := 0
	for _, target := range targets {
		items, err := s.followRepo.ListActiveByEntity(ctx, target.Type, target.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("list followers of %s %s: %w", target.Type, target.ID, err)
		}
		for _, item := range items {
			if !item.Receives() {
				continue
			}
			followers++
			if allow != nil && !allow(item) {
				continue
			}
			seen[item.UserID] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for userID := range seen {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, followers, nil
}

// fanout walks the recipients in fixed-size batches, one batch at a time. Users inside a
// batch are dispatched concurrently on a bounded worker pool.
func (s *FollowService) fanout(ctx context.Context, userIDs []string, msg notification.Message, result *FanoutResult) {
	if s.notifier == nil {
		s.logger.WarnContext(ctx, "notification fanout skipped, no notifier configured", "event_type", msg.EventType)
		return
	}

	pool, err := ants.NewPool(s.cfg.FanoutWorkers)
	if err != nil {
		s.logger.ErrorContext(ctx, "create fanout worker pool failed", "error", err)
		result.DispatchErrors += len(userIDs)
		return
	}
	defer pool.Release()

	for start := 0; start < len(userIDs); start += s.cfg.FanoutBatchSize {
		end := start + s.cfg.FanoutBatchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		result.Batches++
		s.dispatchBatch(ctx, pool, userIDs[start:end], msg, result)
	}
}

func (s *FollowService) dispatchBatch(
	ctx context.Context,
	pool *ants.Pool,
	batch []string,
	msg notification.Message,
	result *FanoutResult,
) {
	var (
		workers    sync.WaitGroup
		dispatched atomic.Int32
		failures   atomic.Int32
		delivered  atomic.Int32
		failed     atomic.Int32
	)

	for _, userID := range batch {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			metrics, err := s.notifier.DispatchToUsers(ctx, []string{userID}, msg)
			if err != nil {
				failures.Add(1)
				s.logger.WarnContext(ctx, "dispatch notification failed",
					"user_id", userID,
					"event_type", msg.EventType,
					"error", err,
				)
				return
			}
			dispatched.Add(1)
			delivered.Add(int32(metrics.Delivered))
			failed.Add(int32(metrics.Failed))
		}); err != nil {
			workers.Done()
			failures.Add(1)
			s.logger.WarnContext(ctx, "submit dispatch task failed", "user_id", userID, "error", err)
		}
	}
	workers.Wait()

	result.Dispatched += int(dispatched.Load())
	result.DispatchErrors += int(failures.Load())
	result.Delivered += int(delivered.Load())
	result.Failed += int(failed.Load())
}

func (s *FollowService) lockUser(userID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	mu := &s.userLocks[h.Sum32()%followLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *FollowService) ensureActiveUser(ctx context.Context, userID string) error {
	if s.userRepo == nil {
		return nil
	}
	item, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	if !item.Active {
		return fmt.Errorf("%w: user=%s", ErrInactiveUser, userID)
	}
	return nil
}

func (s *FollowService) ensureEntityExists(ctx context.Context, entityType follow.EntityType, entityID string) error {
	var (
		exists bool
		err    error
	)
	switch entityType {
	case follow.EntityTeam:
		_, exists, err = s.teamRepo.GetByID(ctx, entityID)
	case follow.EntityLeague:
		_, exists, err = s.leagueRepo.GetByID(ctx, entityID)
	case follow.EntityMatch:
		_, exists, err = s.matchRepo.GetByID(ctx, entityID)
	default:
		return fmt.Errorf("%w: unsupported entity type %q", ErrInvalidInput, entityType)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", entityType, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s=%s", ErrNotFound, entityType, entityID)
	}
	return nil
}

func normalizeFollowKey(userID, entityTypeRaw, entityID string) (string, follow.EntityType, string, error) {
	userID = strings.TrimSpace(userID)
	entityID = strings.TrimSpace(entityID)
	if userID == "" || entityID == "" {
		return "", "", "", fmt.Errorf("%w: user id and entity id are required", ErrInvalidInput)
	}
	entityType, err := follow.ParseEntityType(entityTypeRaw)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return userID, entityType, entityID, nil
}

func notificationData(event NotificationEvent) map[string]string {
	out := map[string]string{
		"entity_type": string(event.EntityType),
		"entity_id":   event.EntityID,
	}
	for key, value := range event.EventData {
		if value == nil {
			continue
		}
		out[key] = fmt.Sprint(value)
	}
	return out
}
