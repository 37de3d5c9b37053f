package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
)

// MulticastLimit is the largest token list the provider accepts in one call.
const MulticastLimit = 500

// NotificationSender is the push provider boundary.
type NotificationSender interface {
	SendMulticast(ctx context.Context, tokens []string, payload notification.Payload) (notification.MulticastResult, error)
}

type DispatcherConfig struct {
	MulticastLimit   int
	AndroidChannelID string
	WebIcon          string
}

type PlatformMetrics struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type DispatchMetrics struct {
	NotificationID    string                                   `json:"notificationId,omitempty"`
	TotalSent         int                                      `json:"totalSent"`
	Delivered         int                                      `json:"delivered"`
	Failed            int                                      `json:"failed"`
	ByPlatform        map[devicetoken.Platform]PlatformMetrics `json:"byPlatform"`
	DeactivatedTokens int                                      `json:"deactivatedTokens"`
	DurationMs        int64                                    `json:"durationMs"`
}

type sendTestInput struct {
	UserID string `validate:"required,max=128"`
}

type NotificationDispatcher struct {
	tokenRepo devicetoken.Repository
	logRepo   notification.LogRepository
	sender    NotificationSender
	idGen     id.Generator
	cfg       DispatcherConfig
	validator *validator.Validate
	logger    *logging.Logger
	now       func() time.Time
}

func NewNotificationDispatcher(
	tokenRepo devicetoken.Repository,
	logRepo notification.LogRepository,
	sender NotificationSender,
	idGen id.Generator,
	cfg DispatcherConfig,
	logger *logging.Logger,
) *NotificationDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if cfg.MulticastLimit <= 0 || cfg.MulticastLimit > MulticastLimit {
		cfg.MulticastLimit = MulticastLimit
	}
	if strings.TrimSpace(cfg.AndroidChannelID) == "" {
		cfg.AndroidChannelID = "match_updates"
	}

	return &NotificationDispatcher{
		tokenRepo: tokenRepo,
		logRepo:   logRepo,
		sender:    sender,
		idGen:     idGen,
		cfg:       cfg,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// DispatchToUsers sends msg to every active device of the given users.
func (d *NotificationDispatcher) DispatchToUsers(ctx context.Context, userIDs []string, msg notification.Message) (DispatchMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationDispatcher.DispatchToUsers")
	defer span.End()

	userIDs = uniqueTrimmed(userIDs)
	if len(userIDs) == 0 {
		return emptyDispatchMetrics(), nil
	}
	span.SetAttributes(attribute.Int("notification.user_count", len(userIDs)))

	tokens, err := d.tokenRepo.ListActiveByUsers(ctx, userIDs)
	if err != nil {
		return DispatchMetrics{}, fmt.Errorf("list active device tokens: %w", err)
	}

	return d.dispatch(ctx, userIDs, tokens, msg)
}

// DispatchToTokens sends msg to an explicit token list. Unknown and inactive tokens are ignored.
func (d *NotificationDispatcher) DispatchToTokens(ctx context.Context, tokens []string, msg notification.Message) (DispatchMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationDispatcher.DispatchToTokens")
	defer span.End()

	tokens = uniqueTrimmed(tokens)
	items := make([]devicetoken.DeviceToken, 0, len(tokens))
	userSet := make(map[string]struct{})
	for _, token := range tokens {
		item, exists, err := d.tokenRepo.GetByToken(ctx, token)
		if err != nil {
			return DispatchMetrics{}, fmt.Errorf("get device token: %w", err)
		}
		if !exists || !item.Active {
			continue
		}
		items = append(items, item)
		userSet[item.UserID] = struct{}{}
	}
	if len(items) == 0 {
		return emptyDispatchMetrics(), nil
	}

	userIDs := make([]string, 0, len(userSet))
	for userID := range userSet {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)
	return d.dispatch(ctx, userIDs, items, msg)
}

func (d *NotificationDispatcher) SendTest(ctx context.Context, userID string) (DispatchMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationDispatcher.SendTest")
	defer span.End()

	input := sendTestInput{UserID: strings.TrimSpace(userID)}
	if err := d.validator.StructCtx(ctx, input); err != nil {
		return DispatchMetrics{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return d.DispatchToUsers(ctx, []string{input.UserID}, notification.Message{
		Title:     "Test notification",
		Body:      "Notifications are working on this device.",
		EventType: EventTypeTest,
	})
}

type multicastChunk struct {
	platform devicetoken.Platform
	tokens   []string
	payload  notification.Payload
	result   notification.MulticastResult
	err      error
}

func (d *NotificationDispatcher) dispatch(
	ctx context.Context,
	userIDs []string,
	tokens []devicetoken.DeviceToken,
	msg notification.Message,
) (DispatchMetrics, error) {
	started := d.now()
	metrics := emptyDispatchMetrics()
	if len(tokens) == 0 {
		return metrics, nil
	}
	if d.sender == nil {
		return metrics, fmt.Errorf("%w: notification sender is not configured", ErrDependencyUnavailable)
	}

	notificationID, err := d.idGen.NewID()
	if err != nil {
		return metrics, fmt.Errorf("generate notification id: %w", err)
	}
	metrics.NotificationID = notificationID

	groups := groupTokensByPlatform(tokens)
	chunks := make([]*multicastChunk, 0, len(groups))
	for _, platform := range sortedPlatforms(groups) {
		payload := d.buildPayload(platform, msg, notificationID, started)
		for _, part := range chunkStrings(groups[platform], d.cfg.MulticastLimit) {
			chunks = append(chunks, &multicastChunk{platform: platform, tokens: part, payload: payload})
		}
	}

	var wg conc.WaitGroup
	for _, chunk := range chunks {
		wg.Go(func() {
			chunk.result, chunk.err = d.sender.SendMulticast(ctx, chunk.tokens, chunk.payload)
		})
	}
	wg.Wait()

	invalid := make([]string, 0)
	for _, chunk := range chunks {
		platformMetrics := metrics.ByPlatform[chunk.platform]
		platformMetrics.Sent += len(chunk.tokens)
		delivered, failed, dead := tallyMulticast(chunk)
		if chunk.err != nil {
			d.logger.WarnContext(ctx, "multicast send failed",
				"platform", chunk.platform,
				"token_count", len(chunk.tokens),
				"notification_id", notificationID,
				"error", chunk.err,
			)
		}
		platformMetrics.Delivered += delivered
		platformMetrics.Failed += failed
		metrics.ByPlatform[chunk.platform] = platformMetrics
		invalid = append(invalid, dead...)
	}

	for _, platformMetrics := range metrics.ByPlatform {
		metrics.TotalSent += platformMetrics.Sent
		metrics.Delivered += platformMetrics.Delivered
		metrics.Failed += platformMetrics.Failed
	}

	if len(invalid) > 0 {
		deactivated, err := d.tokenRepo.Deactivate(ctx, invalid)
		if err != nil {
			d.logger.WarnContext(ctx, "deactivate invalid device tokens failed",
				"token_count", len(invalid),
				"error", err,
			)
		}
		metrics.DeactivatedTokens = deactivated
	}

	d.recordLogs(ctx, notificationID, userIDs, msg.EventType, metrics)
	metrics.DurationMs = d.now().Sub(started).Milliseconds()
	return metrics, nil
}

// tallyMulticast counts one chunk's outcome and returns the tokens the provider rejected
// permanently. A failed call counts every token as failed and deactivates none.
func tallyMulticast(chunk *multicastChunk) (delivered, failed int, invalid []string) {
	if chunk.err != nil {
		return 0, len(chunk.tokens), nil
	}
	if len(chunk.result.Results) == 0 {
		failed = chunk.result.FailureCount
		if chunk.result.SuccessCount+failed < len(chunk.tokens) {
			failed = len(chunk.tokens) - chunk.result.SuccessCount
		}
		return chunk.result.SuccessCount, failed, nil
	}

	for idx, res := range chunk.result.Results {
		if res.Success {
			delivered++
			continue
		}
		failed++
		if res.Failure != notification.FailureInvalidToken {
			continue
		}
		token := res.Token
		if token == "" && idx < len(chunk.tokens) {
			token = chunk.tokens[idx]
		}
		if token != "" {
			invalid = append(invalid, token)
		}
	}
	return delivered, failed, invalid
}

func (d *NotificationDispatcher) buildPayload(
	platform devicetoken.Platform,
	msg notification.Message,
	notificationID string,
	sentAt time.Time,
) notification.Payload {
	data := make(map[string]string, len(msg.Data)+3)
	for key, value := range msg.Data {
		data[key] = value
	}
	data["notification_id"] = notificationID
	data["event_type"] = msg.EventType
	data["timestamp"] = sentAt.UTC().Format(time.RFC3339)

	payload := notification.Payload{
		Platform: platform,
		Title:    msg.Title,
		Body:     msg.Body,
		ImageURL: msg.ImageURL,
		Data:     data,
	}
	switch platform {
	case devicetoken.PlatformIOS:
		payload.IOS = &notification.IOSOptions{Sound: "default", Badge: 1}
	case devicetoken.PlatformAndroid:
		payload.Android = &notification.AndroidOptions{Priority: "high", ChannelID: d.cfg.AndroidChannelID}
	case devicetoken.PlatformWeb:
		payload.Web = &notification.WebOptions{Icon: d.cfg.WebIcon, Link: msg.Data["link"]}
	}
	return payload
}

func (d *NotificationDispatcher) recordLogs(
	ctx context.Context,
	notificationID string,
	userIDs []string,
	eventType string,
	metrics DispatchMetrics,
) {
	if d.logRepo == nil {
		return
	}
	now := d.now().UTC()
	for platform, platformMetrics := range metrics.ByPlatform {
		logID, err := d.idGen.NewID()
		if err != nil {
			d.logger.WarnContext(ctx, "generate notification log id failed", "error", err)
			return
		}
		item := notification.Log{
			ID:             logID,
			NotificationID: notificationID,
			UserIDs:        userIDs,
			EventType:      eventType,
			Platform:       platform,
			Delivered:      platformMetrics.Delivered,
			Failed:         platformMetrics.Failed,
			CreatedAt:      now,
		}
		if err := d.logRepo.Insert(ctx, item); err != nil {
			d.logger.WarnContext(ctx, "insert notification log failed",
				"notification_id", notificationID,
				"platform", platform,
				"error", err,
			)
		}
	}
}

func emptyDispatchMetrics() DispatchMetrics {
	return DispatchMetrics{ByPlatform: make(map[devicetoken.Platform]PlatformMetrics)}
}

func groupTokensByPlatform(tokens []devicetoken.DeviceToken) map[devicetoken.Platform][]string {
	out := make(map[devicetoken.Platform][]string)
	seen := make(map[string]struct{}, len(tokens))
	for _, item := range tokens {
		if _, ok := seen[item.Token]; ok || item.Token == "" {
			continue
		}
		seen[item.Token] = struct{}{}
		out[item.Platform] = append(out[item.Platform], item.Token)
	}
	return out
}

func sortedPlatforms(groups map[devicetoken.Platform][]string) []devicetoken.Platform {
	out := make([]devicetoken.Platform, 0, len(groups))
	for platform := range groups {
		out = append(out, platform)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	out := make([][]string, 0, (len(items)+size-1)/max(size, 1))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

func uniqueTrimmed(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
