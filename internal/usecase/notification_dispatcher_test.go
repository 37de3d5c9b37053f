package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	devicetokenmock "github.com/riskibarqy/matchday/internal/mocks/domain/devicetoken"
	notificationmock "github.com/riskibarqy/matchday/internal/mocks/domain/notification"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%03d", g.next), nil
}

type recordingSender struct {
	mu       sync.Mutex
	calls    []notification.Payload
	tokens   [][]string
	invalid  map[string]bool
	failCall error
}

func (s *recordingSender) SendMulticast(_ context.Context, tokens []string, payload notification.Payload) (notification.MulticastResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, payload)
	s.tokens = append(s.tokens, append([]string(nil), tokens...))
	if s.failCall != nil {
		return notification.MulticastResult{}, s.failCall
	}

	var result notification.MulticastResult
	for _, token := range tokens {
		if s.invalid[token] {
			result.FailureCount++
			result.Results = append(result.Results, notification.TokenResult{Token: token, Failure: notification.FailureInvalidToken})
			continue
		}
		result.SuccessCount++
		result.Results = append(result.Results, notification.TokenResult{Token: token, Success: true, MessageID: "msg-" + token})
	}
	return result, nil
}

func androidToken(userID, token string) devicetoken.DeviceToken {
	return devicetoken.DeviceToken{UserID: userID, Token: token, Platform: devicetoken.PlatformAndroid, Active: true}
}

func TestNotificationDispatcher_DeactivatesInvalidTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokenRepo := devicetokenmock.NewRepository(t)
	logRepo := notificationmock.NewLogRepository(t)
	sender := &recordingSender{invalid: map[string]bool{"tok-dead": true}}

	tokenRepo.
		On("ListActiveByUsers", mock.Anything, []string{"user-1"}).
		Return([]devicetoken.DeviceToken{
			androidToken("user-1", "tok-a"),
			androidToken("user-1", "tok-dead"),
			androidToken("user-1", "tok-b"),
		}, nil).
		Once()
	tokenRepo.
		On("Deactivate", mock.Anything, []string{"tok-dead"}).
		Return(1, nil).
		Once()
	logRepo.
		On("Insert", mock.Anything, mock.MatchedBy(func(item notification.Log) bool {
			return item.Platform == devicetoken.PlatformAndroid && item.Delivered == 2 && item.Failed == 1
		})).
		Return(nil).
		Once()

	dispatcher := NewNotificationDispatcher(tokenRepo, logRepo, sender, &sequenceIDs{}, DispatcherConfig{}, logging.NewNop())
	metrics, err := dispatcher.DispatchToUsers(ctx, []string{"user-1", " user-1 "}, notification.Message{
		Title:     "GOAL!",
		Body:      "Arsenal 1-0 Liverpool",
		EventType: EventTypeGoal,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.TotalSent)
	assert.Equal(t, 2, metrics.Delivered)
	assert.Equal(t, 1, metrics.Failed)
	assert.Equal(t, 1, metrics.DeactivatedTokens)
	assert.Equal(t, PlatformMetrics{Sent: 3, Delivered: 2, Failed: 1}, metrics.ByPlatform[devicetoken.PlatformAndroid])

	require.Len(t, sender.calls, 1)
	payload := sender.calls[0]
	require.NotNil(t, payload.Android)
	assert.Equal(t, "high", payload.Android.Priority)
	assert.Equal(t, "match_updates", payload.Android.ChannelID)
	assert.Equal(t, metrics.NotificationID, payload.Data["notification_id"])
	assert.Equal(t, EventTypeGoal, payload.Data["event_type"])
}

func TestNotificationDispatcher_GroupsByPlatformAndChunks(t *testing.T) {
	t.Parallel()

	tokenRepo := devicetokenmock.NewRepository(t)
	sender := &recordingSender{}

	tokens := []devicetoken.DeviceToken{
		{UserID: "u-1", Token: "ios-1", Platform: devicetoken.PlatformIOS, Active: true},
		{UserID: "u-2", Token: "web-1", Platform: devicetoken.PlatformWeb, Active: true},
	}
	for i := range 5 {
		tokens = append(tokens, androidToken("u-3", fmt.Sprintf("and-%d", i)))
	}
	tokenRepo.On("ListActiveByUsers", mock.Anything, mock.Anything).Return(tokens, nil).Once()

	dispatcher := NewNotificationDispatcher(tokenRepo, nil, sender, &sequenceIDs{}, DispatcherConfig{
		MulticastLimit: 2,
		WebIcon:        "/icon.png",
	}, logging.NewNop())
	metrics, err := dispatcher.DispatchToUsers(context.Background(), []string{"u-1", "u-2", "u-3"}, notification.Message{
		Title: "Kick-off",
		Body:  "Persija vs Persib has started",
		Data:  map[string]string{"link": "/matches/m-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, metrics.TotalSent)
	assert.Equal(t, 7, metrics.Delivered)
	// 5 android tokens at limit 2 need 3 calls, plus one each for ios and web.
	require.Len(t, sender.calls, 5)
	for i, call := range sender.calls {
		assert.LessOrEqual(t, len(sender.tokens[i]), 2)
		switch call.Platform {
		case devicetoken.PlatformIOS:
			require.NotNil(t, call.IOS)
			assert.Equal(t, "default", call.IOS.Sound)
		case devicetoken.PlatformWeb:
			require.NotNil(t, call.Web)
			assert.Equal(t, "/icon.png", call.Web.Icon)
			assert.Equal(t, "/matches/m-1", call.Web.Link)
		}
	}
}

func TestNotificationDispatcher_FailedCallDeactivatesNothing(t *testing.T) {
	t.Parallel()

	tokenRepo := devicetokenmock.NewRepository(t)
	tokenRepo.
		On("ListActiveByUsers", mock.Anything, mock.Anything).
		Return([]devicetoken.DeviceToken{androidToken("u-1", "tok-a"), androidToken("u-1", "tok-b")}, nil).
		Once()

	sender := &recordingSender{failCall: errors.New("provider unavailable")}
	dispatcher := NewNotificationDispatcher(tokenRepo, nil, sender, &sequenceIDs{}, DispatcherConfig{}, logging.NewNop())

	metrics, err := dispatcher.DispatchToUsers(context.Background(), []string{"u-1"}, notification.Message{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Failed)
	assert.Zero(t, metrics.DeactivatedTokens)
	tokenRepo.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestNotificationDispatcher_NoSenderConfigured(t *testing.T) {
	t.Parallel()

	tokenRepo := devicetokenmock.NewRepository(t)
	tokenRepo.
		On("ListActiveByUsers", mock.Anything, mock.Anything).
		Return([]devicetoken.DeviceToken{androidToken("u-1", "tok-a")}, nil).
		Once()

	dispatcher := NewNotificationDispatcher(tokenRepo, nil, nil, nil, DispatcherConfig{}, logging.NewNop())
	_, err := dispatcher.SendTest(context.Background(), "u-1")
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestNotificationDispatcher_SendTestRequiresUser(t *testing.T) {
	t.Parallel()

	dispatcher := NewNotificationDispatcher(devicetokenmock.NewRepository(t), nil, &recordingSender{}, nil, DispatcherConfig{}, logging.NewNop())
	_, err := dispatcher.SendTest(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotificationDispatcher_NoTokensIsNotAnError(t *testing.T) {
	t.Parallel()

	tokenRepo := devicetokenmock.NewRepository(t)
	tokenRepo.On("ListActiveByUsers", mock.Anything, mock.Anything).Return(nil, nil).Once()

	sender := &recordingSender{}
	dispatcher := NewNotificationDispatcher(tokenRepo, nil, sender, nil, DispatcherConfig{}, logging.NewNop())
	metrics, err := dispatcher.DispatchToUsers(context.Background(), []string{"u-1"}, notification.Message{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Zero(t, metrics.TotalSent)
	assert.Empty(t, sender.calls)
}
