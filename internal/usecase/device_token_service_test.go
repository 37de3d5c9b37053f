package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceTokenService_RegisterMovesTokenToNewOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewDeviceTokenRepository(store)
	service := usecase.NewDeviceTokenService(repo, nil, logging.NewNop())

	first, err := service.Register(ctx, usecase.RegisterDeviceInput{
		UserID:     "user-demo-1",
		Token:      "fcm-token-1",
		Platform:   "ANDROID",
		DeviceName: "Pixel 8",
	})
	require.NoError(t, err)
	assert.Equal(t, devicetoken.PlatformAndroid, first.Platform)
	assert.True(t, first.Active)

	require.NoError(t, service.Unregister(ctx, "user-demo-1", "fcm-token-1"))

	moved, err := service.Register(ctx, usecase.RegisterDeviceInput{
		UserID:   "user-demo-2",
		Token:    "fcm-token-1",
		Platform: "android",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, moved.ID)
	assert.True(t, moved.Active)

	previous, err := service.ListByUser(ctx, "user-demo-1")
	require.NoError(t, err)
	assert.Empty(t, previous)

	current, err := service.ListByUser(ctx, "user-demo-2")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "fcm-token-1", current[0].Token)
}

func TestDeviceTokenService_RegisterValidation(t *testing.T) {
	t.Parallel()

	service := usecase.NewDeviceTokenService(memory.NewDeviceTokenRepository(memory.NewStore()), nil, logging.NewNop())
	_, err := service.Register(context.Background(), usecase.RegisterDeviceInput{
		UserID:   "user-demo-1",
		Token:    "token",
		Platform: "blackberry",
	})
	require.ErrorIs(t, err, usecase.ErrInvalidInput)

	_, err = service.Register(context.Background(), usecase.RegisterDeviceInput{Platform: "ios"})
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestDeviceTokenService_UnregisterForeignToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := usecase.NewDeviceTokenService(memory.NewDeviceTokenRepository(memory.NewStore()), nil, logging.NewNop())
	_, err := service.Register(ctx, usecase.RegisterDeviceInput{UserID: "user-demo-1", Token: "apns-1", Platform: "ios"})
	require.NoError(t, err)

	err = service.Unregister(ctx, "user-demo-2", "apns-1")
	require.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestDeviceTokenService_DeactivateStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := usecase.NewDeviceTokenService(memory.NewDeviceTokenRepository(memory.NewStore()), nil, logging.NewNop())
	_, err := service.Register(ctx, usecase.RegisterDeviceInput{UserID: "user-demo-1", Token: "web-1", Platform: "web"})
	require.NoError(t, err)

	count, err := service.DeactivateStale(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = service.DeactivateStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
