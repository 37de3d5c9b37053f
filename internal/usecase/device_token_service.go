package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

type RegisterDeviceInput struct {
	UserID     string `validate:"required,max=128"`
	Token      string `validate:"required,max=4096"`
	Platform   string `validate:"required,oneof=ios android web IOS ANDROID WEB"`
	DeviceName string `validate:"max=255"`
	AppVersion string `validate:"max=64"`
	OSVersion  string `validate:"max=64"`
}

type DeviceTokenService struct {
	repo      devicetoken.Repository
	idGen     id.Generator
	validator *validator.Validate
	logger    *logging.Logger
	now       func() time.Time
}

func NewDeviceTokenService(repo devicetoken.Repository, idGen id.Generator, logger *logging.Logger) *DeviceTokenService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &DeviceTokenService{
		repo:      repo,
		idGen:     idGen,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Register stores the token for the user. A token already known under another owner or
// platform is moved over and reactivated.
func (s *DeviceTokenService) Register(ctx context.Context, input RegisterDeviceInput) (devicetoken.DeviceToken, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeviceTokenService.Register")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Token = strings.TrimSpace(input.Token)
	input.Platform = strings.TrimSpace(input.Platform)
	if err := s.validator.StructCtx(ctx, input); err != nil {
		return devicetoken.DeviceToken{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	platform, err := devicetoken.ParsePlatform(input.Platform)
	if err != nil {
		return devicetoken.DeviceToken{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	existing, exists, err := s.repo.GetByToken(ctx, input.Token)
	if err != nil {
		return devicetoken.DeviceToken{}, fmt.Errorf("get device token: %w", err)
	}

	item := existing
	if !exists {
		tokenID, err := s.idGen.NewID()
		if err != nil {
			return devicetoken.DeviceToken{}, fmt.Errorf("generate device token id: %w", err)
		}
		item = devicetoken.DeviceToken{
			ID:        tokenID,
			Token:     input.Token,
			CreatedAt: now,
		}
	} else if existing.UserID != input.UserID {
		s.logger.InfoContext(ctx, "device token moved to new owner",
			"previous_user_id", existing.UserID,
			"user_id", input.UserID,
		)
	}

	item.UserID = input.UserID
	item.Platform = platform
	item.DeviceName = strings.TrimSpace(input.DeviceName)
	item.AppVersion = strings.TrimSpace(input.AppVersion)
	item.OSVersion = strings.TrimSpace(input.OSVersion)
	item.Active = true
	item.LastUsedAt = now
	item.UpdatedAt = now

	if err := s.repo.Upsert(ctx, item); err != nil {
		return devicetoken.DeviceToken{}, fmt.Errorf("upsert device token: %w", err)
	}
	return item, nil
}

// Unregister deactivates the token. Tokens owned by someone else are reported as not found.
func (s *DeviceTokenService) Unregister(ctx context.Context, userID, token string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeviceTokenService.Unregister")
	defer span.End()

	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return fmt.Errorf("%w: user id and token are required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("get device token: %w", err)
	}
	if !exists || item.UserID != userID {
		return fmt.Errorf("%w: device token", ErrNotFound)
	}
	if !item.Active {
		return nil
	}

	if _, err := s.repo.Deactivate(ctx, []string{token}); err != nil {
		return fmt.Errorf("deactivate device token: %w", err)
	}
	return nil
}

func (s *DeviceTokenService) ListByUser(ctx context.Context, userID string) ([]devicetoken.DeviceToken, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeviceTokenService.ListByUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	return items, nil
}

// DeactivateStale turns off tokens that have not been used since before.
func (s *DeviceTokenService) DeactivateStale(ctx context.Context, before time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeviceTokenService.DeactivateStale")
	defer span.End()

	count, err := s.repo.DeactivateUnusedSince(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale device tokens: %w", err)
	}
	return count, nil
}
