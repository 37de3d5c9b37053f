package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type DeviceTokenRepository struct {
	db dbtx
}

func NewDeviceTokenRepository(db *sqlx.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

func (r *DeviceTokenRepository) GetByToken(ctx context.Context, token string) (devicetoken.DeviceToken, bool, error) {
	query, args, err := qb.Select("*").From("device_tokens").
		Where(qb.Eq("token", strings.TrimSpace(token))).
		ToSQL()
	if err != nil {
		return devicetoken.DeviceToken{}, false, fmt.Errorf("build get device token query: %w", err)
	}

	var row deviceTokenTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return devicetoken.DeviceToken{}, false, nil
		}
		return devicetoken.DeviceToken{}, false, fmt.Errorf("get device token: %w", err)
	}

	return deviceTokenFromRow(row), true, nil
}

// Upsert keys on the token string: a token moving to another user is reassigned.
func (r *DeviceTokenRepository) Upsert(ctx context.Context, item devicetoken.DeviceToken) error {
	query, args, err := qb.Upsert("device_tokens", deviceTokenInsertModel{
		PublicID:   item.ID,
		UserID:     strings.TrimSpace(item.UserID),
		Token:      strings.TrimSpace(item.Token),
		Platform:   string(item.Platform),
		DeviceName: item.DeviceName,
		AppVersion: item.AppVersion,
		OSVersion:  item.OSVersion,
		Active:     item.Active,
		LastUsedAt: timeOrNow(item.LastUsedAt),
		CreatedAt:  timeOrNow(item.CreatedAt),
		UpdatedAt:  timeOrNow(item.UpdatedAt),
	}).
		OnConflict("", "token").
		DoUpdate("user_id", "platform", "device_name", "app_version", "os_version", "active", "last_used_at", "updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert device token query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert device token user=%s: %w", item.UserID, err)
	}
	return nil
}

func (r *DeviceTokenRepository) Deactivate(ctx context.Context, tokens []string) (int, error) {
	if len(tokens) == 0 {
		return 0, nil
	}

	query, args, err := qb.Update("device_tokens").
		Set("active", false).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.InStrings("token", tokens),
			qb.Eq("active", true),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build deactivate device tokens query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate device tokens: %w", err)
	}
	return rowsAffected(result)
}

func (r *DeviceTokenRepository) ListActiveByUsers(ctx context.Context, userIDs []string) ([]devicetoken.DeviceToken, error) {
	if len(userIDs) == 0 {
		return []devicetoken.DeviceToken{}, nil
	}

	query, args, err := qb.Select("*").From("device_tokens").
		Where(
			qb.InStrings("user_id", userIDs),
			qb.Eq("active", true),
		).
		OrderBy("token").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active device tokens query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *DeviceTokenRepository) ListByUser(ctx context.Context, userID string) ([]devicetoken.DeviceToken, error) {
	query, args, err := qb.Select("*").From("device_tokens").
		Where(qb.Eq("user_id", strings.TrimSpace(userID))).
		OrderBy("token").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list device tokens by user query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *DeviceTokenRepository) DeactivateUnusedSince(ctx context.Context, before time.Time) (int, error) {
	query, args, err := qb.Update("device_tokens").
		Set("active", false).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("active", true),
			qb.Expr("last_used_at < ?", before.UTC()),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build deactivate stale device tokens query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale device tokens: %w", err)
	}
	return rowsAffected(result)
}

func (r *DeviceTokenRepository) list(ctx context.Context, query string, args []any) ([]devicetoken.DeviceToken, error) {
	var rows []deviceTokenTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select device tokens: %w", err)
	}

	out := make([]devicetoken.DeviceToken, 0, len(rows))
	for _, row := range rows {
		out = append(out, deviceTokenFromRow(row))
	}
	return out, nil
}

func deviceTokenFromRow(row deviceTokenTableModel) devicetoken.DeviceToken {
	return devicetoken.DeviceToken{
		ID:         row.PublicID,
		UserID:     row.UserID,
		Token:      row.Token,
		Platform:   devicetoken.Platform(row.Platform),
		DeviceName: row.DeviceName,
		AppVersion: row.AppVersion,
		OSVersion:  row.OSVersion,
		Active:     row.Active,
		LastUsedAt: row.LastUsedAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
