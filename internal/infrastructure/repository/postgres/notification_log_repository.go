package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type notificationLogInsertModel struct {
	PublicID       string         `db:"public_id"`
	NotificationID string         `db:"notification_id"`
	UserIDs        pq.StringArray `db:"user_ids"`
	EventType      string         `db:"event_type"`
	Platform       string         `db:"platform"`
	Delivered      int            `db:"delivered"`
	Failed         int            `db:"failed"`
	CreatedAt      time.Time      `db:"created_at"`
}

type NotificationLogRepository struct {
	db dbtx
}

func NewNotificationLogRepository(db *sqlx.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Insert(ctx context.Context, item notification.Log) error {
	query, args, err := qb.InsertModel("notification_logs", notificationLogInsertModel{
		PublicID:       item.ID,
		NotificationID: item.NotificationID,
		UserIDs:        pq.StringArray(nonNilSlice(item.UserIDs)),
		EventType:      item.EventType,
		Platform:       string(item.Platform),
		Delivered:      item.Delivered,
		Failed:         item.Failed,
		CreatedAt:      timeOrNow(item.CreatedAt),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert notification log query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notification log %s: %w", item.NotificationID, err)
	}
	return nil
}
