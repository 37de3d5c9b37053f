package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/follow"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type FollowRepository struct {
	db dbtx
}

func NewFollowRepository(db *sqlx.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create relies on the partial unique index over live (user, entity type, entity) rows.
func (r *FollowRepository) Create(ctx context.Context, item follow.Follow) error {
	preferences, err := encodeJSON(item.Preferences)
	if err != nil {
		return fmt.Errorf("encode follow preferences: %w", err)
	}

	query, args, err := qb.InsertModel("follows", followInsertModel{
		PublicID:    item.ID,
		UserID:      strings.TrimSpace(item.UserID),
		EntityType:  string(item.EntityType),
		EntityID:    strings.TrimSpace(item.EntityID),
		Preferences: preferences,
		Active:      item.Active,
		Status:      string(item.Status),
		CreatedAt:   timeOrNow(item.CreatedAt),
		UpdatedAt:   timeOrNow(item.UpdatedAt),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert follow query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return follow.ErrDuplicate
		}
		return fmt.Errorf("insert follow %s/%s: %w", item.EntityType, item.EntityID, err)
	}
	return nil
}

func (r *FollowRepository) Get(ctx context.Context, userID string, entityType follow.EntityType, entityID string) (follow.Follow, bool, error) {
	query, args, err := qb.Select("*").From("follows").
		Where(
			qb.Eq("user_id", strings.TrimSpace(userID)),
			qb.Eq("entity_type", string(entityType)),
			qb.Eq("entity_id", strings.TrimSpace(entityID)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return follow.Follow{}, false, fmt.Errorf("build get follow query: %w", err)
	}

	var row followTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return follow.Follow{}, false, nil
		}
		return follow.Follow{}, false, fmt.Errorf("get follow: %w", err)
	}

	item, err := followFromRow(row)
	if err != nil {
		return follow.Follow{}, false, err
	}
	return item, true, nil
}

// Delete soft deletes the follow so the pair can be followed again later.
func (r *FollowRepository) Delete(ctx context.Context, userID string, entityType follow.EntityType, entityID string) (bool, error) {
	query, args, err := qb.Update("follows").
		SetExpr("deleted_at", "NOW()").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("user_id", strings.TrimSpace(userID)),
			qb.Eq("entity_type", string(entityType)),
			qb.Eq("entity_id", strings.TrimSpace(entityID)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete follow query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete follow %s/%s: %w", entityType, entityID, err)
	}
	affected, err := rowsAffected(result)
	if err != nil {
		return false, fmt.Errorf("delete follow rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *FollowRepository) UpdatePreferences(ctx context.Context, item follow.Follow) error {
	preferences, err := encodeJSON(item.Preferences)
	if err != nil {
		return fmt.Errorf("encode follow preferences: %w", err)
	}

	query, args, err := qb.Update("follows").
		Set("preferences", preferences).
		Set("updated_at", timeOrNow(item.UpdatedAt)).
		Where(
			qb.Eq("user_id", strings.TrimSpace(item.UserID)),
			qb.Eq("entity_type", string(item.EntityType)),
			qb.Eq("entity_id", strings.TrimSpace(item.EntityID)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update follow preferences query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update follow preferences %s/%s: %w", item.EntityType, item.EntityID, err)
	}
	affected, err := rowsAffected(result)
	if err != nil {
		return fmt.Errorf("update follow preferences rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("follow %s/%s not found", item.EntityType, item.EntityID)
	}
	return nil
}

func (r *FollowRepository) CountByUser(ctx context.Context, userID string) (map[follow.EntityType]int, error) {
	query, args, err := qb.Select("entity_type", "COUNT(1) AS total").From("follows").
		Where(
			qb.Eq("user_id", strings.TrimSpace(userID)),
			qb.IsNull("deleted_at"),
		).
		GroupBy("entity_type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count follows query: %w", err)
	}

	var rows []followCountRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count follows by user: %w", err)
	}

	out := make(map[follow.EntityType]int, len(rows))
	for _, row := range rows {
		out[follow.EntityType(row.EntityType)] = row.Total
	}
	return out, nil
}

func (r *FollowRepository) ListByUser(ctx context.Context, userID string) ([]follow.Follow, error) {
	query, args, err := qb.Select("*").From("follows").
		Where(
			qb.Eq("user_id", strings.TrimSpace(userID)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list follows by user query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *FollowRepository) ListActiveByEntity(ctx context.Context, entityType follow.EntityType, entityID string) ([]follow.Follow, error) {
	query, args, err := qb.Select("*").From("follows").
		Where(
			qb.Eq("entity_type", string(entityType)),
			qb.Eq("entity_id", strings.TrimSpace(entityID)),
			qb.Eq("active", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list follows by entity query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *FollowRepository) list(ctx context.Context, query string, args []any) ([]follow.Follow, error) {
	var rows []followTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select follows: %w", err)
	}

	out := make([]follow.Follow, 0, len(rows))
	for _, row := range rows {
		item, err := followFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func followFromRow(row followTableModel) (follow.Follow, error) {
	preferences := follow.DefaultPreferences()
	if err := decodeJSON(row.Preferences, &preferences); err != nil {
		return follow.Follow{}, fmt.Errorf("decode follow %s preferences: %w", row.PublicID, err)
	}

	return follow.Follow{
		ID:          row.PublicID,
		UserID:      row.UserID,
		EntityType:  follow.EntityType(row.EntityType),
		EntityID:    row.EntityID,
		Preferences: preferences,
		Active:      row.Active,
		Status:      follow.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
