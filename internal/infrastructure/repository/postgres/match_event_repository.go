package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type MatchEventRepository struct {
	db dbtx
}

func NewMatchEventRepository(db *sqlx.DB) *MatchEventRepository {
	return &MatchEventRepository{db: db}
}

func (r *MatchEventRepository) ListProviderEventIDs(ctx context.Context, matchID string) (map[string]struct{}, error) {
	query, args, err := qb.Select("provider_event_id").From("match_events").
		Where(qb.Eq("match_public_id", strings.TrimSpace(matchID))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list provider event ids query: %w", err)
	}

	var ids []string
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list provider event ids match=%s: %w", matchID, err)
	}

	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// Insert maps the (match, provider event id) unique index to matchevent.ErrDuplicate.
func (r *MatchEventRepository) Insert(ctx context.Context, item matchevent.Event) error {
	if err := item.Validate(); err != nil {
		return err
	}

	payload := "{}"
	if len(item.Payload) > 0 {
		encoded, err := encodeJSON(item.Payload)
		if err != nil {
			return fmt.Errorf("encode match event payload: %w", err)
		}
		payload = encoded
	}

	publicID := strings.TrimSpace(item.ID)
	if publicID == "" {
		publicID = item.ProviderEventID
	}

	query, args, err := qb.InsertModel("match_events", matchEventInsertModel{
		PublicID:        publicID,
		MatchPublicID:   item.MatchID,
		ProviderEventID: item.ProviderEventID,
		EventType:       item.Type,
		Detail:          item.Detail,
		TeamID:          nullableString(item.TeamID),
		PlayerID:        nullableString(item.PlayerID),
		PlayerName:      item.PlayerName,
		AssistName:      item.AssistName,
		Elapsed:         item.Elapsed,
		Extra:           item.Extra,
		OccurredAt:      timeOrNow(item.OccurredAt),
		Payload:         payload,
		CreatedAt:       timeOrNow(item.CreatedAt),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match event query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return matchevent.ErrDuplicate
		}
		return fmt.Errorf("insert match event %s: %w", item.ProviderEventID, err)
	}
	return nil
}

func (r *MatchEventRepository) ListByMatch(ctx context.Context, matchID string) ([]matchevent.Event, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(qb.Eq("match_public_id", strings.TrimSpace(matchID))).
		OrderBy("elapsed", "COALESCE(extra, 0)", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match events query: %w", err)
	}

	var rows []matchEventTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match events match=%s: %w", matchID, err)
	}

	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		payload := make(map[string]any)
		if err := decodeJSON(row.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode match event %s payload: %w", row.PublicID, err)
		}
		out = append(out, matchevent.Event{
			ID:              row.PublicID,
			MatchID:         row.MatchPublicID,
			ProviderEventID: row.ProviderEventID,
			Type:            row.EventType,
			Detail:          row.Detail,
			TeamID:          row.TeamID.String,
			PlayerID:        row.PlayerID.String,
			PlayerName:      row.PlayerName,
			AssistName:      row.AssistName,
			Elapsed:         row.Elapsed,
			Extra:           row.Extra,
			OccurredAt:      row.OccurredAt,
			Payload:         payload,
			CreatedAt:       row.CreatedAt,
		})
	}
	return out, nil
}
