package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/match"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

var matchColumns = []string{
	"m.*",
	`COALESCE((SELECT jsonb_object_agg(e.provider, e.external_id) FROM match_external_ids e WHERE e.match_public_id = m.public_id), '{}'::jsonb)::text AS external_ids`,
}

type MatchRepository struct {
	db dbtx
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches m").
		Where(
			qb.Eq("m.public_id", strings.TrimSpace(matchID)),
			qb.IsNull("m.deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, provider, externalID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches m").
		Where(
			qb.Expr("m.public_id = (SELECT x.match_public_id FROM match_external_ids x WHERE x.provider = ? AND x.external_id = ?)",
				strings.TrimSpace(provider), strings.TrimSpace(externalID)),
			qb.IsNull("m.deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by external id query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertModel("matches", matchInsertModel{
		PublicID:   item.ID,
		LeagueID:   item.LeagueID,
		Season:     item.Season,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		VenueID:    nullableString(item.VenueID),
		StartTime:  item.StartTime.UTC(),
		Status:     string(item.Status),
		Elapsed:    item.Elapsed,
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
		CreatedAt:  timeOrNow(item.CreatedAt),
		UpdatedAt:  timeOrNow(item.UpdatedAt),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match %s: %w", item.ID, err)
	}

	return r.upsertExternalIDs(ctx, item.ID, item.ExternalIDs)
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.Update("matches").
		Set("status", string(item.Status)).
		Set("start_time", item.StartTime.UTC()).
		Set("elapsed", item.Elapsed).
		Set("home_score", item.HomeScore).
		Set("away_score", item.AwayScore).
		Set("venue_public_id", nullableString(item.VenueID)).
		Set("updated_at", timeOrNow(item.UpdatedAt)).
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match %s: %w", item.ID, err)
	}
	affected, err := rowsAffected(result)
	if err != nil {
		return fmt.Errorf("update match %s rows affected: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update match %s: not found", item.ID)
	}

	return r.upsertExternalIDs(ctx, item.ID, item.ExternalIDs)
}

func (r *MatchRepository) ListByStatuses(ctx context.Context, statuses []match.Status) ([]match.Match, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}

	query, args, err := qb.Select(matchColumns...).From("matches m").
		Where(
			qb.InStrings("m.status", values),
			qb.IsNull("m.deleted_at"),
		).
		OrderBy("m.start_time", "m.public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by statuses query: %w", err)
	}

	return r.list(ctx, query, args)
}

// ListByVenueBetween returns matches at venueID kicking off in [from, to).
func (r *MatchRepository) ListByVenueBetween(ctx context.Context, venueID string, from, to time.Time) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches m").
		Where(
			qb.Eq("m.venue_public_id", strings.TrimSpace(venueID)),
			qb.Expr("m.start_time >= ?", from.UTC()),
			qb.Expr("m.start_time < ?", to.UTC()),
			qb.IsNull("m.deleted_at"),
		).
		OrderBy("m.start_time", "m.public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by venue query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *MatchRepository) upsertExternalIDs(ctx context.Context, matchID string, externalIDs map[string]string) error {
	for provider, externalID := range externalIDs {
		if strings.TrimSpace(externalID) == "" {
			continue
		}
		query, args, err := qb.Upsert("match_external_ids", matchExternalIDInsertModel{
			Provider:      provider,
			ExternalID:    externalID,
			MatchPublicID: matchID,
		}).OnConflict("", "match_public_id", "provider").DoUpdate("external_id").ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert match external id query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert match %s external id provider=%s: %w", matchID, provider, err)
		}
	}
	return nil
}

func (r *MatchRepository) getOne(ctx context.Context, query string, args []any) (match.Match, bool, error) {
	var row matchTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	item, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) list(ctx context.Context, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	externalIDs := make(map[string]string)
	if err := decodeJSON(row.ExternalIDs, &externalIDs); err != nil {
		return match.Match{}, fmt.Errorf("decode match %s external ids: %w", row.PublicID, err)
	}

	return match.Match{
		ID:          row.PublicID,
		LeagueID:    row.LeagueID,
		Season:      row.Season,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		VenueID:     row.VenueID.String,
		StartTime:   row.StartTime.UTC(),
		Status:      match.Status(row.Status),
		Elapsed:     row.Elapsed,
		HomeScore:   row.HomeScore,
		AwayScore:   row.AwayScore,
		ExternalIDs: externalIDs,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func timeOrNow(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now().UTC()
	}
	return value.UTC()
}

type MatchStateRepository struct {
	db dbtx
}

func NewMatchStateRepository(db *sqlx.DB) *MatchStateRepository {
	return &MatchStateRepository{db: db}
}

func (r *MatchStateRepository) Get(ctx context.Context, matchID string) (match.State, bool, error) {
	query, args, err := qb.Select("*").From("match_states").
		Where(qb.Eq("match_public_id", strings.TrimSpace(matchID))).
		ToSQL()
	if err != nil {
		return match.State{}, false, fmt.Errorf("build get match state query: %w", err)
	}

	var row matchStateTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.State{}, false, nil
		}
		return match.State{}, false, fmt.Errorf("get match state: %w", err)
	}

	return match.State{
		MatchID:     row.MatchPublicID,
		Minute:      row.Minute,
		Phase:       match.Phase(row.Phase),
		HomeScore:   row.HomeScore,
		AwayScore:   row.AwayScore,
		LastEventID: row.LastEventID.String,
		UpdatedAt:   row.UpdatedAt,
	}, true, nil
}

func (r *MatchStateRepository) Upsert(ctx context.Context, state match.State) error {
	query, args, err := qb.Upsert("match_states", matchStateInsertModel{
		MatchPublicID: state.MatchID,
		Minute:        state.Minute,
		Phase:         string(state.Phase),
		HomeScore:     state.HomeScore,
		AwayScore:     state.AwayScore,
		LastEventID:   nullableString(state.LastEventID),
		UpdatedAt:     timeOrNow(state.UpdatedAt),
	}).
		OnConflict("", "match_public_id").
		DoUpdate().
		SetExpr("last_event_id", "COALESCE(EXCLUDED.last_event_id, match_states.last_event_id)").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert match state query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match state %s: %w", state.MatchID, err)
	}
	return nil
}
