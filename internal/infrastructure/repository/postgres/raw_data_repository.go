package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/rawdata"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

// UpsertMany writes the batch in one transaction. Rows whose hash is unchanged keep
// their original fetched_at.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := rawDataPayloadInsertModel{
			Source:         item.Source,
			EntityType:     item.EntityType,
			EntityKey:      item.EntityKey,
			LeaguePublicID: nullableString(item.LeagueID),
			MatchPublicID:  nullableString(item.MatchID),
			Payload:        item.PayloadJSON,
			PayloadHash:    item.PayloadHash,
			FetchedAt:      timeOrNow(item.FetchedAt),
		}

		query, args, err := qb.Upsert("raw_data_payloads", insertModel).
			OnConflict("", "source", "entity_type", "entity_key").
			DoUpdate().
			UpdateWhere("raw_data_payloads.payload_hash <> EXCLUDED.payload_hash").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert raw payload query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw payload entity=%s key=%s: %w", item.EntityType, item.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}

	return nil
}

type rawDataPayloadInsertModel struct {
	Source         string    `db:"source"`
	EntityType     string    `db:"entity_type"`
	EntityKey      string    `db:"entity_key"`
	LeaguePublicID *string   `db:"league_public_id"`
	MatchPublicID  *string   `db:"match_public_id"`
	Payload        string    `db:"payload"`
	PayloadHash    string    `db:"payload_hash"`
	FetchedAt      time.Time `db:"fetched_at"`
}

func (r *RawDataRepository) DeleteFetchedBefore(ctx context.Context, before time.Time) (int, error) {
	query, args, err := qb.DeleteFrom("raw_data_payloads").
		Where(qb.Expr("fetched_at < ?", before.UTC())).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete raw payloads query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete raw payloads: %w", err)
	}
	return rowsAffected(result)
}
