package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/team"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type TeamRepository struct {
	db dbtx
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}

	var row teamTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return team.Team{
		ID:        row.PublicID,
		LeagueID:  row.LeagueID.String,
		Name:      row.Name,
		ShortName: row.ShortName,
		LogoURL:   row.LogoURL,
		TeamRefID: nullInt64ToInt64(row.TeamRefID),
	}, true, nil
}

// Create leaves an existing team untouched; teams are never renamed by ingestion.
func (r *TeamRepository) Create(ctx context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.Upsert("teams", teamInsertModel{
		PublicID:  item.ID,
		LeagueID:  nullableString(item.LeagueID),
		Name:      item.Name,
		ShortName: item.ShortName,
		LogoURL:   item.LogoURL,
		TeamRefID: nullableInt64(item.TeamRefID),
	}).OnConflict("deleted_at IS NULL", "public_id").DoNothing().ToSQL()
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team %s: %w", item.ID, err)
	}

	return nil
}
