package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/team"
	basecache "github.com/riskibarqy/matchday/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTeamRepo struct {
	items map[string]team.Team
	gets  int
	err   error
}

func (r *countingTeamRepo) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.gets++
	if r.err != nil {
		return team.Team{}, false, r.err
	}
	item, ok := r.items[teamID]
	return item, ok, nil
}

func (r *countingTeamRepo) Create(_ context.Context, item team.Team) error {
	r.items[item.ID] = item
	return nil
}

func TestTeamRepository_CachesHitsAndMisses(t *testing.T) {
	t.Parallel()

	next := &countingTeamRepo{items: map[string]team.Team{"eng-ars": {ID: "eng-ars", Name: "Arsenal"}}}
	repo := NewTeamRepository(next, basecache.NewStore(time.Minute))
	ctx := context.Background()

	for range 3 {
		item, ok, err := repo.GetByID(ctx, "eng-ars")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Arsenal", item.Name)
	}
	_, ok, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, _ = repo.GetByID(ctx, "missing")

	assert.Equal(t, 2, next.gets)
}

func TestTeamRepository_CreateEvictsCachedMiss(t *testing.T) {
	t.Parallel()

	next := &countingTeamRepo{items: map[string]team.Team{}}
	repo := NewTeamRepository(next, basecache.NewStore(time.Minute))
	ctx := context.Background()

	_, ok, err := repo.GetByID(ctx, "eng-che")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Create(ctx, team.Team{ID: "eng-che", Name: "Chelsea"}))

	item, ok, err := repo.GetByID(ctx, "eng-che")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Chelsea", item.Name)
}

func TestTeamRepository_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &countingTeamRepo{items: map[string]team.Team{}, err: errors.New("db down")}
	repo := NewTeamRepository(next, basecache.NewStore(time.Minute))

	_, _, err := repo.GetByID(context.Background(), "eng-ars")
	require.Error(t, err)
	_, _, err = repo.GetByID(context.Background(), "eng-ars")
	require.Error(t, err)
	assert.Equal(t, 2, next.gets)
}
