package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	byName map[string]*stadiumguide.PlaceInfo
	err    error
}

func (f stubFinder) FindPlaceInfo(_ context.Context, name, _ string) (*stadiumguide.PlaceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[name], nil
}

func newGuideService(t *testing.T, finder usecase.PlaceFinder) (*usecase.StadiumGuideService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	memory.Seed(store)
	service := usecase.NewStadiumGuideService(
		memory.NewVenueRepository(store),
		memory.NewStadiumGuideRepository(store),
		finder,
		2,
		logging.NewNop(),
	)
	return service, store
}

func TestStadiumGuideService_RefreshUsesPlacesWhenFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := newGuideService(t, stubFinder{byName: map[string]*stadiumguide.PlaceInfo{
		"Emirates Stadium": {
			Overview:    "Home of Arsenal since 2006.",
			Restaurants: []string{"The Tollington Arms"},
			Facilities:  []string{"Wheelchair access"},
		},
	}})

	result, err := service.RefreshGuides(ctx, []string{"venue-emirates", "venue-jis", "venue-unknown", "venue-jis"})
	require.NoError(t, err)
	assert.Equal(t, usecase.RefreshGuidesResult{Requested: 3, Refreshed: 2, Placeholder: 1, Missing: 1}, result)

	emirates, err := service.GetGuide(ctx, "venue-emirates")
	require.NoError(t, err)
	assert.Equal(t, stadiumguide.SourcePlaces, emirates.Source)
	assert.Equal(t, "Home of Arsenal since 2006.", emirates.Sections[0].Body)
	assert.Equal(t, []string{"Wheelchair access"}, emirates.Facilities)
	require.Len(t, emirates.Sections, 3)
	assert.Equal(t, "Food and drink", emirates.Sections[2].Heading)
	assert.False(t, emirates.GeneratedAt.IsZero())
}

func TestStadiumGuideService_FallsBackToPlaceholder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, store := newGuideService(t, stubFinder{err: errors.New("quota exceeded")})

	item, found, err := memory.NewVenueRepository(store).GetByID(ctx, "venue-jis")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, service.EnrichVenue(ctx, item))

	guide, err := service.GetGuide(ctx, "venue-jis")
	require.NoError(t, err)
	assert.Equal(t, stadiumguide.SourcePlaceholder, guide.Source)
	assert.Equal(t, "Jakarta International Stadium visitor guide", guide.Title)
	assert.Equal(t, "Jakarta International Stadium is located in Jakarta. It holds 82000 spectators.", guide.Sections[0].Body)
	assert.Empty(t, guide.Facilities)
}

func TestStadiumGuideService_Validation(t *testing.T) {
	t.Parallel()

	service, _ := newGuideService(t, nil)
	_, err := service.RefreshGuides(context.Background(), []string{" "})
	require.ErrorIs(t, err, usecase.ErrInvalidInput)

	_, err = service.GetGuide(context.Background(), "venue-jis")
	require.ErrorIs(t, err, usecase.ErrNotFound)
}
