package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
	"github.com/riskibarqy/matchday/internal/domain/venue"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// PlaceFinder looks a place up by name and city. A nil result means nothing was found.
type PlaceFinder interface {
	FindPlaceInfo(ctx context.Context, name, city string) (*stadiumguide.PlaceInfo, error)
}

type RefreshGuidesResult struct {
	Requested   int `json:"requested"`
	Refreshed   int `json:"refreshed"`
	Placeholder int `json:"placeholder"`
	Missing     int `json:"missing"`
	Failed      int `json:"failed"`
}

type StadiumGuideService struct {
	venueRepo   venue.Repository
	guideRepo   stadiumguide.Repository
	finder      PlaceFinder
	concurrency int
	logger      *logging.Logger
	now         func() time.Time
}

func NewStadiumGuideService(
	venueRepo venue.Repository,
	guideRepo stadiumguide.Repository,
	finder PlaceFinder,
	concurrency int,
	logger *logging.Logger,
) *StadiumGuideService {
	if logger == nil {
		logger = logging.Default()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &StadiumGuideService{
		venueRepo:   venueRepo,
		guideRepo:   guideRepo,
		finder:      finder,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// EnrichVenue builds and stores the guide for one venue. Lookup failures fall back to a
// guide assembled from the venue record alone.
func (s *StadiumGuideService) EnrichVenue(ctx context.Context, item venue.Venue) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StadiumGuideService.EnrichVenue")
	defer span.End()

	_, err := s.enrich(ctx, item)
	return err
}

func (s *StadiumGuideService) enrich(ctx context.Context, item venue.Venue) (stadiumguide.Guide, error) {
	if strings.TrimSpace(item.ID) == "" {
		return stadiumguide.Guide{}, fmt.Errorf("%w: venue id is required", ErrInvalidInput)
	}

	var info *stadiumguide.PlaceInfo
	if s.finder != nil {
		found, err := s.finder.FindPlaceInfo(ctx, item.Name, item.City)
		if err != nil {
			s.logger.WarnContext(ctx, "place lookup failed, using placeholder guide",
				"venue_id", item.ID,
				"error", err,
			)
		} else {
			info = found
		}
	}

	guide := placeholderGuide(item)
	if info != nil {
		guide = placesGuide(item, *info)
	}
	guide.GeneratedAt = s.now().UTC()

	if err := s.guideRepo.Upsert(ctx, guide); err != nil {
		return stadiumguide.Guide{}, fmt.Errorf("upsert stadium guide: %w", err)
	}
	return guide, nil
}

// RefreshGuides regenerates guides for the given venues on a bounded pool.
func (s *StadiumGuideService) RefreshGuides(ctx context.Context, venueIDs []string) (RefreshGuidesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StadiumGuideService.RefreshGuides")
	defer span.End()

	venueIDs = uniqueTrimmed(venueIDs)
	result := RefreshGuidesResult{Requested: len(venueIDs)}
	if len(venueIDs) == 0 {
		return result, fmt.Errorf("%w: at least one venue id is required", ErrInvalidInput)
	}

	type outcome struct {
		source string
		err    error
		found  bool
	}

	p := pool.NewWithResults[outcome]().WithMaxGoroutines(s.concurrency)
	for _, venueID := range venueIDs {
		p.Go(func() outcome {
			item, exists, err := s.venueRepo.GetByID(ctx, venueID)
			if err != nil {
				return outcome{err: fmt.Errorf("get venue %s: %w", venueID, err)}
			}
			if !exists {
				return outcome{}
			}
			guide, err := s.enrich(ctx, item)
			if err != nil {
				return outcome{found: true, err: err}
			}
			return outcome{found: true, source: guide.Source}
		})
	}

	for _, out := range p.Wait() {
		switch {
		case out.err != nil:
			result.Failed++
			s.logger.WarnContext(ctx, "refresh stadium guide failed", "error", out.err)
		case !out.found:
			result.Missing++
		case out.source == stadiumguide.SourcePlaceholder:
			result.Placeholder++
			result.Refreshed++
		default:
			result.Refreshed++
		}
	}
	return result, nil
}

func (s *StadiumGuideService) GetGuide(ctx context.Context, venueID string) (stadiumguide.Guide, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StadiumGuideService.GetGuide")
	defer span.End()

	guide, exists, err := s.guideRepo.GetByVenueID(ctx, strings.TrimSpace(venueID))
	if err != nil {
		return stadiumguide.Guide{}, fmt.Errorf("get stadium guide: %w", err)
	}
	if !exists {
		return stadiumguide.Guide{}, fmt.Errorf("%w: stadium guide venue=%s", ErrNotFound, venueID)
	}
	return guide, nil
}

func placeholderGuide(item venue.Venue) stadiumguide.Guide {
	about := item.Name
	if item.City != "" {
		about += " is located in " + item.City + "."
	} else {
		about += " hosts league fixtures."
	}
	if item.Capacity != nil && *item.Capacity > 0 {
		about += fmt.Sprintf(" It holds %d spectators.", *item.Capacity)
	}

	return stadiumguide.Guide{
		VenueID: item.ID,
		Title:   item.Name + " visitor guide",
		Sections: []stadiumguide.Section{
			{Heading: "About the stadium", Body: about},
			{Heading: "Getting there", Body: "Check local transport operators for matchday services."},
		},
		Facilities: []string{},
		ImageURLs:  []string{},
		Source:     stadiumguide.SourcePlaceholder,
	}
}

func placesGuide(item venue.Venue, info stadiumguide.PlaceInfo) stadiumguide.Guide {
	guide := placeholderGuide(item)
	guide.Source = stadiumguide.SourcePlaces
	if overview := strings.TrimSpace(info.Overview); overview != "" {
		guide.Sections[0].Body = overview
	}
	if len(info.Attractions) > 0 {
		guide.Sections = append(guide.Sections, stadiumguide.Section{
			Heading: "Nearby attractions",
			Items:   info.Attractions,
		})
	}
	if len(info.Restaurants) > 0 {
		guide.Sections = append(guide.Sections, stadiumguide.Section{
			Heading: "Food and drink",
			Items:   info.Restaurants,
		})
	}
	if len(info.Facilities) > 0 {
		guide.Facilities = info.Facilities
	}
	if len(info.Images) > 0 {
		guide.ImageURLs = info.Images
	}
	return guide
}
