package place

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/triplore/triplore/app/observability/metrics"
	generativeAI "github.com/triplore/triplore/internal/api/generative_ai"
	"github.com/triplore/triplore/internal/store"
	"github.com/triplore/triplore/internal/types"
)

// NoLikedPlacesAdvisory is returned instead of calling the AI gateway when
// the user has no liked places yet.
const NoLikedPlacesAdvisory = "Mark your favorite places first to get recommendations."

var _ Service = (*ServiceImpl)(nil)

// Service is the business logic for map points, liked places and travel
// recommendations. The ForProfile variants verify the user exists before any
// read and fail with types.ErrUserNotFound; the plain variants treat an
// unknown user as an empty collection. AddLikedPlace always verifies the
// user.
type Service interface {
	GetPointInfo(ctx context.Context, latitude, longitude float64) string
	AddLikedPlace(ctx context.Context, userID int64, cityName string, latitude, longitude float64) (*types.LikedPlace, error)
	GetLikedPlaces(ctx context.Context, userID int64) ([]types.LikedPlace, error)
	GetLikedPlacesForProfile(ctx context.Context, userID int64) ([]types.LikedPlace, error)
	GenerateRecommendations(ctx context.Context, userID int64) (string, error)
	GenerateRecommendationsForProfile(ctx context.Context, userID int64) (string, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	uow    store.UnitOfWork
	ai     generativeAI.Gateway
}

func NewServiceImpl(uow store.UnitOfWork, ai generativeAI.Gateway, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		uow:    uow,
		ai:     ai,
	}
}

// GetPointInfo delegates to the AI gateway. The gateway never fails; a
// degraded answer is still a plain string.
func (s *ServiceImpl) GetPointInfo(ctx context.Context, latitude, longitude float64) string {
	return s.ai.GetPlaceInfo(ctx, latitude, longitude)
}

// AddLikedPlace stores a liked place for the user, or returns the existing
// entry when the exact coordinate pair is already liked. The dedup scan uses
// Coordinate.Equal; a different city name for known coordinates does not
// create a new entry, the first name wins.
func (s *ServiceImpl) AddLikedPlace(ctx context.Context, userID int64, cityName string, latitude, longitude float64) (*types.LikedPlace, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "AddLikedPlace", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	requested := types.Coordinate{Latitude: latitude, Longitude: longitude}
	var result *types.LikedPlace
	err := s.uow.Do(ctx, func(ctx context.Context, st store.Stores) error {
		user, err := st.Users.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrPlaceService, err)
		}
		if user == nil {
			return types.ErrUserNotFound
		}

		places, err := st.Places.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrPlaceService, err)
		}
		for i := range places {
			if places[i].Coordinate.Equal(requested) {
				result = &places[i]
				metrics.Get().LikedPlacesDedupTotal.Add(ctx, 1)
				span.AddEvent("duplicate coordinates, returning existing place")
				return nil
			}
		}

		added, err := st.Places.Add(ctx, types.LikedPlace{
			UserID:     userID,
			CityName:   cityName,
			Coordinate: requested,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrPlaceService, err)
		}
		result = added
		metrics.Get().LikedPlacesAddedTotal.Add(ctx, 1)
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to add liked place",
			slog.Int64("userID", userID), slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "liked place resolved")
	return result, nil
}

func (s *ServiceImpl) GetLikedPlaces(ctx context.Context, userID int64) ([]types.LikedPlace, error) {
	return s.listLikedPlaces(ctx, userID, false)
}

func (s *ServiceImpl) GetLikedPlacesForProfile(ctx context.Context, userID int64) ([]types.LikedPlace, error) {
	return s.listLikedPlaces(ctx, userID, true)
}

func (s *ServiceImpl) listLikedPlaces(ctx context.Context, userID int64, mustExist bool) ([]types.LikedPlace, error) {
	var places []types.LikedPlace
	err := s.uow.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if mustExist {
			user, err := st.Users.FindByID(ctx, userID)
			if err != nil {
				return fmt.Errorf("%w: %w", types.ErrPlaceService, err)
			}
			if user == nil {
				return types.ErrUserNotFound
			}
		}
		var err error
		places, err = st.Places.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrPlaceService, err)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list liked places",
			slog.Int64("userID", userID), slog.Any("error", err))
		return nil, err
	}
	return places, nil
}

func (s *ServiceImpl) GenerateRecommendations(ctx context.Context, userID int64) (string, error) {
	return s.generateRecommendations(ctx, userID, false)
}

func (s *ServiceImpl) GenerateRecommendationsForProfile(ctx context.Context, userID int64) (string, error) {
	return s.generateRecommendations(ctx, userID, true)
}

func (s *ServiceImpl) generateRecommendations(ctx context.Context, userID int64, mustExist bool) (string, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "GenerateRecommendations", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()
	start := time.Now()

	places, err := s.listLikedPlaces(ctx, userID, mustExist)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if len(places) == 0 {
		span.AddEvent("no liked places, skipping AI call")
		return NoLikedPlacesAdvisory, nil
	}

	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.CityName
	}
	// Most-recently-liked first, matching the listing order.
	recommendation := s.ai.GetTravelRecommendation(ctx, strings.Join(names, ", "))
	metrics.Get().RecommendationDuration.Record(ctx, time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "recommendation generated")
	return recommendation, nil
}
