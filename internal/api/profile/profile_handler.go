package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/triplore/triplore/internal/api"
	"github.com/triplore/triplore/internal/api/auth"
	"github.com/triplore/triplore/internal/api/place"
	"github.com/triplore/triplore/internal/types"
)

// HandlerImpl serves the profile page data. Unlike the map endpoints it is
// strict about account existence: a token whose user has been deleted gets
// 401 on every operation.
type HandlerImpl struct {
	places place.Service
	logger *slog.Logger
}

func NewHandlerImpl(places place.Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		places: places,
		logger: logger,
	}
}

// GetLikedPlaces handles GET /api/v1/profile/places.
func (h *HandlerImpl) GetLikedPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "GetLikedPlaces")
	defer span.End()
	r = r.WithContext(ctx)

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID))

	places, err := h.places.GetLikedPlacesForProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "unknown user")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load profile places", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not load profile")
		return
	}
	if places == nil {
		places = []types.LikedPlace{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

// GetRecommendations handles GET /api/v1/profile/recommendations.
func (h *HandlerImpl) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "GetRecommendations")
	defer span.End()
	r = r.WithContext(ctx)

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID))

	recommendation, err := h.places.GenerateRecommendationsForProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "unknown user")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to generate profile recommendations", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not generate recommendations")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.RecommendationResponse{Recommendation: recommendation})
}
