package place

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/triplore/triplore/internal/api"
	"github.com/triplore/triplore/internal/api/auth"
	generativeAI "github.com/triplore/triplore/internal/api/generative_ai"
	"github.com/triplore/triplore/internal/api/geocoding"
	"github.com/triplore/triplore/internal/types"
)

// Geocoder is the slice of the Nominatim client the handler needs.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (*geocoding.Result, error)
	Search(ctx context.Context, query string) (*geocoding.Result, error)
}

type HandlerImpl struct {
	service  Service
	geocoder Geocoder
	ai       generativeAI.Gateway
	logger   *slog.Logger
}

func NewHandlerImpl(service Service, geocoder Geocoder, ai generativeAI.Gateway, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service:  service,
		geocoder: geocoder,
		ai:       ai,
		logger:   logger,
	}
}

func validCoordinates(latitude, longitude float64) bool {
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

// GetPointInfo handles POST /api/v1/map/point-info. When the AI gateway had
// to degrade, the handler reports 503 so clients can retry.
func (h *HandlerImpl) GetPointInfo(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "GetPointInfo")
	defer span.End()
	r = r.WithContext(ctx)

	var req types.PointInfoRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}

	info := h.service.GetPointInfo(ctx, req.Latitude, req.Longitude)
	if info == generativeAI.FallbackPlaceInfo {
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, info)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.PointInfoResponse{Info: info})
}

// ReverseGeocode handles POST /api/v1/map/reverse-geocode. The resolved
// address is enriched with an AI description that takes the user's liked
// places into account when available.
func (h *HandlerImpl) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "ReverseGeocode")
	defer span.End()
	r = r.WithContext(ctx)

	var req types.PointInfoRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}

	result, err := h.geocoder.ReverseGeocode(ctx, req.Latitude, req.Longitude)
	if err != nil {
		h.logger.ErrorContext(ctx, "Reverse geocoding failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "could not resolve address")
		return
	}

	// Preferences are best-effort: an anonymous or failing lookup just means
	// an unpersonalized description.
	var likedPlaces string
	if userID, ok := auth.GetUserIDFromContext(ctx); ok {
		if places, err := h.service.GetLikedPlaces(ctx, userID); err == nil {
			names := make([]string, len(places))
			for i, p := range places {
				names[i] = p.CityName
			}
			likedPlaces = strings.Join(names, ", ")
		}
	}

	var address string
	if result.DisplayName != nil {
		address = *result.DisplayName
	}
	info := h.ai.GetPlaceInfoWithAddress(ctx, address, req.Latitude, req.Longitude, likedPlaces)

	resp := types.ReverseGeocodeResponse{
		DisplayName: result.DisplayName,
		Address:     result.Address,
	}
	if info != "" && info != generativeAI.FallbackPlaceInfo {
		resp.Info = &info
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// SearchLocation handles POST /api/v1/map/search-location. Free text is
// reduced to a short geocodable query by the AI gateway before hitting
// Nominatim; if normalization yields nothing the raw text is used.
func (h *HandlerImpl) SearchLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "SearchLocation")
	defer span.End()
	r = r.WithContext(ctx)

	var req types.SearchLocationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "query is required")
		return
	}

	query := h.ai.NormalizeLocationQuery(ctx, req.Query)
	if query == "" {
		query = req.Query
	}

	result, err := h.geocoder.Search(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "Location search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "could not search location")
		return
	}
	if result.DisplayName == nil && result.Latitude == nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "no matching location")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.SearchLocationResponse{
		DisplayName: result.DisplayName,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
	})
}

// LikePlace handles POST /api/v1/places/like. Liking already-liked
// coordinates returns the existing entry with 200 instead of 201.
func (h *HandlerImpl) LikePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "LikePlace")
	defer span.End()
	r = r.WithContext(ctx)

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID))

	var req types.LikePlaceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if n := utf8.RuneCountInString(req.CityName); n < 1 || n > 100 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city_name must be between 1 and 100 characters")
		return
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}

	liked, err := h.service.AddLikedPlace(ctx, userID, req.CityName, req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "unknown user")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to like place", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not save place")
		return
	}

	// Duplicate coordinates resolve to the stored entry; the response carries
	// its id and original city name either way.
	api.WriteJSONResponse(w, r, http.StatusCreated, liked)
}

// ListLikedPlaces handles GET /api/v1/places.
func (h *HandlerImpl) ListLikedPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "ListLikedPlaces")
	defer span.End()
	r = r.WithContext(ctx)

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	places, err := h.service.GetLikedPlaces(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list liked places", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not list places")
		return
	}
	if places == nil {
		places = []types.LikedPlace{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

// Recommendations handles GET /api/v1/places/recommendations.
func (h *HandlerImpl) Recommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "Recommendations")
	defer span.End()
	r = r.WithContext(ctx)

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	recommendation, err := h.service.GenerateRecommendations(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate recommendations", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not generate recommendations")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.RecommendationResponse{Recommendation: recommendation})
}
