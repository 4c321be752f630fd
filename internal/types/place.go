package types

// Coordinate is a geographic point used as the uniqueness key for liked
// places. Equality is exact float64 equality: two coordinates that differ in
// representation only (e.g. client-side rounding) are distinct. Keep every
// dedup comparison behind Equal so the comparison rule stays in one place.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) Equal(other Coordinate) bool {
	return c.Latitude == other.Latitude && c.Longitude == other.Longitude
}

// LikedPlace is a user-labeled geographic point the user flagged as a
// favorite. ID is assigned by the store on insert.
type LikedPlace struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	CityName string `json:"city_name"`
	Coordinate
}

// LikePlaceRequest is the body for POST /places/like.
type LikePlaceRequest struct {
	CityName  string  `json:"city_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PointInfoRequest is the body for the map point-info and reverse-geocode
// endpoints.
type PointInfoRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PointInfoResponse carries the AI description of a map point.
type PointInfoResponse struct {
	Info string `json:"info"`
}

// RecommendationResponse carries the AI travel recommendation text.
type RecommendationResponse struct {
	Recommendation string `json:"recommendation"`
}

// SearchLocationRequest is the body for POST /map/search-location. Query may
// be free text; it is normalized to a short geocodable query first.
type SearchLocationRequest struct {
	Query string `json:"query"`
}

// SearchLocationResponse is the best geocoding match for a query.
type SearchLocationResponse struct {
	DisplayName *string  `json:"display_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// ReverseGeocodeResponse combines the Nominatim address with the optional AI
// description of the point.
type ReverseGeocodeResponse struct {
	DisplayName *string        `json:"display_name"`
	Address     map[string]any `json:"address,omitempty"`
	Info        *string        `json:"info,omitempty"`
}
