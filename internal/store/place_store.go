package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/triplore/triplore/internal/types"
)

var _ PlaceStore = (*PostgresPlaceStore)(nil)

// PlaceStore persists liked places per user.
type PlaceStore interface {
	// ListByUser returns the user's liked places most-recently-created first
	// (descending by id). An unknown user yields an empty slice.
	ListByUser(ctx context.Context, userID int64) ([]types.LikedPlace, error)
	Add(ctx context.Context, place types.LikedPlace) (*types.LikedPlace, error)
}

type PostgresPlaceStore struct {
	db     Querier
	logger *slog.Logger
}

func NewPostgresPlaceStore(db Querier, logger *slog.Logger) *PostgresPlaceStore {
	return &PostgresPlaceStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresPlaceStore) ListByUser(ctx context.Context, userID int64) ([]types.LikedPlace, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, city_name, latitude, longitude
         FROM liked_places
         WHERE user_id = $1
         ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked places: %w", err)
	}
	defer rows.Close()

	var places []types.LikedPlace
	for rows.Next() {
		var p types.LikedPlace
		if err := rows.Scan(&p.ID, &p.UserID, &p.CityName, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scan liked place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked places: %w", err)
	}
	return places, nil
}

// Add inserts the place and returns it with the store-assigned id. There is
// no unique constraint on (user_id, latitude, longitude); deduplication is an
// application-level rule in the place service.
func (s *PostgresPlaceStore) Add(ctx context.Context, place types.LikedPlace) (*types.LikedPlace, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO liked_places (user_id, city_name, latitude, longitude)
         VALUES ($1, $2, $3, $4) RETURNING id`,
		place.UserID, place.CityName, place.Latitude, place.Longitude).Scan(&place.ID)
	if err != nil {
		return nil, fmt.Errorf("insert liked place: %w", err)
	}
	return &place, nil
}
