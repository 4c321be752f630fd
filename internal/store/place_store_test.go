package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triplore/triplore/internal/types"
)

func TestPostgresPlaceStore_ListByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns places most-recent-first", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, user_id, city_name, latitude, longitude").
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "city_name", "latitude", "longitude"}).
				AddRow(int64(3), int64(1), "Berlin", 52.52, 13.405).
				AddRow(int64(2), int64(1), "Paris", 48.8566, 2.3522))

		s := NewPostgresPlaceStore(mock, newTestLogger())
		places, err := s.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, places, 2)
		assert.Equal(t, "Berlin", places[0].CityName)
		assert.Equal(t, "Paris", places[1].CityName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user yields empty slice", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, user_id, city_name, latitude, longitude").
			WithArgs(int64(404)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "city_name", "latitude", "longitude"}))

		s := NewPostgresPlaceStore(mock, newTestLogger())
		places, err := s.ListByUser(ctx, 404)
		require.NoError(t, err)
		assert.Empty(t, places)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPlaceStore_Add(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO liked_places (user_id, city_name, latitude, longitude)")).
		WithArgs(int64(1), "Lisbon", 38.7223, -9.1393).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	s := NewPostgresPlaceStore(mock, newTestLogger())
	place, err := s.Add(ctx, types.LikedPlace{
		UserID:     1,
		CityName:   "Lisbon",
		Coordinate: types.Coordinate{Latitude: 38.7223, Longitude: -9.1393},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), place.ID)
	assert.Equal(t, "Lisbon", place.CityName)
	require.NoError(t, mock.ExpectationsWereMet())
}
