package weather

import (
	"context"
	"os"
	"sync"
	"testing"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

// stubClient is a Client whose answers are set by the test.
type stubClient struct {
	mu           sync.Mutex
	reading      *types.WeatherReading
	days         []types.ForecastDay
	currentErr   error
	forecastErr  error
	currentCalls int
	forecastCall int
}

func (s *stubClient) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCalls++
	return s.reading, s.currentErr
}

func (s *stubClient) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecastCall++
	return s.days, s.forecastErr
}

func (s *stubClient) Name() string { return "stub" }

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   types.Query
		wantErr bool
	}{
		{name: "city", query: types.ByCity("Lisbon")},
		{name: "coordinates", query: types.ByCoordinates(types.Coordinates{Latitude: 38.72, Longitude: -9.14})},
		{name: "blank city", query: types.ByCity("  "), wantErr: true},
		{name: "both keys", query: types.Query{Mode: types.QueryModeCity, City: "Lisbon", Coordinates: &types.Coordinates{}}, wantErr: true},
		{name: "latitude out of range", query: types.ByCoordinates(types.Coordinates{Latitude: 120}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuery(tt.query)
			if tt.wantErr {
				assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNotFoundAs(t *testing.T) {
	err := notFoundAs(errNotFound, types.ByCity("Atlantis"))
	assert.True(t, apperrors.IsType(err, apperrors.CityNotFoundError))

	err = notFoundAs(errNotFound, types.ByCoordinates(types.Coordinates{}))
	assert.True(t, apperrors.IsType(err, apperrors.NetworkError))

	other := apperrors.Network(assert.AnError, "x")
	assert.Equal(t, error(other), notFoundAs(other, types.ByCity("Oslo")))
}
