package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/internal/location"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

var oslo = types.Coordinates{Latitude: 59.91, Longitude: 10.75}

// stubClient answers from fixed readings keyed by query; a missing key is
// treated as an unknown city.
type stubClient struct {
	readings map[string]*types.WeatherReading
	err      error
}

func (s *stubClient) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.readings[q.String()]; ok {
		return r, nil
	}
	return nil, apperrors.CityNotFound(q.City)
}

func (s *stubClient) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.ForecastDay{
		{Day: "Mon", Condition: "light rain", HighCelsius: 12, LowCelsius: 4},
		{Day: "Tue", Condition: "clear sky", HighCelsius: 15, LowCelsius: 6},
	}, nil
}

func (s *stubClient) Name() string { return "stub" }

func newStubClient() *stubClient {
	return &stubClient{readings: map[string]*types.WeatherReading{
		"Bergen":      {City: "Bergen", Country: "NO", TemperatureCelsius: 11.6, FeelsLikeCelsius: 9.2, Condition: "moderate rain"},
		oslo.String(): {City: "Oslo", Country: "NO", TemperatureCelsius: 20, FeelsLikeCelsius: 19, Condition: "clear sky"},
	}}
}

func TestShow(t *testing.T) {
	tests := []struct {
		name     string
		client   *stubClient
		granted  bool
		city     string
		unit     types.DisplayUnit
		wantCode int
		want     []string
		notWant  []string
	}{
		{
			name:     "city in celsius",
			client:   newStubClient(),
			granted:  true,
			city:     "Bergen",
			unit:     types.Celsius,
			wantCode: 0,
			want:     []string{"Bergen, NO", "12°C  Moderate Rain", "Feels like 9°C", "5-Day Forecast", "12° / 4°"},
		},
		{
			name:     "city in fahrenheit",
			client:   newStubClient(),
			granted:  true,
			city:     "  Bergen ",
			unit:     types.Fahrenheit,
			wantCode: 0,
			want:     []string{"53°F  Moderate Rain", "Feels like 49°F", "54° / 39°"},
			notWant:  []string{"°C"},
		},
		{
			name:     "device location",
			client:   newStubClient(),
			granted:  true,
			unit:     types.Celsius,
			wantCode: 0,
			want:     []string{"Oslo, NO", "20°C  Clear Sky"},
		},
		{
			name:     "unknown city",
			client:   newStubClient(),
			granted:  true,
			city:     "Atlantis",
			unit:     types.Celsius,
			wantCode: 1,
			want:     []string{"[!] Error: City not found or failed to load weather data"},
			notWant:  []string{"5-Day Forecast"},
		},
		{
			name:     "permission denied",
			client:   newStubClient(),
			granted:  false,
			unit:     types.Celsius,
			wantCode: 1,
			want:     []string{"[!] Permission denied: Location permission is required for weather data"},
		},
		{
			name:     "network failure",
			client:   &stubClient{err: apperrors.Network(fmt.Errorf("connection reset"), "weather request failed")},
			granted:  true,
			unit:     types.Celsius,
			wantCode: 1,
			want:     []string{"[!] Error: Failed to load weather data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := screen.NewController(tt.client, location.NewStaticLocator(oslo, tt.granted))
			defer controller.Close()

			var out, errOut bytes.Buffer
			code := show(context.Background(), controller, tt.city, tt.unit, 5*time.Second, &out, &errOut)

			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, errOut.String())
			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out.String(), s)
			}
			assert.Equal(t, tt.unit, controller.Snapshot().Unit)
		})
	}
}

func TestShow_TimeoutIsRejected(t *testing.T) {
	controller := screen.NewController(blockingClient{}, location.NewStaticLocator(oslo, true))
	defer controller.Close()

	var out, errOut bytes.Buffer
	code := show(context.Background(), controller, "Bergen", types.Celsius, 20*time.Millisecond, &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), context.DeadlineExceeded.Error())
	assert.Empty(t, out.String())
}

func TestRun_InvalidUnit(t *testing.T) {
	assert.Equal(t, 2, run("", "K", "", time.Second))
}

func TestLoad_BlankCityMounts(t *testing.T) {
	controller := screen.NewController(newStubClient(), location.NewStaticLocator(oslo, true))
	defer controller.Close()

	snap, err := load(context.Background(), controller, "   ", time.Second)
	require.NoError(t, err)
	assert.Equal(t, screen.PhaseReady, snap.Phase)
	assert.Equal(t, types.QueryModeLocation, snap.Query.Mode)
	assert.Equal(t, "Oslo", snap.Reading.City)
}

// blockingClient holds every request until its context ends.
type blockingClient struct{}

func (blockingClient) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingClient) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingClient) Name() string { return "blocking" }
