package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owmCurrentJSON = `{
  "name": "Berlin",
  "cod": 200,
  "timezone": 3600,
  "weather": [{"description": "scattered clouds"}],
  "main": {"temp": 3.4, "feels_like": 0.2, "humidity": 81, "pressure": 1012},
  "wind": {"speed": 5},
  "visibility": 10000,
  "sys": {"country": "DE", "sunrise": 1704090600, "sunset": 1704123900}
}`

const owmForecastJSON = `{
  "cod": "200",
  "city": {"name": "Berlin", "country": "DE", "timezone": 3600},
  "list": [
    {"dt": 1704096000, "main": {"temp_min": 1.0, "temp_max": 2.0}, "weather": [{"description": "mist"}]},
    {"dt": 1704106800, "main": {"temp_min": 2.5, "temp_max": 6.0}, "weather": [{"description": "light rain"}]},
    {"dt": 1704117600, "main": {"temp_min": 0.5, "temp_max": 4.0}, "weather": [{"description": "overcast clouds"}]},
    {"dt": 1704150000, "main": {"temp_min": -2.0, "temp_max": -1.0}, "weather": [{"description": "clear sky"}]},
    {"dt": 1704193200, "main": {"temp_min": 1.0, "temp_max": 3.0}, "weather": [{"description": "light snow"}]}
  ]
}`

func newOWMServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenWeatherMap) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewOpenWeatherMap("test-key", WithBaseURL(srv.URL))
}

func TestOpenWeatherMap_FetchCurrent(t *testing.T) {
	_, client := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "Berlin", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, owmCurrentJSON)
	})

	reading, err := client.FetchCurrent(context.Background(), types.ByCity(" Berlin "))
	require.NoError(t, err)

	assert.Equal(t, "Berlin", reading.City)
	assert.Equal(t, "DE", reading.Country)
	assert.InDelta(t, 3.4, reading.TemperatureCelsius, 1e-9)
	assert.InDelta(t, 0.2, reading.FeelsLikeCelsius, 1e-9)
	assert.Equal(t, "scattered clouds", reading.Condition)
	assert.Equal(t, 81, reading.HumidityPercent)
	assert.InDelta(t, 18.0, reading.WindSpeedKph, 1e-9)
	assert.InDelta(t, 1012, reading.PressureHpa, 1e-9)
	assert.InDelta(t, 10, reading.VisibilityKm, 1e-9)
	assert.Equal(t, "07:30", reading.Sunrise)
	assert.Equal(t, "16:45", reading.Sunset)
}

func TestOpenWeatherMap_FetchCurrentByCoordinates(t *testing.T) {
	_, client := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52.520000", r.URL.Query().Get("lat"))
		assert.Equal(t, "13.405000", r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("q"))
		fmt.Fprint(w, owmCurrentJSON)
	})

	reading, err := client.FetchCurrent(context.Background(), types.ByCoordinates(types.Coordinates{Latitude: 52.52, Longitude: 13.405}))
	require.NoError(t, err)
	assert.Equal(t, "Berlin", reading.City)
}

func TestOpenWeatherMap_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		query    types.Query
		expected apperrors.ErrorType
	}{
		{
			name:     "city not found",
			status:   http.StatusNotFound,
			body:     `{"cod":"404","message":"city not found"}`,
			query:    types.ByCity("Atlantis"),
			expected: apperrors.CityNotFoundError,
		},
		{
			name:     "not found code in body",
			status:   http.StatusOK,
			body:     `{"cod":"404","message":"city not found"}`,
			query:    types.ByCity("Atlantis"),
			expected: apperrors.CityNotFoundError,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"message":"boom"}`,
			query:    types.ByCity("Berlin"),
			expected: apperrors.NetworkError,
		},
		{
			name:     "invalid key",
			status:   http.StatusUnauthorized,
			body:     `{"cod":401}`,
			query:    types.ByCity("Berlin"),
			expected: apperrors.NetworkError,
		},
		{
			name:     "malformed body",
			status:   http.StatusOK,
			body:     `{"name":`,
			query:    types.ByCity("Berlin"),
			expected: apperrors.NetworkError,
		},
		{
			name:     "empty weather list",
			status:   http.StatusOK,
			body:     `{"name":"Berlin","weather":[]}`,
			query:    types.ByCity("Berlin"),
			expected: apperrors.NetworkError,
		},
		{
			name:     "invalid query",
			status:   http.StatusOK,
			body:     owmCurrentJSON,
			query:    types.ByCity(""),
			expected: apperrors.ValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			reading, err := client.FetchCurrent(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, reading)
			assert.Equal(t, tt.expected, apperrors.TypeOf(err))
		})
	}
}

func TestOpenWeatherMap_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewOpenWeatherMap("k", WithBaseURL(srv.URL))
	srv.Close()

	_, err := client.FetchForecast(context.Background(), types.ByCity("Berlin"))
	assert.True(t, apperrors.IsType(err, apperrors.NetworkError))
}

func TestOpenWeatherMap_FetchForecast(t *testing.T) {
	_, client := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		fmt.Fprint(w, owmForecastJSON)
	})

	days, err := client.FetchForecast(context.Background(), types.ByCity("Berlin"))
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, types.ForecastDay{Day: "Mon", Condition: "light rain", HighCelsius: 6.0, LowCelsius: 0.5}, days[0])
	assert.Equal(t, types.ForecastDay{Day: "Tue", Condition: "light snow", HighCelsius: 3.0, LowCelsius: -2.0}, days[1])
}

func TestOpenWeatherMap_ForecastNotFound(t *testing.T) {
	_, client := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod":"404"}`)
	})

	_, err := client.FetchForecast(context.Background(), types.ByCity("Atlantis"))
	assert.True(t, apperrors.IsType(err, apperrors.CityNotFoundError))
}

func TestLocalClock(t *testing.T) {
	assert.Equal(t, "", localClock(0, 0))
	assert.Equal(t, "06:30", localClock(1704090600, 0))
	assert.Equal(t, "01:30", localClock(1704090600, -5*3600))
}
