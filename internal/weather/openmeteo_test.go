package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openMeteoJSON = `{
  "current": {
    "temperature_2m": 27.6,
    "apparent_temperature": 29.1,
    "relative_humidity_2m": 40,
    "weather_code": 0,
    "wind_speed_10m": 11.24,
    "surface_pressure": 1008.4,
    "visibility": 24140
  },
  "daily": {
    "time": ["2024-07-01", "2024-07-02", "2024-07-03", "2024-07-04", "2024-07-05", "2024-07-06"],
    "weather_code": [0, 2, 61, 95, 71, 3],
    "temperature_2m_max": [30.1, 28.0, 22.4, 21.0, 2.0, 18.0],
    "temperature_2m_min": [18.2, 17.5, 15.0, 14.1, -3.0, 11.0],
    "sunrise": ["2024-07-01T05:12", "2024-07-02T05:13"],
    "sunset": ["2024-07-01T21:40", "2024-07-02T21:40"]
  }
}`

type openMeteoFake struct {
	geocoding    string
	nominatim    string
	reverse      string
	reverseCode  int
	forecastHits int32
}

func (f *openMeteoFake) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/forecast":
			atomic.AddInt32(&f.forecastHits, 1)
			assert.Equal(t, "auto", r.URL.Query().Get("timezone"))
			assert.Equal(t, "5", r.URL.Query().Get("forecast_days"))
			fmt.Fprint(w, openMeteoJSON)
		case "/v1/search":
			fmt.Fprint(w, f.geocoding)
		case "/nominatim/search":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			fmt.Fprint(w, f.nominatim)
		case "/nominatim/reverse":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			if f.reverseCode != 0 {
				w.WriteHeader(f.reverseCode)
				return
			}
			fmt.Fprint(w, f.reverse)
		default:
			http.NotFound(w, r)
		}
	}
}

func newOpenMeteoClient(t *testing.T, fake *openMeteoFake) *OpenMeteo {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewOpenMeteo(
		WithBaseURL(srv.URL),
		WithGeocodingURL(srv.URL+"/v1/search"),
		WithNominatimURL(srv.URL+"/nominatim"),
		WithUserAgent("test-agent"),
	)
}

func TestOpenMeteo_FetchCurrentByCity(t *testing.T) {
	client := newOpenMeteoClient(t, &openMeteoFake{
		geocoding: `{"results":[{"name":"Madrid","country_code":"es","latitude":40.4165,"longitude":-3.70256}]}`,
	})

	reading, err := client.FetchCurrent(context.Background(), types.ByCity("Madrid"))
	require.NoError(t, err)

	assert.Equal(t, "Madrid", reading.City)
	assert.Equal(t, "ES", reading.Country)
	assert.InDelta(t, 27.6, reading.TemperatureCelsius, 1e-9)
	assert.InDelta(t, 29.1, reading.FeelsLikeCelsius, 1e-9)
	assert.Equal(t, "clear sky", reading.Condition)
	assert.Equal(t, 40, reading.HumidityPercent)
	assert.InDelta(t, 11.2, reading.WindSpeedKph, 1e-9)
	assert.InDelta(t, 1008, reading.PressureHpa, 1e-9)
	assert.InDelta(t, 24.1, reading.VisibilityKm, 1e-9)
	assert.Equal(t, "05:12", reading.Sunrise)
	assert.Equal(t, "21:40", reading.Sunset)
}

func TestOpenMeteo_NominatimFallback(t *testing.T) {
	client := newOpenMeteoClient(t, &openMeteoFake{
		geocoding: `{}`,
		nominatim: `[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, Ile-de-France, France","address":{"city":"Paris","country_code":"fr"}}]`,
	})

	reading, err := client.FetchCurrent(context.Background(), types.ByCity("Paris"))
	require.NoError(t, err)
	assert.Equal(t, "Paris", reading.City)
	assert.Equal(t, "FR", reading.Country)
}

func TestOpenMeteo_CityNotFound(t *testing.T) {
	fake := &openMeteoFake{geocoding: `{"results":[]}`, nominatim: `[]`}
	client := newOpenMeteoClient(t, fake)

	_, err := client.FetchCurrent(context.Background(), types.ByCity("Atlantis"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.CityNotFoundError))

	_, err = client.FetchForecast(context.Background(), types.ByCity("Atlantis"))
	assert.True(t, apperrors.IsType(err, apperrors.CityNotFoundError))
	assert.Zero(t, atomic.LoadInt32(&fake.forecastHits))
}

func TestOpenMeteo_ReverseGeocoding(t *testing.T) {
	coords := types.Coordinates{Latitude: 60.17, Longitude: 24.94}

	client := newOpenMeteoClient(t, &openMeteoFake{
		reverse: `{"address":{"town":"Helsinki","country_code":"fi"}}`,
	})
	reading, err := client.FetchCurrent(context.Background(), types.ByCoordinates(coords))
	require.NoError(t, err)
	assert.Equal(t, "Helsinki", reading.City)
	assert.Equal(t, "FI", reading.Country)

	failing := newOpenMeteoClient(t, &openMeteoFake{reverseCode: http.StatusServiceUnavailable})
	reading, err = failing.FetchCurrent(context.Background(), types.ByCoordinates(coords))
	require.NoError(t, err)
	assert.Empty(t, reading.City)
	assert.Equal(t, "clear sky", reading.Condition)
}

func TestOpenMeteo_FetchForecast(t *testing.T) {
	client := newOpenMeteoClient(t, &openMeteoFake{})

	days, err := client.FetchForecast(context.Background(), types.ByCoordinates(types.Coordinates{Latitude: 40.4, Longitude: -3.7}))
	require.NoError(t, err)
	require.Len(t, days, types.ForecastDays)

	assert.Equal(t, types.ForecastDay{Day: "Mon", Condition: "clear sky", HighCelsius: 30.1, LowCelsius: 18.2}, days[0])
	assert.Equal(t, "Tue", days[1].Day)
	assert.Equal(t, "slight rain", days[2].Condition)
	assert.Equal(t, "thunderstorm", days[3].Condition)
	assert.Equal(t, types.ForecastDay{Day: "Fri", Condition: "slight snow fall", HighCelsius: 2.0, LowCelsius: -3.0}, days[4])
}

func TestOpenMeteo_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	client := NewOpenMeteo(WithBaseURL(srv.URL))

	_, err := client.FetchForecast(context.Background(), types.ByCoordinates(types.Coordinates{Latitude: 1, Longitude: 1}))
	assert.True(t, apperrors.IsType(err, apperrors.NetworkError))
}

func TestDescribeWMOCode(t *testing.T) {
	assert.Equal(t, "clear sky", describeWMOCode(0))
	assert.Equal(t, "overcast clouds", describeWMOCode(3))
	assert.Equal(t, "thunderstorm with heavy hail", describeWMOCode(99))
	assert.Equal(t, "unknown", describeWMOCode(42))
}

func TestClockOf(t *testing.T) {
	assert.Equal(t, "05:12", clockOf("2024-07-01T05:12"))
	assert.Equal(t, "", clockOf("garbage"))
}
