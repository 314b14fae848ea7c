package weather

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
)

const openMeteoBaseURL = "https://api.open-meteo.com"

type openMeteoResponse struct {
	Current struct {
		Temperature2m       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2m  int     `json:"relative_humidity_2m"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
		SurfacePressure     float64 `json:"surface_pressure"`
		Visibility          float64 `json:"visibility"`
	} `json:"current"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		Sunrise          []string  `json:"sunrise"`
		Sunset           []string  `json:"sunset"`
	} `json:"daily"`
}

// OpenMeteo fetches from the keyless Open-Meteo forecast API. City names are
// geocoded first; coordinates are named by reverse lookup.
type OpenMeteo struct {
	opts options
	geo  *geocoder
}

var _ Client = (*OpenMeteo)(nil)

func NewOpenMeteo(opts ...Option) *OpenMeteo {
	o := buildOptions(options{
		baseURL:      openMeteoBaseURL,
		geocodingURL: openMeteoGeocodingURL,
		nominatimURL: nominatimBaseURL,
		userAgent:    defaultUserAgent,
	}, opts)
	return &OpenMeteo{opts: o, geo: &geocoder{opts: o}}
}

func (p *OpenMeteo) Name() string {
	return "openmeteo"
}

// locate turns a query into a place, geocoding city names.
func (p *OpenMeteo) locate(ctx context.Context, q types.Query, named bool) (*place, error) {
	if q.Coordinates != nil {
		if !named {
			return &place{Coordinates: *q.Coordinates}, nil
		}
		pl := p.geo.reverse(ctx, *q.Coordinates)
		return &pl, nil
	}
	return p.geo.resolveCity(ctx, strings.TrimSpace(q.City))
}

func (p *OpenMeteo) fetch(ctx context.Context, coords types.Coordinates, withCurrent bool) (*openMeteoResponse, error) {
	params := url.Values{}
	params.Add("latitude", fmt.Sprintf("%f", coords.Latitude))
	params.Add("longitude", fmt.Sprintf("%f", coords.Longitude))
	if withCurrent {
		params.Add("current", "temperature_2m,apparent_temperature,relative_humidity_2m,weather_code,wind_speed_10m,surface_pressure,visibility")
	}
	params.Add("daily", "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset")
	params.Add("timezone", "auto")
	params.Add("forecast_days", fmt.Sprintf("%d", types.ForecastDays))

	logger.GetLogger().Debugw("Fetching weather data",
		"lat", coords.Latitude,
		"lon", coords.Longitude,
		"params", params.Encode())

	var forecast openMeteoResponse
	endpoint := strings.TrimRight(p.opts.baseURL, "/") + "/v1/forecast"
	if err := getJSON(ctx, p.opts.httpClient, endpoint, params, nil, &forecast); err != nil {
		// coordinates always resolve on Open-Meteo; a 404 is an upstream fault
		return nil, notFoundAs(err, types.ByCoordinates(coords))
	}
	return &forecast, nil
}

// FetchCurrent returns the current conditions for the query.
func (p *OpenMeteo) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	pl, err := p.locate(ctx, q, true)
	if err != nil {
		return nil, err
	}

	data, err := p.fetch(ctx, pl.Coordinates, true)
	if err != nil {
		return nil, err
	}

	reading := &types.WeatherReading{
		City:               pl.Name,
		Country:            pl.Country,
		TemperatureCelsius: data.Current.Temperature2m,
		FeelsLikeCelsius:   data.Current.ApparentTemperature,
		Condition:          describeWMOCode(data.Current.WeatherCode),
		HumidityPercent:    data.Current.RelativeHumidity2m,
		WindSpeedKph:       roundTo(data.Current.WindSpeed10m, 1),
		PressureHpa:        roundTo(data.Current.SurfacePressure, 0),
		VisibilityKm:       roundTo(data.Current.Visibility/1000, 1),
	}
	if len(data.Daily.Sunrise) > 0 && len(data.Daily.Sunset) > 0 {
		reading.Sunrise = clockOf(data.Daily.Sunrise[0])
		reading.Sunset = clockOf(data.Daily.Sunset[0])
	}
	return reading, nil
}

// FetchForecast returns the daily forecast for the query.
func (p *OpenMeteo) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	pl, err := p.locate(ctx, q, false)
	if err != nil {
		return nil, err
	}

	data, err := p.fetch(ctx, pl.Coordinates, false)
	if err != nil {
		return nil, err
	}

	d := data.Daily
	n := len(d.Time)
	if len(d.WeatherCode) != n || len(d.Temperature2mMax) != n || len(d.Temperature2mMin) != n {
		return nil, apperrors.Network(fmt.Errorf("daily series lengths differ"), "invalid weather API response")
	}
	if n == 0 {
		return nil, apperrors.Network(fmt.Errorf("empty daily forecast"), "invalid weather API response")
	}
	if n > types.ForecastDays {
		n = types.ForecastDays
	}

	days := make([]types.ForecastDay, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.Parse("2006-01-02", d.Time[i])
		if err != nil {
			return nil, apperrors.Network(fmt.Errorf("failed to parse date: %w", err), "invalid weather API response")
		}
		days = append(days, types.ForecastDay{
			Day:         date.Format("Mon"),
			Condition:   describeWMOCode(d.WeatherCode[i]),
			HighCelsius: d.Temperature2mMax[i],
			LowCelsius:  d.Temperature2mMin[i],
		})
	}
	return days, nil
}

// clockOf extracts "15:04" from an Open-Meteo local timestamp.
func clockOf(ts string) string {
	t, err := time.Parse("2006-01-02T15:04", ts)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}
