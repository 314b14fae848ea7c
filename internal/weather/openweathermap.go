package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
)

const openWeatherMapBaseURL = "https://api.openweathermap.org"

/*
	OpenWeatherMap response codes
	200  current weather / forecast
	401  invalid API key
	404  city not found (body carries "cod": "404")
	429  rate limit exceeded
*/

type owmCurrentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Visibility int             `json:"visibility"`
	TimeZone   int             `json:"timezone"`
	Code       json.RawMessage `json:"cod"`
}

type owmForecastResponse struct {
	List []owmForecastSlot `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		TimeZone int    `json:"timezone"`
	} `json:"city"`
	Code json.RawMessage `json:"cod"`
}

type owmForecastSlot struct {
	DateTime int64 `json:"dt"`
	Main     struct {
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// OpenWeatherMap fetches from the OpenWeatherMap 2.5 API in metric units.
type OpenWeatherMap struct {
	apiKey string
	opts   options
}

var _ Client = (*OpenWeatherMap)(nil)

func NewOpenWeatherMap(apiKey string, opts ...Option) *OpenWeatherMap {
	return &OpenWeatherMap{
		apiKey: apiKey,
		opts:   buildOptions(options{baseURL: openWeatherMapBaseURL}, opts),
	}
}

func (p *OpenWeatherMap) Name() string {
	return "openweathermap"
}

func (p *OpenWeatherMap) params(q types.Query) url.Values {
	params := url.Values{}
	if q.Coordinates != nil {
		params.Add("lat", fmt.Sprintf("%f", q.Coordinates.Latitude))
		params.Add("lon", fmt.Sprintf("%f", q.Coordinates.Longitude))
	} else {
		params.Add("q", strings.TrimSpace(q.City))
	}
	params.Add("units", "metric")
	params.Add("appid", p.apiKey)
	return params
}

// FetchCurrent returns the current conditions for the query.
func (p *OpenWeatherMap) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	var data owmCurrentResponse
	endpoint := strings.TrimRight(p.opts.baseURL, "/") + "/data/2.5/weather"
	if err := getJSON(ctx, p.opts.httpClient, endpoint, p.params(q), nil, &data); err != nil {
		return nil, notFoundAs(err, q)
	}
	if isNotFoundCode(data.Code) {
		return nil, notFoundAs(errNotFound, q)
	}
	if len(data.Weather) == 0 {
		return nil, apperrors.Network(fmt.Errorf("empty weather list"), "invalid weather API response")
	}

	logger.GetLogger().Debugw("Fetched current weather", "provider", p.Name(), "query", q.String(), "city", data.Name)

	return &types.WeatherReading{
		City:               data.Name,
		Country:            data.Sys.Country,
		TemperatureCelsius: data.Main.Temp,
		FeelsLikeCelsius:   data.Main.FeelsLike,
		Condition:          data.Weather[0].Description,
		HumidityPercent:    data.Main.Humidity,
		// metric units report wind in m/s
		WindSpeedKph: roundTo(data.Wind.Speed*3.6, 1),
		PressureHpa:  data.Main.Pressure,
		VisibilityKm: roundTo(float64(data.Visibility)/1000, 1),
		Sunrise:      localClock(data.Sys.Sunrise, data.TimeZone),
		Sunset:       localClock(data.Sys.Sunset, data.TimeZone),
	}, nil
}

// FetchForecast returns up to five daily entries aggregated from the
// 3-hourly forecast.
func (p *OpenWeatherMap) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	var data owmForecastResponse
	endpoint := strings.TrimRight(p.opts.baseURL, "/") + "/data/2.5/forecast"
	if err := getJSON(ctx, p.opts.httpClient, endpoint, p.params(q), nil, &data); err != nil {
		return nil, notFoundAs(err, q)
	}
	if isNotFoundCode(data.Code) {
		return nil, notFoundAs(errNotFound, q)
	}
	if len(data.List) == 0 {
		return nil, apperrors.Network(fmt.Errorf("empty forecast list"), "invalid weather API response")
	}

	zone := time.FixedZone(data.City.Name, data.City.TimeZone)
	slots := make([]forecastSlot, 0, len(data.List))
	for _, item := range data.List {
		description := ""
		if len(item.Weather) > 0 {
			description = item.Weather[0].Description
		}
		slots = append(slots, forecastSlot{
			At:          time.Unix(item.DateTime, 0).In(zone),
			Condition:   description,
			HighCelsius: item.Main.TempMax,
			LowCelsius:  item.Main.TempMin,
		})
	}

	return aggregateDaily(slots, types.ForecastDays), nil
}

func isNotFoundCode(raw json.RawMessage) bool {
	return strings.Trim(string(raw), `"`) == "404"
}

// localClock formats a unix timestamp as wall-clock time at a UTC offset.
func localClock(unix int64, offsetSeconds int) string {
	if unix == 0 {
		return ""
	}
	zone := time.FixedZone("", offsetSeconds)
	return time.Unix(unix, 0).In(zone).Format("15:04")
}
