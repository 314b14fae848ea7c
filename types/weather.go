package types

import (
	"fmt"
	"strings"
)

// WeatherReading is a snapshot of current conditions for one place.
// Temperatures are always Celsius; Fahrenheit only exists at render time.
type WeatherReading struct {
	City               string  `json:"city"`
	Country            string  `json:"country"`
	TemperatureCelsius float64 `json:"temperatureCelsius"`
	FeelsLikeCelsius   float64 `json:"feelsLikeCelsius"`
	Condition          string  `json:"condition"`
	HumidityPercent    int     `json:"humidityPercent"`
	WindSpeedKph       float64 `json:"windSpeedKph"`
	PressureHpa        float64 `json:"pressureHpa"`
	VisibilityKm       float64 `json:"visibilityKm"`
	Sunrise            string  `json:"sunrise"` // local time of day, "15:04"
	Sunset             string  `json:"sunset"`
}

// ForecastDay is one entry of the chronological daily forecast.
type ForecastDay struct {
	Day         string  `json:"day"`
	Condition   string  `json:"condition"`
	HighCelsius float64 `json:"highCelsius"`
	LowCelsius  float64 `json:"lowCelsius"`
}

// ForecastDays is the number of daily entries the screen displays.
const ForecastDays = 5

// DisplayUnit selects how temperatures are shown. It is never persisted.
type DisplayUnit string

const (
	Celsius    DisplayUnit = "C"
	Fahrenheit DisplayUnit = "F"
)

// Toggle returns the other unit.
func (u DisplayUnit) Toggle() DisplayUnit {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

// Symbol returns the unit letter shown after the degree sign.
func (u DisplayUnit) Symbol() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// ParseDisplayUnit accepts "C", "F", "celsius" or "fahrenheit" in any case.
func ParseDisplayUnit(s string) (DisplayUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown display unit %q", s)
	}
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Latitude, c.Longitude)
}

// QueryMode tells whether a fetch is keyed by device position or city name.
type QueryMode string

const (
	QueryModeLocation QueryMode = "location"
	QueryModeCity     QueryMode = "city"
)

// Query identifies what to fetch. Exactly one of Coordinates and City is set.
type Query struct {
	Mode        QueryMode    `json:"mode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	City        string       `json:"city,omitempty"`
}

// ByCoordinates builds a location query.
func ByCoordinates(c Coordinates) Query {
	return Query{Mode: QueryModeLocation, Coordinates: &c}
}

// ByCity builds a city-name query.
func ByCity(city string) Query {
	return Query{Mode: QueryModeCity, City: city}
}

// Validate checks that exactly one key is present and consistent with Mode.
func (q Query) Validate() error {
	hasCoords := q.Coordinates != nil
	hasCity := strings.TrimSpace(q.City) != ""
	switch {
	case hasCoords && hasCity:
		return fmt.Errorf("query has both coordinates and city")
	case !hasCoords && !hasCity:
		return fmt.Errorf("query has neither coordinates nor city")
	case hasCoords && q.Mode != QueryModeLocation:
		return fmt.Errorf("coordinates given for %s query", q.Mode)
	case hasCity && q.Mode != QueryModeCity:
		return fmt.Errorf("city given for %s query", q.Mode)
	}
	return nil
}

func (q Query) String() string {
	if q.Coordinates != nil {
		return q.Coordinates.String()
	}
	return q.City
}
