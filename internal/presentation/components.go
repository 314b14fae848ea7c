// Package presentation turns a screen.Snapshot into the components the user
// sees: search bar, loading indicator, weather card, forecast list, alert
// and background. The result is a plain View value that is served as JSON
// and rendered as text by the terminal client.
package presentation

import "github.com/NomadCrew/nomad-weather/pkg/conditions"

const (
	SearchPlaceholder = "Search for a city..."
	ForecastTitle     = "5-Day Forecast"
)

// View is the complete rendered screen.
type View struct {
	Phase      string        `json:"phase"`
	Generation uint64        `json:"generation"`
	Unit       string        `json:"unit"`
	Background Background    `json:"background"`
	SearchBar  SearchBar     `json:"searchBar"`
	Loading    Loading       `json:"loading"`
	Card       *WeatherCard  `json:"card,omitempty"`
	Forecast   *ForecastList `json:"forecast,omitempty"`
	Alert      *Alert        `json:"alert,omitempty"`
	Refreshing bool          `json:"refreshing"`
	UpdatedAt  string        `json:"updatedAt,omitempty"`
}

type Background struct {
	Kind   conditions.Kind `json:"kind"`
	Colors []string        `json:"colors"`
}

type SearchBar struct {
	Placeholder string `json:"placeholder"`
}

// Loading is the activity indicator. FullScreen is set when nothing else is
// on screen yet.
type Loading struct {
	Visible    bool `json:"visible"`
	FullScreen bool `json:"fullScreen"`
}

type WeatherCard struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Icon    string `json:"icon"`
	// Temperature is the tappable unit toggle, e.g. "14°C".
	Temperature      string   `json:"temperature"`
	TemperatureValue int      `json:"temperatureValue"`
	Condition        string   `json:"condition"`
	FeelsLike        string   `json:"feelsLike"`
	Details          []Detail `json:"details"`
	Sunrise          string   `json:"sunrise"`
	Sunset           string   `json:"sunset"`
}

type Detail struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type ForecastList struct {
	Title string        `json:"title"`
	Rows  []ForecastRow `json:"rows"`
}

type ForecastRow struct {
	Day       string `json:"day"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
	// Temperatures reads "H° / L°" in the current unit.
	Temperatures string `json:"temperatures"`
	High         int    `json:"high"`
	Low          int    `json:"low"`
}

// Alert is a blocking message the user has to dismiss.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
