package presentation

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/pkg/conditions"
	"github.com/NomadCrew/nomad-weather/pkg/valueobjects"
	"github.com/NomadCrew/nomad-weather/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Render builds the view for a snapshot. It is pure: the same snapshot
// always renders the same view.
func Render(s screen.Snapshot) View {
	v := View{
		Phase:      string(s.Phase),
		Generation: s.Generation,
		Unit:       s.Unit.Symbol(),
		SearchBar:  SearchBar{Placeholder: SearchPlaceholder},
		Refreshing: s.Refreshing,
	}
	if !s.UpdatedAt.IsZero() {
		v.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}

	loading := s.Phase == screen.PhaseLoading
	v.Loading = Loading{Visible: loading, FullScreen: loading && !s.HasData()}

	if v.Loading.FullScreen {
		v.Background = background(conditions.ClassifyReading(nil))
		return v
	}

	v.Background = background(conditions.ClassifyReading(s.Reading))
	if s.HasData() {
		v.Card = renderCard(s.Reading, s.Unit)
		v.Forecast = renderForecast(s.Forecast, s.Unit)
	}
	if s.Phase == screen.PhaseFailed && s.Failure != nil {
		v.Alert = alertFor(s.Failure)
	}
	return v
}

func background(c conditions.Category) Background {
	return Background{Kind: c.Kind, Colors: c.Palette}
}

// Degrees formats a Celsius value as "N°U" in the display unit.
func Degrees(celsius float64, unit types.DisplayUnit) string {
	return fmt.Sprintf("%d°%s", valueobjects.DisplayValue(celsius, unit), unit.Symbol())
}

func renderCard(r *types.WeatherReading, unit types.DisplayUnit) *WeatherCard {
	return &WeatherCard{
		City:             r.City,
		Country:          r.Country,
		Icon:             conditions.IconFor(r.Condition),
		Temperature:      Degrees(r.TemperatureCelsius, unit),
		TemperatureValue: valueobjects.DisplayValue(r.TemperatureCelsius, unit),
		Condition:        cases.Title(language.English).String(r.Condition),
		FeelsLike:        "Feels like " + Degrees(r.FeelsLikeCelsius, unit),
		Details: []Detail{
			{Icon: "water-percent", Label: "Humidity", Value: fmt.Sprintf("%d%%", r.HumidityPercent)},
			{Icon: "weather-windy", Label: "Wind", Value: formatNumber(r.WindSpeedKph) + " km/h"},
			{Icon: "gauge", Label: "Pressure", Value: formatNumber(r.PressureHpa) + " hPa"},
			{Icon: "eye", Label: "Visibility", Value: formatNumber(r.VisibilityKm) + " km"},
		},
		Sunrise: r.Sunrise,
		Sunset:  r.Sunset,
	}
}

func renderForecast(days []types.ForecastDay, unit types.DisplayUnit) *ForecastList {
	rows := make([]ForecastRow, 0, len(days))
	for _, d := range days {
		high := valueobjects.DisplayValue(d.HighCelsius, unit)
		low := valueobjects.DisplayValue(d.LowCelsius, unit)
		rows = append(rows, ForecastRow{
			Day:          d.Day,
			Condition:    d.Condition,
			Icon:         conditions.IconFor(d.Condition),
			Temperatures: fmt.Sprintf("%d° / %d°", high, low),
			High:         high,
			Low:          low,
		})
	}
	return &ForecastList{Title: ForecastTitle, Rows: rows}
}

func alertFor(f *screen.Failure) *Alert {
	switch {
	case f.Type == apperrors.PermissionDeniedError:
		return &Alert{Title: "Permission denied", Message: "Location permission is required for weather data"}
	case f.Mode == types.QueryModeCity:
		return &Alert{Title: "Error", Message: "City not found or failed to load weather data"}
	default:
		return &Alert{Title: "Error", Message: "Failed to load weather data"}
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
