// Package conditions maps free-text weather conditions to a display
// category, which drives the screen background and the card icon.
package conditions

import (
	"strings"

	"github.com/NomadCrew/nomad-weather/types"
)

// Kind is the background category of a weather condition.
type Kind string

const (
	Stormy  Kind = "stormy"
	Cloudy  Kind = "cloudy"
	Snowy   Kind = "snowy"
	Hot     Kind = "hot"
	Default Kind = "default"
)

// HotThresholdCelsius is the temperature above which a condition without a
// more specific match is shown as hot. It equals 77 °F.
const HotThresholdCelsius = 25.0

// Category is the result of classifying a condition.
type Category struct {
	Kind    Kind     `json:"kind"`
	Icon    string   `json:"icon"`
	Palette []string `json:"palette"`
}

var palettes = map[Kind][]string{
	Stormy:  {"#373B44", "#4286f4", "#73A4F6"},
	Cloudy:  {"#83a4d4", "#b6fbff"},
	Snowy:   {"#E6DADA", "#274046"},
	Hot:     {"#FF7300", "#FEF253"},
	Default: {"#4c669f", "#3b5998", "#192f6a"},
}

var kindIcons = map[Kind]string{
	Stormy:  "weather-pouring",
	Cloudy:  "weather-cloudy",
	Snowy:   "weather-snowy",
	Hot:     "weather-sunny",
	Default: "weather-partly-cloudy",
}

// rule order is significant: the first match wins.
var rules = []struct {
	keywords []string
	kind     Kind
}{
	{keywords: []string{"rain", "storm"}, kind: Stormy},
	{keywords: []string{"cloud"}, kind: Cloudy},
	{keywords: []string{"snow"}, kind: Snowy},
}

// Classify returns the category for a condition description. Matching is a
// case-insensitive substring test. temperatureCelsius may be nil when the
// temperature is unknown, in which case Hot is never chosen.
func Classify(condition string, temperatureCelsius *float64) Category {
	return categoryFor(classifyKind(condition, temperatureCelsius))
}

// ClassifyReading classifies a reading, or returns Default for nil.
func ClassifyReading(reading *types.WeatherReading) Category {
	if reading == nil {
		return categoryFor(Default)
	}
	temp := reading.TemperatureCelsius
	return Classify(reading.Condition, &temp)
}

func classifyKind(condition string, temperatureCelsius *float64) Kind {
	text := strings.ToLower(condition)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.kind
			}
		}
	}
	if temperatureCelsius != nil && *temperatureCelsius > HotThresholdCelsius {
		return Hot
	}
	return Default
}

func categoryFor(kind Kind) Category {
	palette := make([]string, len(palettes[kind]))
	copy(palette, palettes[kind])
	return Category{
		Kind:    kind,
		Icon:    kindIcons[kind],
		Palette: palette,
	}
}

// Palette returns a copy of the gradient colour stops for a kind.
func Palette(kind Kind) []string {
	return categoryFor(kind).Palette
}
