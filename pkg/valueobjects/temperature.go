package valueobjects

import (
	"math"

	"github.com/NomadCrew/nomad-weather/types"
)

// ToFahrenheit converts degrees Celsius to degrees Fahrenheit.
func ToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// ToCelsius converts degrees Fahrenheit to degrees Celsius.
func ToCelsius(fahrenheit float64) float64 {
	return (fahrenheit - 32) * 5 / 9
}

// InUnit converts a Celsius value into the given display unit without rounding.
func InUnit(celsius float64, unit types.DisplayUnit) float64 {
	if unit == types.Fahrenheit {
		return ToFahrenheit(celsius)
	}
	return celsius
}

// DisplayValue is the whole number shown on screen for a stored Celsius
// temperature. Halves round away from zero, so -2.5 shows as -3.
func DisplayValue(celsius float64, unit types.DisplayUnit) int {
	return int(math.Round(InUnit(celsius, unit)))
}
