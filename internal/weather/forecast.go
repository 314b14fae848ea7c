package weather

import (
	"math"
	"time"

	"github.com/NomadCrew/nomad-weather/types"
)

// forecastSlot is one sub-daily forecast entry, with At already shifted to
// the location's local wall clock.
type forecastSlot struct {
	At          time.Time
	Condition   string
	HighCelsius float64
	LowCelsius  float64
}

// aggregateDaily folds chronological slots into at most maxDays daily
// entries: high is the max, low the min, and the condition is taken from the
// 12:00 slot when there is one, else from the day's first slot.
func aggregateDaily(slots []forecastSlot, maxDays int) []types.ForecastDay {
	type daily struct {
		day       types.ForecastDay
		hasMidday bool
	}

	var order []string
	days := make(map[string]*daily)

	for _, slot := range slots {
		key := slot.At.Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			if len(order) == maxDays {
				break
			}
			d = &daily{day: types.ForecastDay{
				Day:         slot.At.Format("Mon"),
				Condition:   slot.Condition,
				HighCelsius: slot.HighCelsius,
				LowCelsius:  slot.LowCelsius,
			}}
			days[key] = d
			order = append(order, key)
		}

		d.day.HighCelsius = math.Max(d.day.HighCelsius, slot.HighCelsius)
		d.day.LowCelsius = math.Min(d.day.LowCelsius, slot.LowCelsius)
		if !d.hasMidday && slot.At.Hour() == 12 {
			d.day.Condition = slot.Condition
			d.hasMidday = true
		}
	}

	result := make([]types.ForecastDay, 0, len(order))
	for _, key := range order {
		result = append(result, days[key].day)
	}
	return result
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
