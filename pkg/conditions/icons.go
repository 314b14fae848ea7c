package conditions

import "strings"

var iconRules = []struct {
	keywords []string
	icon     string
}{
	{keywords: []string{"thunder", "storm"}, icon: "weather-lightning"},
	{keywords: []string{"rain", "drizzle", "shower"}, icon: "weather-rainy"},
	{keywords: []string{"snow", "sleet"}, icon: "weather-snowy"},
	{keywords: []string{"fog", "mist", "haze"}, icon: "weather-fog"},
	{keywords: []string{"overcast", "cloud"}, icon: "weather-cloudy"},
	{keywords: []string{"clear", "sun"}, icon: "weather-sunny"},
}

// IconFor returns the card icon name for a condition description. It is
// finer grained than Classify and independent of temperature.
func IconFor(condition string) string {
	text := strings.ToLower(condition)
	for _, rule := range iconRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.icon
			}
		}
	}
	return "weather-partly-cloudy"
}
