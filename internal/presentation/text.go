package presentation

import (
	"fmt"
	"io"
	"strings"
)

// RenderText writes a plain-text rendition of the view, as shown by the
// terminal client.
func RenderText(w io.Writer, v View) error {
	var b strings.Builder

	if v.Alert != nil {
		fmt.Fprintf(&b, "[!] %s: %s\n\n", v.Alert.Title, v.Alert.Message)
	}

	if v.Loading.FullScreen {
		b.WriteString("Loading weather...\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	if v.Loading.Visible {
		b.WriteString("Refreshing...\n\n")
	}

	if c := v.Card; c != nil {
		header := c.City
		if c.Country != "" {
			header = fmt.Sprintf("%s, %s", c.City, c.Country)
		}
		fmt.Fprintf(&b, "%s\n%s\n", header, strings.Repeat("-", len([]rune(header))))
		fmt.Fprintf(&b, "%s  %s\n", c.Temperature, c.Condition)
		fmt.Fprintf(&b, "%s\n", c.FeelsLike)
		for _, d := range c.Details {
			fmt.Fprintf(&b, "%-11s %s\n", d.Label+":", d.Value)
		}
		if c.Sunrise != "" || c.Sunset != "" {
			fmt.Fprintf(&b, "%-11s %s\n", "Sunrise:", c.Sunrise)
			fmt.Fprintf(&b, "%-11s %s\n", "Sunset:", c.Sunset)
		}
	}

	if f := v.Forecast; f != nil && len(f.Rows) > 0 {
		fmt.Fprintf(&b, "\n%s\n%s\n", f.Title, strings.Repeat("-", len(f.Title)))
		for _, row := range f.Rows {
			fmt.Fprintf(&b, "%-4s %-30s %s\n", row.Day, row.Condition, row.Temperatures)
		}
	}

	if v.Card == nil && v.Alert == nil {
		b.WriteString("No weather data.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
