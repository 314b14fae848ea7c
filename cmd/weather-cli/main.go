// Command weather-cli renders the weather screen in a terminal. Without
// -city it shows the weather at the configured device location.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	"github.com/NomadCrew/nomad-weather/internal/location"
	"github.com/NomadCrew/nomad-weather/internal/presentation"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/internal/weather"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/joho/godotenv"
)

func main() {
	city := flag.String("city", "", "city to show instead of the device location")
	unit := flag.String("unit", "C", "temperature unit, C or F")
	provider := flag.String("provider", "", "weather provider (openmeteo or openweathermap)")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for the fetch")
	flag.Parse()

	os.Exit(run(*city, *unit, *provider, *timeout))
}

func run(city, unitFlag, provider string, timeout time.Duration) int {
	_ = godotenv.Load()
	logger.InitLogger()
	defer logger.Close()

	unit, err := types.ParseDisplayUnit(unitFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if provider != "" {
		cfg.Weather.Provider = strings.ToLower(provider)
		if cfg.Weather.Provider == config.ProviderOpenWeatherMap && cfg.Weather.APIKey == "" {
			fmt.Fprintln(os.Stderr, "OPENWEATHER_API_KEY is required for provider openweathermap")
			return 1
		}
	}

	client, err := weather.NewFromConfig(cfg.Weather, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	locator, err := location.NewFromConfig(cfg.Location, time.Duration(cfg.Weather.TimeoutSeconds)*time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	controller := screen.NewController(client, locator)
	defer controller.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return show(ctx, controller, city, unit, timeout, os.Stdout, os.Stderr)
}

// show loads the screen once, draws it to out and returns the exit code: 1
// when the load was rejected or the screen ended in an alert.
func show(ctx context.Context, controller *screen.Controller, city string, unit types.DisplayUnit, timeout time.Duration, out, errOut io.Writer) int {
	if unit != controller.Snapshot().Unit {
		controller.ToggleUnit()
	}

	snap, err := load(ctx, controller, city, timeout)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := presentation.RenderText(out, presentation.Render(snap)); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if snap.Phase == screen.PhaseFailed {
		return 1
	}
	return 0
}

func load(ctx context.Context, controller *screen.Controller, city string, timeout time.Duration) (screen.Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if strings.TrimSpace(city) != "" {
		return controller.Search(fetchCtx, city)
	}
	return controller.Mount(fetchCtx)
}
