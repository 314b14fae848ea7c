package weather

import (
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// NewFromConfig builds the configured provider wrapped with the outbound
// rate limiter and, when reg is non-nil, Prometheus instrumentation.
func NewFromConfig(cfg config.WeatherConfig, reg prometheus.Registerer) (Client, error) {
	log := logger.GetLogger().Named("weather")

	opts := []Option{
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		WithBaseURL(cfg.BaseURL),
		WithGeocodingURL(cfg.GeocodingURL),
		WithNominatimURL(cfg.NominatimURL),
		WithUserAgent(cfg.UserAgent),
	}

	var provider Client
	switch cfg.Provider {
	case config.ProviderOpenWeatherMap:
		provider = NewOpenWeatherMap(cfg.APIKey, opts...)
	case config.ProviderOpenMeteo:
		provider = NewOpenMeteo(opts...)
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}

	var client Client = NewRateLimitedClient(provider, cfg.RequestsPerSecond, cfg.Burst)
	if reg != nil {
		client = NewInstrumentedClient(client, NewMetrics(reg))
	}

	log.Infow("Weather client ready",
		"provider", provider.Name(),
		"requests_per_second", cfg.RequestsPerSecond,
		"burst", cfg.Burst,
		"instrumented", reg != nil)
	return client, nil
}
