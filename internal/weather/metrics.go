package weather

import (
	"context"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for upstream weather calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the weather collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "weather_upstream_requests_total",
			Help: "Upstream weather requests by provider, operation and outcome",
		}, []string{"provider", "operation", "outcome"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_upstream_request_duration_seconds",
			Help:    "Time taken by upstream weather requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider", "operation"}),
	}
}

func (m *Metrics) observe(provider, operation string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(apperrors.TypeOf(err))
	}
	m.requests.WithLabelValues(provider, operation, outcome).Inc()
	m.duration.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}

// InstrumentedClient records request counts and latency for a Client.
type InstrumentedClient struct {
	client  Client
	metrics *Metrics
}

var _ Client = (*InstrumentedClient)(nil)

func NewInstrumentedClient(client Client, metrics *Metrics) *InstrumentedClient {
	return &InstrumentedClient{client: client, metrics: metrics}
}

func (c *InstrumentedClient) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	started := time.Now()
	reading, err := c.client.FetchCurrent(ctx, q)
	c.metrics.observe(c.client.Name(), "current", started, err)
	return reading, err
}

func (c *InstrumentedClient) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	started := time.Now()
	days, err := c.client.FetchForecast(ctx, q)
	c.metrics.observe(c.client.Name(), "forecast", started, err)
	return days, err
}

func (c *InstrumentedClient) Name() string {
	return c.client.Name()
}
