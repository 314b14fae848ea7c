package weather

import (
	"context"
	"fmt"

	"github.com/NomadCrew/nomad-weather/types"
	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a Client with a token bucket shared by both
// operations, so a concurrent fetch pair consumes two tokens.
type RateLimitedClient struct {
	client  Client
	limiter *rate.Limiter
	name    string
}

var _ Client = (*RateLimitedClient)(nil)

// NewRateLimitedClient creates a new rate limited client.
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedClient(client Client, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    client.Name(),
	}
}

// FetchCurrent waits for a token, or for ctx to end, then forwards.
func (r *RateLimitedClient) FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.client.FetchCurrent(ctx, q)
}

// FetchForecast waits for a token, or for ctx to end, then forwards.
func (r *RateLimitedClient) FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.client.FetchForecast(ctx, q)
}

// Name returns the wrapped provider's name.
func (r *RateLimitedClient) Name() string {
	return r.name
}
