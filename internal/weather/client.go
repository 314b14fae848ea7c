// Package weather fetches current conditions and daily forecasts from
// remote weather APIs and normalises them into types.WeatherReading and
// types.ForecastDay. Every call is a fresh request: there is no cache and no
// retry.
package weather

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/pkg/valueobjects"
	"github.com/NomadCrew/nomad-weather/types"
)

// Client is the weather data boundary used by the screen controller.
type Client interface {
	FetchCurrent(ctx context.Context, q types.Query) (*types.WeatherReading, error)
	FetchForecast(ctx context.Context, q types.Query) ([]types.ForecastDay, error)
	Name() string
}

const defaultTimeout = 10 * time.Second

// errNotFound marks an upstream 404 so providers can map it to CityNotFound.
var errNotFound = stderrors.New("resource not found")

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient   *http.Client
	baseURL      string
	geocodingURL string
	nominatimURL string
	userAgent    string
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithBaseURL overrides the provider's API root.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithGeocodingURL overrides the Open-Meteo geocoding endpoint.
func WithGeocodingURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.geocodingURL = u
		}
	}
}

// WithNominatimURL overrides the Nominatim root used for fallback and
// reverse geocoding.
func WithNominatimURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.nominatimURL = u
		}
	}
}

// WithUserAgent sets the User-Agent sent to Nominatim, which rejects
// anonymous clients.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

func buildOptions(defaults options, opts []Option) options {
	o := defaults
	o.httpClient = &http.Client{Timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// validateQuery rejects queries without exactly one key, and coordinates
// outside the valid ranges.
func validateQuery(q types.Query) error {
	if err := q.Validate(); err != nil {
		return apperrors.ValidationFailed("invalid weather query", err.Error())
	}
	if q.Coordinates != nil {
		if _, err := valueobjects.NewGeoPointFromCoordinates(q.Coordinates); err != nil {
			return err
		}
	}
	return nil
}

// getJSON performs a GET request and decodes a 200 response into target.
// Transport failures, non-200 statuses and undecodable bodies come back as
// NetworkError; a 404 comes back wrapping errNotFound.
func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, headers map[string]string, target interface{}) error {
	log := logger.GetLogger()

	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperrors.Network(err, "failed to build weather request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debugw("Calling weather API", "url", logger.MaskQueryValue(reqURL, "appid"))

	resp, err := client.Do(req)
	if err != nil {
		return apperrors.Network(err, "weather request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", endpoint, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.Network(
			fmt.Errorf("unexpected status %s: %s", resp.Status, string(body)),
			"weather API error",
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.Network(err, "invalid weather API response")
	}
	return nil
}

// notFoundAs maps errNotFound to CityNotFound for city queries and to a
// NetworkError otherwise. Other errors pass through.
func notFoundAs(err error, q types.Query) error {
	if !stderrors.Is(err, errNotFound) {
		return err
	}
	if q.Mode == types.QueryModeCity {
		return apperrors.CityNotFound(q.City)
	}
	return apperrors.Network(err, "no weather data for location")
}
