package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/pkg/valueobjects"
	"github.com/NomadCrew/nomad-weather/types"
)

// IPLocator estimates the position from the public IP address using an
// ip-api.com compatible endpoint. There is no prompt to answer, so
// permission is always granted.
type IPLocator struct {
	url    string
	client *http.Client
}

var _ Locator = (*IPLocator)(nil)

func NewIPLocator(url string, client *http.Client) *IPLocator {
	if client == nil {
		client = http.DefaultClient
	}
	return &IPLocator{url: url, client: client}
}

func (l *IPLocator) RequestPermission(ctx context.Context) (Permission, error) {
	return Granted, nil
}

func (l *IPLocator) CurrentPosition(ctx context.Context) (types.Coordinates, error) {
	log := logger.GetLogger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, apperrors.LocationUnavailable(fmt.Errorf("ip lookup API error: %s", resp.Status))
	}

	var body struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		City    string  `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}
	if body.Status != "" && body.Status != "success" {
		return types.Coordinates{}, apperrors.LocationUnavailable(fmt.Errorf("ip lookup failed: %s", body.Message))
	}

	point, err := valueobjects.NewGeoPoint(body.Lat, body.Lon)
	if err != nil {
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}

	log.Debugw("Resolved position from IP", "city", body.City, "position", point.String())
	return point.Coordinates(), nil
}
