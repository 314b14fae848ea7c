// Package location is the device geolocation boundary: the permission
// prompt and the current-position lookup.
package location

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	"github.com/NomadCrew/nomad-weather/types"
)

// Permission is the outcome of the location permission prompt.
type Permission string

const (
	Granted Permission = "granted"
	Denied  Permission = "denied"
)

// Locator asks for permission and reports the device position.
type Locator interface {
	RequestPermission(ctx context.Context) (Permission, error)
	CurrentPosition(ctx context.Context) (types.Coordinates, error)
}

// NewFromConfig builds the locator selected by cfg.Mode.
func NewFromConfig(cfg config.LocationConfig, timeout time.Duration) (Locator, error) {
	switch cfg.Mode {
	case config.LocationModeStatic:
		return NewStaticLocator(types.Coordinates{Latitude: cfg.Latitude, Longitude: cfg.Longitude}, cfg.PermissionGranted), nil
	case config.LocationModeIP:
		return NewIPLocator(cfg.IPLookupURL, &http.Client{Timeout: timeout}), nil
	default:
		return nil, fmt.Errorf("unknown location mode %q", cfg.Mode)
	}
}
