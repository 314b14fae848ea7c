package valueobjects

import (
	"fmt"

	"github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/types"
)

// GeoPoint is a validated geographic position. The zero value is the
// null island and is valid; construct through NewGeoPoint to get range checks.
type GeoPoint struct {
	latitude  float64
	longitude float64
}

// NewGeoPoint creates a new GeoPoint with validation
func NewGeoPoint(lat, lng float64) (*GeoPoint, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	return &GeoPoint{
		latitude:  lat,
		longitude: lng,
	}, nil
}

// NewGeoPointFromCoordinates validates a position reported by a locator or
// decoded from a request.
func NewGeoPointFromCoordinates(coords *types.Coordinates) (*GeoPoint, error) {
	if coords == nil {
		return nil, errors.ValidationFailed(
			"invalid coordinates",
			"coordinates cannot be nil",
		)
	}
	return NewGeoPoint(coords.Latitude, coords.Longitude)
}

func (g GeoPoint) Latitude() float64 {
	return g.latitude
}

func (g GeoPoint) Longitude() float64 {
	return g.longitude
}

// Coordinates converts the point back to the wire type used in queries.
func (g GeoPoint) Coordinates() types.Coordinates {
	return types.Coordinates{
		Latitude:  g.latitude,
		Longitude: g.longitude,
	}
}

func (g GeoPoint) String() string {
	return fmt.Sprintf("(%f, %f)", g.latitude, g.longitude)
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errors.ValidationFailed(
			"invalid latitude",
			fmt.Sprintf("latitude %f is outside valid range [-90, 90]", lat),
		)
	}

	if lng < -180 || lng > 180 {
		return errors.ValidationFailed(
			"invalid longitude",
			fmt.Sprintf("longitude %f is outside valid range [-180, 180]", lng),
		)
	}

	return nil
}
