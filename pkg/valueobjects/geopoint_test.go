package valueobjects

import (
	"testing"

	"github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name        string
		latitude    float64
		longitude   float64
		shouldError bool
	}{
		{
			name:        "valid coordinates",
			latitude:    51.5074,
			longitude:   -0.1278,
			shouldError: false,
		},
		{
			name:        "invalid latitude - too high",
			latitude:    91.0,
			longitude:   0.0,
			shouldError: true,
		},
		{
			name:        "invalid latitude - too low",
			latitude:    -91.0,
			longitude:   0.0,
			shouldError: true,
		},
		{
			name:        "invalid longitude - too high",
			latitude:    0.0,
			longitude:   181.0,
			shouldError: true,
		},
		{
			name:        "invalid longitude - too low",
			latitude:    0.0,
			longitude:   -181.0,
			shouldError: true,
		},
		{
			name:        "edge case - max valid values",
			latitude:    90.0,
			longitude:   180.0,
			shouldError: false,
		},
		{
			name:        "edge case - min valid values",
			latitude:    -90.0,
			longitude:   -180.0,
			shouldError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, err := NewGeoPoint(tt.latitude, tt.longitude)
			if tt.shouldError {
				assert.Error(t, err)
				assert.Nil(t, point)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, point)
				assert.Equal(t, tt.latitude, point.Latitude())
				assert.Equal(t, tt.longitude, point.Longitude())
			}
		})
	}
}

func TestNewGeoPointFromCoordinates(t *testing.T) {
	point, err := NewGeoPointFromCoordinates(&types.Coordinates{Latitude: 59.9139, Longitude: 10.7522})
	require.NoError(t, err)
	assert.Equal(t, types.Coordinates{Latitude: 59.9139, Longitude: 10.7522}, point.Coordinates())

	_, err = NewGeoPointFromCoordinates(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ValidationError))

	_, err = NewGeoPointFromCoordinates(&types.Coordinates{Latitude: -95})
	assert.True(t, errors.IsType(err, errors.ValidationError))
}

func TestGeoPointString(t *testing.T) {
	point, err := NewGeoPoint(51.5074, -0.1278)
	require.NoError(t, err)

	expected := "(51.507400, -0.127800)"
	assert.Equal(t, expected, point.String())
}
