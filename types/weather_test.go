package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayUnit_Toggle(t *testing.T) {
	assert.Equal(t, Fahrenheit, Celsius.Toggle())
	assert.Equal(t, Celsius, Fahrenheit.Toggle())
	assert.Equal(t, Celsius, Celsius.Toggle().Toggle())
	assert.Equal(t, "C", Celsius.Symbol())
	assert.Equal(t, "F", Fahrenheit.Symbol())
}

func TestParseDisplayUnit(t *testing.T) {
	tests := []struct {
		input    string
		expected DisplayUnit
		wantErr  bool
	}{
		{input: "", expected: Celsius},
		{input: "c", expected: Celsius},
		{input: " Celsius ", expected: Celsius},
		{input: "F", expected: Fahrenheit},
		{input: "fahrenheit", expected: Fahrenheit},
		{input: "kelvin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			unit, err := ParseDisplayUnit(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, unit)
		})
	}
}

func TestQuery_Validate(t *testing.T) {
	coords := Coordinates{Latitude: 1, Longitude: 2}

	assert.NoError(t, ByCity("Paris").Validate())
	assert.NoError(t, ByCoordinates(coords).Validate())

	assert.Error(t, ByCity("   ").Validate())
	assert.Error(t, Query{Mode: QueryModeCity, City: "Paris", Coordinates: &coords}.Validate())
	assert.Error(t, Query{Mode: QueryModeLocation, City: "Paris"}.Validate())
	assert.Error(t, Query{Mode: QueryModeCity, Coordinates: &coords}.Validate())
	assert.Error(t, Query{}.Validate())
}

func TestQuery_String(t *testing.T) {
	assert.Equal(t, "Paris", ByCity("Paris").String())
	assert.Equal(t, "(48.8566, 2.3522)", ByCoordinates(Coordinates{Latitude: 48.8566, Longitude: 2.3522}).String())
}
