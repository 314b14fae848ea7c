package location

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

func TestStaticLocator(t *testing.T) {
	ctx := context.Background()
	position := types.Coordinates{Latitude: 35.68, Longitude: 139.69}
	l := NewStaticLocator(position, true)

	perm, err := l.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, Granted, perm)

	got, err := l.CurrentPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, position, got)

	l.SetPermission(false)
	perm, err = l.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, Denied, perm)

	l.MoveTo(types.Coordinates{Latitude: 200})
	_, err = l.CurrentPosition(ctx)
	assert.True(t, apperrors.IsType(err, apperrors.LocationUnavailableError))
}

func TestStaticLocator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewStaticLocator(types.Coordinates{}, true)

	_, err := l.CurrentPosition(ctx)
	assert.True(t, apperrors.IsType(err, apperrors.LocationUnavailableError))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIPLocator(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected *types.Coordinates
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"status":"success","lat":43.65,"lon":-79.38,"city":"Toronto"}`,
			expected: &types.Coordinates{Latitude: 43.65, Longitude: -79.38},
		},
		{
			name:   "lookup failed",
			status: http.StatusOK,
			body:   `{"status":"fail","message":"reserved range"}`,
		},
		{
			name:   "upstream error",
			status: http.StatusInternalServerError,
			body:   `oops`,
		},
		{
			name:   "garbage",
			status: http.StatusOK,
			body:   `{`,
		},
		{
			name:   "out of range",
			status: http.StatusOK,
			body:   `{"status":"success","lat":95,"lon":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			l := NewIPLocator(srv.URL, srv.Client())
			perm, err := l.RequestPermission(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Granted, perm)

			got, err := l.CurrentPosition(context.Background())
			if tt.expected == nil {
				assert.True(t, apperrors.IsType(err, apperrors.LocationUnavailableError))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, *tt.expected, got)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	l, err := NewFromConfig(config.LocationConfig{Mode: config.LocationModeStatic, PermissionGranted: true}, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &StaticLocator{}, l)

	l, err = NewFromConfig(config.LocationConfig{Mode: config.LocationModeIP, IPLookupURL: "http://localhost/json"}, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &IPLocator{}, l)

	_, err = NewFromConfig(config.LocationConfig{Mode: "gps"}, time.Second)
	assert.Error(t, err)
}
