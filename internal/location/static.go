package location

import (
	"context"
	"sync"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/pkg/valueobjects"
	"github.com/NomadCrew/nomad-weather/types"
)

// StaticLocator reports a fixed position and a fixed permission answer.
// Both can be changed at runtime, which the terminal client and tests use.
type StaticLocator struct {
	mu       sync.RWMutex
	position types.Coordinates
	granted  bool
}

var _ Locator = (*StaticLocator)(nil)

func NewStaticLocator(position types.Coordinates, granted bool) *StaticLocator {
	return &StaticLocator{position: position, granted: granted}
}

func (l *StaticLocator) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return Denied, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.granted {
		return Granted, nil
	}
	return Denied, nil
}

func (l *StaticLocator) CurrentPosition(ctx context.Context) (types.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}
	l.mu.RLock()
	position := l.position
	l.mu.RUnlock()

	point, err := valueobjects.NewGeoPointFromCoordinates(&position)
	if err != nil {
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}
	return point.Coordinates(), nil
}

// SetPermission changes the answer to future permission prompts.
func (l *StaticLocator) SetPermission(granted bool) {
	l.mu.Lock()
	l.granted = granted
	l.mu.Unlock()
}

// MoveTo changes the reported position.
func (l *StaticLocator) MoveTo(position types.Coordinates) {
	l.mu.Lock()
	l.position = position
	l.mu.Unlock()
}
