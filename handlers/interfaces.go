package handlers

import (
	"context"

	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/types"
)

// ScreenController is the subset of screen.Controller the HTTP surface uses.
type ScreenController interface {
	Snapshot() screen.Snapshot
	Search(ctx context.Context, city string) (screen.Snapshot, error)
	Refresh(ctx context.Context) (screen.Snapshot, error)
	Retry(ctx context.Context) (screen.Snapshot, error)
	ToggleUnit() screen.Snapshot
}

// HealthChecker reports service health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}
