// Package screen holds the weather screen state machine. A Controller owns
// exactly one screen and moves it through Idle, Loading, Ready and Failed in
// response to mount, search, refresh, retry and unit toggles.
package screen

import (
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/types"
)

// Phase is the lifecycle position of the screen.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// Failure describes why the last fetch attempt ended in PhaseFailed.
type Failure struct {
	Type apperrors.ErrorType `json:"type"`
	// Mode is the query mode of the failed attempt; the alert text depends on it.
	Mode   types.QueryMode `json:"mode"`
	Detail string          `json:"detail,omitempty"`
}

// Snapshot is an immutable view of the screen state. Reading and Forecast
// are shared between snapshots and must not be modified.
type Snapshot struct {
	Phase      Phase                 `json:"phase"`
	Generation uint64                `json:"generation"`
	Unit       types.DisplayUnit     `json:"unit"`
	Query      *types.Query          `json:"query,omitempty"`
	Reading    *types.WeatherReading `json:"reading,omitempty"`
	Forecast   []types.ForecastDay   `json:"forecast"`
	// Refreshing is set while loading with data already on screen.
	Refreshing bool      `json:"refreshing"`
	Failure    *Failure  `json:"failure,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// HasData reports whether a complete reading and forecast are on screen.
func (s Snapshot) HasData() bool {
	return s.Reading != nil
}
