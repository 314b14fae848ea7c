package services

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ScreenState exposes the current screen snapshot.
type ScreenState interface {
	Snapshot() screen.Snapshot
}

type HealthService struct {
	redisClient redis.Cmdable
	screen      ScreenState
	provider    string
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

// NewHealthService creates a health service. redisClient may be nil when
// Redis is disabled.
func NewHealthService(redisClient redis.Cmdable, screenState ScreenState, provider, version string) *HealthService {
	return &HealthService{
		redisClient: redisClient,
		screen:      screenState,
		provider:    provider,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger().Named("health"),
	}
}

// CheckHealth reports DOWN only when nothing can be served. A failed screen
// or an unreachable Redis degrades the service.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	screenStatus := h.checkScreen()
	components["screen"] = screenStatus
	overallStatus = worse(overallStatus, screenStatus.Status)

	if h.redisClient != nil {
		redisStatus := h.checkRedis(ctx)
		components["redis"] = redisStatus
		overallStatus = worse(overallStatus, redisStatus.Status)
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Provider:   h.provider,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkScreen() types.HealthComponent {
	if h.screen == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Screen controller not configured"}
	}

	snap := h.screen.Snapshot()
	switch snap.Phase {
	case screen.PhaseFailed:
		details := "Last fetch failed"
		if snap.Failure != nil {
			details = "Last fetch failed: " + string(snap.Failure.Type)
		}
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: details}
	case screen.PhaseIdle:
		return types.HealthComponent{Status: types.HealthStatusUp, Details: "Not mounted"}
	default:
		return types.HealthComponent{Status: types.HealthStatusUp}
	}
}

// checkRedis degrades rather than fails: the rate limiter lets requests
// through when Redis is unreachable.
func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{Status: types.HealthStatusUp}
}

func worse(a, b types.HealthStatus) types.HealthStatus {
	rank := map[types.HealthStatus]int{
		types.HealthStatusUp:       0,
		types.HealthStatusDegraded: 1,
		types.HealthStatusDown:     2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
