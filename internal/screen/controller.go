package screen

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/internal/location"
	"github.com/NomadCrew/nomad-weather/internal/weather"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Controller drives one weather screen. All state changes happen under mu
// and are published to observers in order.
//
// Every load takes a new generation and cancels the load before it. A
// result is applied only if its generation is still current, so a slow
// superseded fetch can never overwrite a newer one.
type Controller struct {
	client  weather.Client
	locator location.Locator
	log     *zap.SugaredLogger

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu         sync.Mutex
	state      Snapshot
	generation uint64
	cancelLoad context.CancelFunc
	closed     bool
	observers  map[string]chan Snapshot
}

// NewController creates a controller in PhaseIdle with Celsius selected.
func NewController(client weather.Client, locator location.Locator) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		client:     client,
		locator:    locator,
		log:        logger.GetLogger().Named("screen"),
		baseCtx:    ctx,
		baseCancel: cancel,
		state: Snapshot{
			Phase:    PhaseIdle,
			Unit:     types.Celsius,
			Forecast: []types.ForecastDay{},
		},
		observers: make(map[string]chan Snapshot),
	}
}

// Snapshot returns the current screen state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount runs the location flow: permission prompt, current position, then
// the fetch pair. It returns once the load finishes, is superseded, or ctx
// ends; ctx only bounds the wait, not the load.
func (c *Controller) Mount(ctx context.Context) (Snapshot, error) {
	q := types.Query{Mode: types.QueryModeLocation}
	done, err := c.startLoad(&q, false)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.wait(ctx, done)
}

// Search fetches the pair for a city name. Blank input is rejected without
// any state change.
func (c *Controller) Search(ctx context.Context, city string) (Snapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return c.Snapshot(), apperrors.ValidationFailed("city is required", "search text is blank")
	}
	q := types.ByCity(city)
	done, err := c.startLoad(&q, false)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.wait(ctx, done)
}

// Refresh re-runs the last query mode, keeping the displayed data until the
// new pair arrives. A never-loaded screen refreshes by mounting.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	done, err := c.startLoad(nil, false)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.wait(ctx, done)
}

// Retry re-runs the failed attempt. It is only valid in PhaseFailed.
func (c *Controller) Retry(ctx context.Context) (Snapshot, error) {
	done, err := c.startLoad(nil, true)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.wait(ctx, done)
}

// ToggleUnit flips between Celsius and Fahrenheit. It never fetches.
func (c *Controller) ToggleUnit() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.state
	next.Unit = next.Unit.Toggle()
	c.setLocked(next)
	c.log.Debugw("Toggled display unit", "unit", next.Unit)
	return next
}

// Close cancels any in-flight load, waits for it, and closes all observer
// channels.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.baseCancel()
	c.wg.Wait()

	c.mu.Lock()
	for id, ch := range c.observers {
		close(ch)
		delete(c.observers, id)
	}
	c.mu.Unlock()
}

// lastQueryLocked is the query of the most recent attempt, without resolved
// coordinates, so a location refresh prompts and locates again.
func (c *Controller) lastQueryLocked() types.Query {
	if c.state.Query != nil && c.state.Query.Mode == types.QueryModeCity {
		return types.ByCity(c.state.Query.City)
	}
	return types.Query{Mode: types.QueryModeLocation}
}

// startLoad begins a load of q, or of the last query when q is nil. With
// requireFailed the load only starts if the screen is in PhaseFailed; the
// check and the start happen under one lock.
func (c *Controller) startLoad(q *types.Query, requireFailed bool) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, apperrors.New(apperrors.UnavailableError, "screen is closed", "")
	}
	if requireFailed && c.state.Phase != PhaseFailed {
		return nil, apperrors.ValidationFailed("nothing to retry", fmt.Sprintf("screen is %s", c.state.Phase))
	}
	if q == nil {
		last := c.lastQueryLocked()
		q = &last
	}

	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.generation++
	gen := c.generation
	loadCtx, cancel := context.WithCancel(c.baseCtx)
	c.cancelLoad = cancel

	next := c.state
	next.Phase = PhaseLoading
	next.Generation = gen
	next.Refreshing = next.HasData()
	next.Failure = nil
	query := *q
	next.Query = &query
	c.setLocked(next)

	c.log.Infow("Loading weather", "generation", gen, "mode", query.Mode, "query", query.String())

	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		defer cancel()
		c.run(loadCtx, gen, query)
	}()
	return done, nil
}

func (c *Controller) wait(ctx context.Context, done <-chan struct{}) (Snapshot, error) {
	select {
	case <-done:
		return c.Snapshot(), nil
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}
}

func (c *Controller) run(ctx context.Context, gen uint64, q types.Query) {
	if q.Mode == types.QueryModeLocation {
		resolved, err := c.locate(ctx)
		if err != nil {
			c.fail(gen, q, err)
			return
		}
		q = resolved
	}

	reading, days, err := c.fetchPair(ctx, q)
	if err != nil {
		c.fail(gen, q, err)
		return
	}
	c.succeed(gen, q, reading, days)
}

func (c *Controller) locate(ctx context.Context) (types.Query, error) {
	permission, err := c.locator.RequestPermission(ctx)
	if err != nil {
		return types.Query{}, apperrors.LocationUnavailable(err)
	}
	if permission != location.Granted {
		return types.Query{}, apperrors.PermissionDenied("location permission was not granted")
	}

	coords, err := c.locator.CurrentPosition(ctx)
	if err != nil {
		if apperrors.IsType(err, apperrors.LocationUnavailableError) {
			return types.Query{}, err
		}
		return types.Query{}, apperrors.LocationUnavailable(err)
	}
	return types.ByCoordinates(coords), nil
}

// fetchPair fetches current conditions and the forecast concurrently. The
// first failure cancels the other request and fails the pair.
func (c *Controller) fetchPair(ctx context.Context, q types.Query) (*types.WeatherReading, []types.ForecastDay, error) {
	var (
		reading *types.WeatherReading
		days    []types.ForecastDay
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := c.client.FetchCurrent(gctx, q)
		if err != nil {
			return fmt.Errorf("current weather: %w", err)
		}
		reading = r
		return nil
	})
	g.Go(func() error {
		d, err := c.client.FetchForecast(gctx, q)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		days = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if reading == nil {
		return nil, nil, apperrors.Network(fmt.Errorf("no reading returned"), "invalid weather data")
	}
	return reading, days, nil
}

func (c *Controller) succeed(gen uint64, q types.Query, reading *types.WeatherReading, days []types.ForecastDay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		c.log.Debugw("Discarding stale weather result", "generation", gen, "current", c.generation)
		return
	}

	r := *reading
	forecast := make([]types.ForecastDay, len(days))
	copy(forecast, days)
	if len(forecast) > types.ForecastDays {
		forecast = forecast[:types.ForecastDays]
	}

	next := c.state
	next.Phase = PhaseReady
	next.Reading = &r
	next.Forecast = forecast
	next.Refreshing = false
	next.Failure = nil
	query := q
	next.Query = &query
	next.UpdatedAt = time.Now().UTC()
	c.cancelLoad = nil
	c.setLocked(next)

	c.log.Infow("Weather loaded",
		"generation", gen,
		"city", r.City,
		"condition", r.Condition,
		"forecast_days", len(forecast))
}

func (c *Controller) fail(gen uint64, q types.Query, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		c.log.Debugw("Discarding stale weather failure", "generation", gen, "current", c.generation, "error", err)
		return
	}

	errType := apperrors.TypeOf(err)
	if !apperrors.IsScreenFailure(errType) {
		errType = apperrors.NetworkError
	}

	// The previous complete pair, if any, stays on screen.
	next := c.state
	next.Phase = PhaseFailed
	next.Refreshing = false
	next.Failure = &Failure{Type: errType, Mode: q.Mode, Detail: err.Error()}
	c.cancelLoad = nil
	c.setLocked(next)

	c.log.Errorw("Weather load failed",
		"generation", gen,
		"mode", q.Mode,
		"query", q.String(),
		"failure", errType,
		"error", err)
}

// currentLocked reports whether gen is still the latest load.
func (c *Controller) currentLocked(gen uint64) bool {
	return !c.closed && gen == c.generation
}
