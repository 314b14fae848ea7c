package handlers

import (
	stderrors "errors"
	"net/http"

	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/internal/presentation"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScreenHandler serves the weather screen. Every endpoint answers with the
// rendered view; actions that start a fetch answer once it has finished.
type ScreenHandler struct {
	controller ScreenController
	log        *zap.SugaredLogger
}

func NewScreenHandler(controller ScreenController) *ScreenHandler {
	return &ScreenHandler{
		controller: controller,
		log:        logger.GetLogger().Named("screen_handler"),
	}
}

// SearchRequest is the body of POST /v1/screen/search.
type SearchRequest struct {
	City string `json:"city"`
}

// GetScreenHandler returns the current view.
func (h *ScreenHandler) GetScreenHandler(c *gin.Context) {
	c.JSON(http.StatusOK, presentation.Render(h.controller.Snapshot()))
}

// SearchHandler fetches weather for a city name.
func (h *ScreenHandler) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	snap, err := h.controller.Search(c.Request.Context(), req.City)
	h.respond(c, "search", snap, err)
}

// RefreshHandler repeats the last query (pull-to-refresh).
func (h *ScreenHandler) RefreshHandler(c *gin.Context) {
	snap, err := h.controller.Refresh(c.Request.Context())
	h.respond(c, "refresh", snap, err)
}

// RetryHandler repeats the failed query.
func (h *ScreenHandler) RetryHandler(c *gin.Context) {
	snap, err := h.controller.Retry(c.Request.Context())
	h.respond(c, "retry", snap, err)
}

// ToggleUnitHandler switches between Celsius and Fahrenheit.
func (h *ScreenHandler) ToggleUnitHandler(c *gin.Context) {
	c.JSON(http.StatusOK, presentation.Render(h.controller.ToggleUnit()))
}

// respond renders the snapshot. A failed fetch is still a 200: the alert is
// part of the view. Only rejected actions become error responses.
func (h *ScreenHandler) respond(c *gin.Context, action string, snap screen.Snapshot, err error) {
	if err != nil {
		var appErr *apperrors.AppError
		if !stderrors.As(err, &appErr) {
			err = apperrors.Wrap(err, apperrors.UnavailableError, "Screen action did not complete")
		}
		h.log.Debugw("Screen action rejected", "action", action, "error", err)
		_ = c.Error(err)
		return
	}

	if snap.Phase == screen.PhaseFailed && snap.Failure != nil {
		h.log.Infow("Screen fetch failed",
			"action", action,
			"failure_type", snap.Failure.Type,
			"mode", snap.Failure.Mode)
	}
	c.JSON(http.StatusOK, presentation.Render(snap))
}
