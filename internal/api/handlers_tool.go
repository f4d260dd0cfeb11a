package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// provideRequest answers a pending input request with a number or typed text
type provideRequest struct {
	Value float64    `json:"value"`
	Text  string     `json:"text"`
	Unit  units.Unit `json:"unit"`
}

type stepResponse struct {
	session.Result
	Status session.ToolStatus `json:"status"`
}

func (h *Handler) step(c echo.Context, res session.Result, err error) error {
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, stepResponse{Result: res, Status: h.session.Status()})
}

// HandleToolStatus returns the interactive tool state
func (h *Handler) HandleToolStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Status())
}

// HandleStartTool activates the :tool path parameter
func (h *Handler) HandleStartTool(c echo.Context) error {
	if err := h.session.Start(measurement.Tool(c.Param("tool"))); err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, h.session.Status())
}

// HandleClick feeds a point to the active tool
func (h *Handler) HandleClick(c echo.Context) error {
	var p geometry.Point
	if err := c.Bind(&p); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	res, err := h.session.Click(p)
	return h.step(c, res, err)
}

// HandleFinish completes an open-ended tool
func (h *Handler) HandleFinish(c echo.Context) error {
	res, err := h.session.Finish()
	return h.step(c, res, err)
}

// HandleNextRing starts the next cutout hole
func (h *Handler) HandleNextRing(c echo.Context) error {
	if err := h.session.NextRing(); err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, h.session.Status())
}

// HandleUndo removes the last point of the active tool
func (h *Handler) HandleUndo(c echo.Context) error {
	removed := h.session.Undo()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"removed": removed,
		"status":  h.session.Status(),
	})
}

// HandleCancel abandons the active tool
func (h *Handler) HandleCancel(c echo.Context) error {
	cancelled := h.session.Cancel()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cancelled": cancelled,
		"status":    h.session.Status(),
	})
}

// HandleProvide answers the pending input request
func (h *Handler) HandleProvide(c echo.Context) error {
	var req provideRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.Text != "" {
		res, err := h.session.ProvideText(req.Text, req.Unit)
		return h.step(c, res, err)
	}
	res, err := h.session.Provide(measurement.Response{Value: req.Value, Unit: req.Unit})
	return h.step(c, res, err)
}
