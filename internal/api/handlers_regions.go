package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/regions"
)

type regionResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Slug        string                  `json:"slug"`
	Points      []geometry.Point        `json:"points"`
	Rectangular bool                    `json:"rectangular"`
	Calibration calibration.Calibration `json:"calibration"`
	Scale       string                  `json:"scale"`
	CreatedAt   time.Time               `json:"createdAt"`
}

func newRegionResponse(r regions.Region) regionResponse {
	return regionResponse{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Points:      r.Points,
		Rectangular: r.Rectangular,
		Calibration: r.Calibration,
		Scale:       r.Calibration.String(),
		CreatedAt:   r.CreatedAt,
	}
}

// HandleListRegions returns the scale regions in creation order
func (h *Handler) HandleListRegions(c echo.Context) error {
	rs := h.session.Regions()
	out := make([]regionResponse, len(rs))
	for i, r := range rs {
		out[i] = newRegionResponse(r)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleAddRegion adds a scale region described by points or min/max bounds
func (h *Handler) HandleAddRegion(c echo.Context) error {
	var spec session.RegionSpec
	if err := c.Bind(&spec); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	cal, err := spec.Calibration.Build(h.session.Unit(), h.dpi)
	if err != nil {
		return fromDomainError(err)
	}

	var r regions.Region
	switch {
	case spec.Min != nil && spec.Max != nil:
		r, err = h.session.AddRegionBounds(*spec.Min, *spec.Max, cal, spec.Name)
	case len(spec.Points) > 0:
		r, err = h.session.AddRegion(spec.Points, cal, spec.Name)
	default:
		return NewValidationError("points")
	}
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusCreated, newRegionResponse(r))
}

// HandleDeleteRegion removes a region by ID or slug
func (h *Handler) HandleDeleteRegion(c echo.Context) error {
	id := c.Param("id")
	if err := h.session.RemoveRegion(id); err != nil {
		return fromDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleClearRegions removes every region
func (h *Handler) HandleClearRegions(c echo.Context) error {
	h.session.ClearRegions()
	return c.NoContent(http.StatusNoContent)
}

// HandleResolveCalibration returns the calibration in effect at ?x=&y=
func (h *Handler) HandleResolveCalibration(c echo.Context) error {
	var p geometry.Point
	if err := echo.QueryParamsBinder(c).
		MustFloat64("x", &p.X).
		MustFloat64("y", &p.Y).
		BindError(); err != nil {
		return NewBadRequestError("x and y are required", err)
	}

	cal, ok := h.session.CalibrationAt(p)
	if !ok {
		return fromDomainError(session.ErrUncalibrated)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"calibration": cal,
		"scale":       cal.String(),
	})
}
