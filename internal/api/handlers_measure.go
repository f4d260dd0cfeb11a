package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/analysis"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// HandleMeasure computes a measurement of the :type path parameter from pixel geometry
func (h *Handler) HandleMeasure(c echo.Context) error {
	t, err := record.ParseType(c.Param("type"))
	if err != nil {
		return fromDomainError(err)
	}

	var g session.Geometry
	if err := c.Bind(&g); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	r, err := h.session.Measure(t, g)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

// HandleRemeasure supersedes the record :id with a measurement of new geometry
func (h *Handler) HandleRemeasure(c echo.Context) error {
	var g session.Geometry
	if err := c.Bind(&g); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	r, err := h.session.Remeasure(c.Param("id"), g)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

// HandleListMeasurements returns the active records, or every record with ?all=true
func (h *Handler) HandleListMeasurements(c echo.Context) error {
	all, _ := strconv.ParseBool(c.QueryParam("all"))

	records := h.session.History().Active()
	if all {
		records = h.session.History().All()
	}
	return c.JSON(http.StatusOK, records)
}

// HandleGetMeasurement returns one record
func (h *Handler) HandleGetMeasurement(c echo.Context) error {
	id := c.Param("id")
	r, ok := h.session.History().Get(id)
	if !ok {
		return NewNotFoundError("measurement", id)
	}

	resp := map[string]interface{}{"record": r}
	if newer, ok := h.session.History().SupersededBy(id); ok {
		resp["supersededBy"] = newer
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleExportMeasurements returns the active records as table rows
func (h *Handler) HandleExportMeasurements(c echo.Context) error {
	decimals := h.decimals
	if d := c.QueryParam("decimals"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 || n > 10 {
			return NewValidationError("decimals")
		}
		decimals = n
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"columns": record.Columns,
		"rows":    h.session.History().Rows(decimals),
	})
}

// HandleSummary returns per-type statistics over the active records in ?unit=,
// defaulting to the session unit
func (h *Handler) HandleSummary(c echo.Context) error {
	unit := h.session.Unit()
	if u := c.QueryParam("unit"); u != "" {
		parsed, err := units.ParseUnit(u)
		if err != nil {
			return NewBadRequestError("invalid unit", err)
		}
		unit = parsed
	}

	summary, err := analysis.Summarize(h.session.History().Active(), unit)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// HandleFindMeasurements returns active records of ?type= ranked by ?largest=N or
// ?smallest=N, or those whose value in ?unit= lies within ?min= and ?max=
func (h *Handler) HandleFindMeasurements(c echo.Context) error {
	t, err := record.ParseType(c.QueryParam("type"))
	if err != nil {
		return fromDomainError(err)
	}

	positive := func(name string) (int, error) {
		v := c.QueryParam(name)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, NewValidationError(name)
		}
		return n, nil
	}
	largest, err := positive("largest")
	if err != nil {
		return err
	}
	smallest, err := positive("smallest")
	if err != nil {
		return err
	}

	records := h.session.History().Active()
	var found []record.Record
	switch {
	case largest > 0 && smallest > 0:
		return NewValidationError("largest")
	case largest > 0:
		found, err = analysis.FindLargest(records, t, largest)
	case smallest > 0:
		found, err = analysis.FindSmallest(records, t, smallest)
	default:
		unit := h.session.Unit()
		if u := c.QueryParam("unit"); u != "" {
			if unit, err = units.ParseUnit(u); err != nil {
				return NewBadRequestError("invalid unit", err)
			}
		}
		min, max := math.Inf(-1), math.Inf(1)
		if err := echo.QueryParamsBinder(c).
			Float64("min", &min).
			Float64("max", &max).
			BindError(); err != nil {
			return NewBadRequestError("invalid range", err)
		}
		if min > max {
			return NewValidationError("min")
		}
		found, err = analysis.FindInRange(records, t, unit, min, max)
	}
	if err != nil {
		return fromDomainError(err)
	}
	if found == nil {
		found = []record.Record{}
	}
	return c.JSON(http.StatusOK, found)
}

// HandleRunScript runs a batch of calibration, region and measurement steps
func (h *Handler) HandleRunScript(c echo.Context) error {
	var sc session.Script
	if err := c.Bind(&sc); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	records, err := h.session.Run(&sc, h.dpi)
	if err != nil {
		apiErr := fromDomainError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			return apiErr
		}
		// Steps before the failing one are kept in the history
		return c.JSON(apiErr.Status, map[string]interface{}{
			"error":   apiErr,
			"records": records,
		})
	}
	return c.JSON(http.StatusCreated, records)
}
