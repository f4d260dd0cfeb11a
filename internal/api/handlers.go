package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// MIMEMsgpack is the content type of binary calibration metadata
const MIMEMsgpack = "application/msgpack"

// Handler serves the measurement API for one session
type Handler struct {
	session  *session.Session
	decimals int
	dpi      float64
	version  string
}

// NewHandler creates a new API handler
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		session:  deps.Session,
		decimals: deps.Decimals,
		dpi:      deps.DPI,
		version:  deps.Version,
	}
}

// HandleHealth returns server health status
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	})
}

type unitResponse struct {
	Unit   units.Unit   `json:"unit"`
	Name   string       `json:"name"`
	System units.System `json:"system"`
	Meters float64      `json:"meters"`
}

// HandleListUnits returns the supported length units
func (h *Handler) HandleListUnits(c echo.Context) error {
	out := make([]unitResponse, 0, len(units.All()))
	for _, u := range units.All() {
		info, err := u.Info()
		if err != nil {
			return NewInternalError("unit table is inconsistent", err)
		}
		out = append(out, unitResponse{Unit: info.Unit, Name: info.Name, System: info.System, Meters: info.Meters})
	}
	return c.JSON(http.StatusOK, out)
}

type presetResponse struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// HandleListPresets returns the known drawing scales
func (h *Handler) HandleListPresets(c echo.Context) error {
	presets := calibration.Presets()
	out := make([]presetResponse, len(presets))
	for i, p := range presets {
		out[i] = presetResponse{Name: p.Name, Ratio: p.Ratio}
	}
	return c.JSON(http.StatusOK, out)
}

// HandleConvert converts ?value= from ?from= to ?to=. ?power=2 converts areas
// and ?power=3 volumes. Feet values may be given as feet-inches, e.g. 10'6".
func (h *Handler) HandleConvert(c echo.Context) error {
	from, err := units.ParseUnit(c.QueryParam("from"))
	if err != nil {
		return NewBadRequestError("invalid source unit", err)
	}
	to, err := units.ParseUnit(c.QueryParam("to"))
	if err != nil {
		return NewBadRequestError("invalid target unit", err)
	}

	raw := c.QueryParam("value")
	if raw == "" {
		return NewValidationError("value")
	}
	value, ok := format.ParseDistance(raw, from)
	if !ok {
		return NewValidationError("value")
	}

	power := 1
	if p := c.QueryParam("power"); p != "" {
		power, err = strconv.Atoi(p)
		if err != nil || power < 1 || power > 3 {
			return NewValidationError("power")
		}
	}

	result, err := units.ConvertPower(value, from, to, power)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"value":     result,
		"formatted": format.Measurement(result, h.decimals),
		"unit":      to,
		"power":     power,
	})
}

// HandleGetCalibration returns the global calibration, re-expressed in ?unit= when given
func (h *Handler) HandleGetCalibration(c echo.Context) error {
	cal, ok := h.session.Calibration()
	resp := map[string]interface{}{
		"calibrated": ok,
		"unit":       h.session.Unit(),
	}
	if u := c.QueryParam("unit"); u != "" && ok {
		unit, err := units.ParseUnit(u)
		if err != nil {
			return NewBadRequestError("invalid unit", err)
		}
		if cal, err = cal.InUnit(unit); err != nil {
			return fromDomainError(err)
		}
	}
	if ok {
		resp["calibration"] = cal
		resp["scale"] = cal.String()
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleSetCalibration replaces the global calibration from a calibration description
func (h *Handler) HandleSetCalibration(c echo.Context) error {
	var spec session.CalibrationSpec
	if err := c.Bind(&spec); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	cal, err := spec.Build(h.session.Unit(), h.dpi)
	if err != nil {
		return fromDomainError(err)
	}
	if err := h.session.SetCalibration(cal); err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, cal)
}

// HandleGetCalibrationMetadata returns the global calibration as a msgpack blob
func (h *Handler) HandleGetCalibrationMetadata(c echo.Context) error {
	cal, ok := h.session.Calibration()
	if !ok {
		return NewNotFoundError("calibration", "global")
	}
	data, err := cal.MarshalMetadata()
	if err != nil {
		return NewInternalError("failed to encode calibration", err)
	}
	return c.Blob(http.StatusOK, MIMEMsgpack, data)
}

// HandleSetCalibrationMetadata restores the global calibration from a msgpack blob
func (h *Handler) HandleSetCalibrationMetadata(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}
	if len(data) == 0 {
		return NewValidationError("body")
	}

	cal, err := calibration.UnmarshalMetadata(data)
	if err != nil {
		return NewBadRequestError("invalid calibration metadata", err)
	}
	if err := h.session.SetCalibration(cal); err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, cal)
}
