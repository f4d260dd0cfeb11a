// routes.go - Route registration and middleware
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/philipparndt/gomeasure/internal/session"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Session  *session.Session
	Decimals int     // display precision of formatted values
	DPI      float64 // resolution for preset calibrations without their own
	Version  string
}

// Options configures the middleware chain
type Options struct {
	RequestLogging bool
	BodyLimit      string // e.g. "1M"
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.HandleHealth)

	g := e.Group("/api")
	g.GET("/health", h.HandleHealth)
	g.GET("/units", h.HandleListUnits)
	g.GET("/presets", h.HandleListPresets)
	g.GET("/convert", h.HandleConvert)

	// Calibration routes
	g.GET("/calibration", h.HandleGetCalibration)
	g.PUT("/calibration", h.HandleSetCalibration)
	g.GET("/calibration/metadata", h.HandleGetCalibrationMetadata)
	g.PUT("/calibration/metadata", h.HandleSetCalibrationMetadata)
	g.GET("/calibration/at", h.HandleResolveCalibration)

	// Scale region routes
	g.GET("/regions", h.HandleListRegions)
	g.POST("/regions", h.HandleAddRegion)
	g.DELETE("/regions", h.HandleClearRegions)
	g.DELETE("/regions/:id", h.HandleDeleteRegion)

	// Measurement routes
	g.GET("/measurements", h.HandleListMeasurements)
	g.GET("/measurements/export", h.HandleExportMeasurements)
	g.GET("/measurements/summary", h.HandleSummary)
	g.GET("/measurements/find", h.HandleFindMeasurements)
	g.GET("/measurements/:id", h.HandleGetMeasurement)
	g.PUT("/measurements/:id", h.HandleRemeasure)
	g.POST("/measure/:type", h.HandleMeasure)
	g.POST("/script", h.HandleRunScript)

	// Interactive tool routes
	tool := g.Group("/tool")
	tool.GET("", h.HandleToolStatus)
	tool.POST("/start/:tool", h.HandleStartTool)
	tool.POST("/click", h.HandleClick)
	tool.POST("/finish", h.HandleFinish)
	tool.POST("/next-ring", h.HandleNextRing)
	tool.POST("/undo", h.HandleUndo)
	tool.POST("/cancel", h.HandleCancel)
	tool.POST("/provide", h.HandleProvide)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts Options) {
	e.HTTPErrorHandler = ErrorHandler

	if opts.RequestLogging {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Path(), "/health")
			},
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
}

// NewServer creates an Echo instance serving the API for deps.Session
func NewServer(deps *Dependencies, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	SetupMiddleware(e, opts)
	RegisterRoutes(e, NewHandler(deps))
	return e
}
