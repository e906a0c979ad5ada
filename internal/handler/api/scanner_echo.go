package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	models "VolScan/internal/domain/models"
	"VolScan/internal/usecase"
	xhttp "VolScan/pkg/http"
	xlogger "VolScan/pkg/logger"
)

// ScannerEchoHandler exposes the pipeline over HTTP: trigger scans,
// browse screen results and signals, inspect prediction outcomes.
type ScannerEchoHandler struct {
	logger  *xlogger.Logger
	scan    *usecase.ScanUseCase
	tracker *usecase.TrackerUseCase
}

func NewScannerEchoHandler(logger *xlogger.Logger, scan *usecase.ScanUseCase, tracker *usecase.TrackerUseCase) *ScannerEchoHandler {
	return &ScannerEchoHandler{logger: logger, scan: scan, tracker: tracker}
}

func (h *ScannerEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/scan", h.Scan)
	g.GET("/screen", h.Screen)
	g.GET("/signals", h.Signals)
	g.GET("/signals/top", h.TopSignal)
	g.GET("/predictions", h.Predictions)
	g.GET("/performance", h.Performance)
}

// Scan runs the pipeline synchronously and returns the fresh report.
func (h *ScannerEchoHandler) Scan(c echo.Context) error {
	report, err := h.scan.Run(c.Request().Context())
	if err != nil {
		h.logger.Error("scan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	// Resolve open predictions against whatever bars the scan just
	// stored. Failures here never void the scan result.
	if _, err := h.tracker.ResolvePending(c.Request().Context()); err != nil {
		h.logger.Warn("post-scan resolution error", xlogger.Error(err))
	}
	return xhttp.SuccessResponse(c, report)
}

// Screen returns the screening decisions of the latest scan.
func (h *ScannerEchoHandler) Screen(c echo.Context) error {
	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report := h.scan.Last()
	if report == nil {
		return xhttp.NotFoundResponse(c, "no scan has completed yet")
	}

	rows := report.Screened
	if req.Passed || req.Symbols != "" {
		var want map[string]bool
		if req.Symbols != "" {
			want = map[string]bool{}
			for _, sym := range strings.Split(req.Symbols, ",") {
				want[strings.ToUpper(strings.TrimSpace(sym))] = true
			}
		}
		filtered := make([]models.ScreenResult, 0, len(rows))
		for _, sr := range rows {
			if req.Passed && !sr.Passed {
				continue
			}
			if want != nil && !want[sr.Symbol] {
				continue
			}
			filtered = append(filtered, sr)
		}
		rows = filtered
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Signals lists persisted signals, strongest first.
func (h *ScannerEchoHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals, err := h.tracker.Signals(c.Request().Context(), models.SignalType(req.Type), req.Limit)
	if err != nil {
		h.logger.Error("signals query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

// TopSignal returns the strongest signal of the latest scan.
func (h *ScannerEchoHandler) TopSignal(c echo.Context) error {
	report := h.scan.Last()
	if report == nil || report.Top() == nil {
		return xhttp.NotFoundResponse(c, "no signals available")
	}
	return xhttp.SuccessResponse(c, report.Top())
}

// Predictions lists prediction records with optional filters.
func (h *ScannerEchoHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	records, err := h.tracker.Predictions(c.Request().Context(),
		models.PredictionStatus(req.Status), strings.ToUpper(req.Symbol), req.Limit)
	if err != nil {
		h.logger.Error("predictions query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, records, int64(len(records)))
}

// Performance returns the aggregated win/loss view per signal type.
func (h *ScannerEchoHandler) Performance(c echo.Context) error {
	summary, err := h.tracker.Summary(c.Request().Context())
	if err != nil {
		h.logger.Error("performance query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, summary)
}
