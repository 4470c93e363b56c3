package api

import (
	"errors"

	"PromoPulse/internal/domain/models"
	"PromoPulse/internal/engine"
	xhttp "PromoPulse/pkg/http"
	xlogger "PromoPulse/pkg/logger"
	"PromoPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnomaliesEchoHandler exposes the detection engine to the dashboard.
type AnomaliesEchoHandler struct {
	logger *xlogger.Logger
	engine *engine.DetectionEngine
}

func NewAnomaliesEchoHandler(logger *xlogger.Logger, eng *engine.DetectionEngine) *AnomaliesEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AnomaliesEchoHandler{logger: logger, engine: eng}
}

func (h *AnomaliesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/anomalies", h.ListAnomalies)
	g.PATCH("/anomalies/:id/status", h.UpdateStatus)
	g.GET("/anomalies/stats", h.Stats)
	g.GET("/thresholds", h.ListThresholds)
	g.PUT("/thresholds", h.UpsertThreshold)
	g.DELETE("/thresholds/:id", h.RemoveThreshold)
	g.POST("/detection/run", h.RunDetection)
	e.GET("/healthz", h.Health)
}

func (h *AnomaliesEchoHandler) ListAnomalies(c echo.Context) error {
	req := &models.ListAnomaliesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	filter := models.AnomalyFilter{
		MetricName: req.Metric,
		Severity:   models.Severity(req.Severity),
		Status:     models.AnomalyStatus(req.Status),
	}
	if t, ok := util.ParseTime(req.From); ok {
		filter.From = t
	}
	if t, ok := util.ParseTime(req.To); ok {
		filter.To = t
	}

	anomalies := h.engine.ListAnomalies(filter)
	return xhttp.ListResponse(c, anomalies, int64(len(anomalies)))
}

func (h *AnomaliesEchoHandler) UpdateStatus(c echo.Context) error {
	req := &models.UpdateAnomalyStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := c.Param("id")

	if err := h.engine.UpdateAnomalyStatus(id, models.AnomalyStatus(req.Status)); err != nil {
		if errors.Is(err, engine.ErrAnomalyNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("anomaly %s not found", id))
		}
		h.logger.Error("update anomaly status", xlogger.String("id", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	a, _ := h.engine.GetAnomaly(id)
	return xhttp.SuccessResponse(c, a)
}

func (h *AnomaliesEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.GetStats())
}

func (h *AnomaliesEchoHandler) ListThresholds(c echo.Context) error {
	thresholds := h.engine.ListThresholds()
	return xhttp.ListResponse(c, thresholds, int64(len(thresholds)))
}

func (h *AnomaliesEchoHandler) UpsertThreshold(c echo.Context) error {
	req := &models.UpsertThresholdRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stored, err := h.engine.UpsertThreshold(req.Threshold())
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, stored)
}

func (h *AnomaliesEchoHandler) RemoveThreshold(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.RemoveThreshold(id); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("threshold %s not found", id))
	}
	return xhttp.NoContentResponse(c)
}

func (h *AnomaliesEchoHandler) RunDetection(c echo.Context) error {
	batch, err := h.engine.RunDetectionCycle(c.Request().Context())
	if err != nil {
		h.logger.Error("manual detection run", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("detection run failed").WithError(err))
	}
	return xhttp.ListResponse(c, batch, int64(len(batch)))
}

func (h *AnomaliesEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
