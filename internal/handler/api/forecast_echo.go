package api

import (
	models "CoinPulse/internal/domain/models"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler exposes the prediction endpoint.
type ForecastEchoHandler struct {
	logger   *xlogger.Logger
	forecast *usecase.ForecastUseCase
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecast *usecase.ForecastUseCase) *ForecastEchoHandler {
	return &ForecastEchoHandler{logger: logger, forecast: forecast}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/predict/:coin/:days", h.Predict)
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	fc, err := h.forecast.Predict(c.Request().Context(), req.Coin, req.Days)
	if err != nil {
		h.logger.Error("predict usecase error",
			xlogger.String("coin", req.Coin),
			xlogger.Int("days", req.Days),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, fc)
}
