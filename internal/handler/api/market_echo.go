package api

import (
	models "CoinPulse/internal/domain/models"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler exposes the market data and news endpoints.
type MarketEchoHandler struct {
	logger *xlogger.Logger
	market *usecase.MarketUseCase
	news   *usecase.NewsUseCase
}

func NewMarketEchoHandler(logger *xlogger.Logger, market *usecase.MarketUseCase, news *usecase.NewsUseCase) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, market: market, news: news}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/live/:coin", h.Live)
	g.GET("/live-multi", h.LiveMulti)
	g.GET("/history/:coin", h.History)
	g.GET("/trend/:coin", h.Trend)
	g.GET("/top-movers", h.TopMovers)
	g.GET("/news/:coin", h.News)
}

func (h *MarketEchoHandler) Live(c echo.Context) error {
	req := &models.LiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quote, err := h.market.Live(c.Request().Context(), req.Coin)
	if err != nil {
		h.logger.Error("live usecase error", xlogger.String("coin", req.Coin), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, quote)
}

func (h *MarketEchoHandler) LiveMulti(c echo.Context) error {
	req := &models.LiveMultiRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.market.LiveMulti(c.Request().Context(), req.Coins))
}

func (h *MarketEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	candles, err := h.market.History(c.Request().Context(), req.Coin, req.Days, req.Interval)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.String("coin", req.Coin), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, candles)
}

func (h *MarketEchoHandler) Trend(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	series, err := h.market.Trend(c.Request().Context(), req.Coin, req.Days, req.Interval)
	if err != nil {
		h.logger.Error("trend usecase error", xlogger.String("coin", req.Coin), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, series)
}

func (h *MarketEchoHandler) TopMovers(c echo.Context) error {
	req := &models.TopMoversRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.market.TopMovers(c.Request().Context(), req.Coins))
}

func (h *MarketEchoHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	items, err := h.news.ForCoin(c.Request().Context(), req.Coin)
	if err != nil {
		h.logger.Error("news usecase error", xlogger.String("coin", req.Coin), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, items)
}
