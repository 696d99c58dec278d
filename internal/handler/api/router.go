package api

import (
	"github.com/labstack/echo/v4"
)

// Router bundles every API handler behind one route registrar.
type Router struct {
	market   *MarketEchoHandler
	forecast *ForecastEchoHandler
}

func NewRouter(market *MarketEchoHandler, forecast *ForecastEchoHandler) *Router {
	return &Router{market: market, forecast: forecast}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.market.RegisterRoutes(e)
	r.forecast.RegisterRoutes(e)
}
