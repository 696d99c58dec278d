package api

import (
	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
)

// appError maps a domain error kind onto the HTTP error taxonomy.
func appError(err error) *xhttp.AppError {
	kind, ok := models.KindOf(err)
	if !ok {
		return xhttp.InternalError("unexpected error").WithError(err)
	}
	switch kind {
	case models.ErrUnknownAsset:
		return xhttp.NotFoundError("unknown coin").WithError(err)
	case models.ErrModelUnavailable:
		return xhttp.NotFoundError("no trained model for this coin").WithError(err)
	case models.ErrInsufficientHistory:
		return xhttp.UnprocessableError("not enough history to forecast").WithError(err)
	case models.ErrForecastTimeout:
		return xhttp.TimeoutError("forecast timed out").WithError(err)
	case models.ErrUpstream:
		return xhttp.UpstreamError("market data provider unavailable").WithError(err)
	case models.ErrModelInference, models.ErrFeatureComputation:
		return xhttp.InternalError("forecast failed").WithError(err)
	default:
		return xhttp.InternalError("unexpected error").WithError(err)
	}
}
