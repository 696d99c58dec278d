package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so transport layers can map them to
// status codes and metrics can count them without string matching.
type ErrorKind string

const (
	ErrUnknownAsset        ErrorKind = "unknown_asset"
	ErrModelUnavailable    ErrorKind = "model_unavailable"
	ErrInsufficientHistory ErrorKind = "insufficient_history"
	ErrFeatureComputation  ErrorKind = "feature_computation"
	ErrModelInference      ErrorKind = "model_inference"
	ErrForecastTimeout     ErrorKind = "forecast_timeout"
	ErrUpstream            ErrorKind = "upstream"
)

// DomainError is a kind-tagged error carrying the asset it concerns.
type DomainError struct {
	Kind  ErrorKind
	Asset string
	Err   error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Asset, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Asset)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// E wraps err as a DomainError of the given kind.
func E(kind ErrorKind, asset string, err error) *DomainError {
	return &DomainError{Kind: kind, Asset: asset, Err: err}
}

// Ef builds a DomainError from a format string.
func Ef(kind ErrorKind, asset, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Asset: asset, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of err if it is (or wraps) a DomainError.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
