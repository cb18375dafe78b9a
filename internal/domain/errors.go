package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeries reports a malformed distance/value series.
	ErrInvalidSeries = errors.New("invalid series")

	// ErrInvalidConfig reports non-positive scale factors, steps or tolerances.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRouteNotFound is returned by repositories for unknown route labels.
	ErrRouteNotFound = errors.New("route not found")
)

// GeometryError aborts a whole profile: the pipe was found above ground.
type GeometryError struct {
	Route    string
	Distance float64
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("pipe above ground at distance %.1f (route %q)", e.Distance, e.Route)
}

// InputError wraps a rejected input series with the name of the offending field.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }
