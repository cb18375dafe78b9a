package domain

import (
	"fmt"
	"math"
	"sort"
)

// Vertex is a single survey sample: along-route distance and elevation.
type Vertex struct {
	Distance  float64
	Elevation float64
}

// Polyline is an ordered vertex sequence with strictly increasing distance.
// Values built by NewPolyline are never mutated afterwards.
type Polyline []Vertex

// NewPolyline builds a Polyline from the flat [d0, e0, d1, e1, ...] form
// produced by upstream sources.
func NewPolyline(pairs []float64) (Polyline, error) {
	if len(pairs)%2 != 0 {
		return nil, &InputError{Field: "polyline", Err: fmt.Errorf("%w: odd length %d", ErrInvalidSeries, len(pairs))}
	}
	if len(pairs) < 4 {
		return nil, &InputError{Field: "polyline", Err: fmt.Errorf("%w: need at least 2 vertices, got %d", ErrInvalidSeries, len(pairs)/2)}
	}

	pl := make(Polyline, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		pl = append(pl, Vertex{Distance: pairs[i], Elevation: pairs[i+1]})
	}

	if err := pl.Validate(); err != nil {
		return nil, err
	}
	return pl, nil
}

// Validate checks the shape invariants of a polyline.
func (pl Polyline) Validate() error {
	if len(pl) < 2 {
		return &InputError{Field: "polyline", Err: fmt.Errorf("%w: need at least 2 vertices, got %d", ErrInvalidSeries, len(pl))}
	}
	for i, v := range pl {
		if !finite(v.Distance) || !finite(v.Elevation) {
			return &InputError{Field: "polyline", Err: fmt.Errorf("%w: non-finite value at vertex %d", ErrInvalidSeries, i)}
		}
		if i > 0 && v.Distance <= pl[i-1].Distance {
			return &InputError{
				Field: "polyline",
				Err: fmt.Errorf("%w: distance not increasing at vertex %d (%.3f after %.3f)",
					ErrInvalidSeries, i, v.Distance, pl[i-1].Distance),
			}
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (pl Polyline) Start() Vertex { return pl[0] }
func (pl Polyline) End() Vertex   { return pl[len(pl)-1] }

// Pairs flattens the polyline back to [d0, e0, d1, e1, ...].
func (pl Polyline) Pairs() []float64 {
	out := make([]float64, 0, 2*len(pl))
	for _, v := range pl {
		out = append(out, v.Distance, v.Elevation)
	}
	return out
}

// InterpolateAt returns the elevation at distance d by linear interpolation
// on the enclosing segment. Distances before the first or after the last
// vertex clamp to that endpoint's elevation.
func (pl Polyline) InterpolateAt(d float64) float64 {
	n := len(pl)
	if n == 0 {
		return 0
	}
	if d <= pl[0].Distance {
		return pl[0].Elevation
	}
	if d >= pl[n-1].Distance {
		return pl[n-1].Elevation
	}

	// first vertex with Distance >= d; i is in [1, n-1] here
	i := sort.Search(n, func(k int) bool { return pl[k].Distance >= d })
	b := pl[i]
	if b.Distance == d {
		return b.Elevation
	}
	return Lerp(pl[i-1], b, d)
}

// Lerp interpolates the elevation at distance d on the line through a and b.
func Lerp(a, b Vertex, d float64) float64 {
	dx := b.Distance - a.Distance
	if dx == 0 {
		return a.Elevation
	}
	return a.Elevation + (d-a.Distance)*(b.Elevation-a.Elevation)/dx
}
