package services

import (
	"fmt"
	"math"

	"pipeline-profile-service/internal/domain"
)

// effectiveBreaks drops break values that are not geometric cut points.
func effectiveBreaks(breaks []float64) []float64 {
	out := make([]float64, 0, len(breaks))
	for _, b := range breaks {
		if b <= 0 || b >= BreakSentinel {
			continue
		}
		out = append(out, b)
	}
	return out
}

// withBreakVertices returns a copy of pl with an interpolated vertex inserted
// at every break that falls strictly between two existing vertices.
func withBreakVertices(pl domain.Polyline, breaks []float64) domain.Polyline {
	out := make(domain.Polyline, len(pl), len(pl)+len(breaks))
	copy(out, pl)

	for _, b := range breaks {
		for i := 1; i < len(out); i++ {
			p1, p2 := out[i-1], out[i]
			if p1.Distance < b && b < p2.Distance {
				v := domain.Vertex{Distance: b, Elevation: domain.Lerp(p1, p2, b)}
				out = append(out, domain.Vertex{})
				copy(out[i+1:], out[i:])
				out[i] = v
				break
			}
		}
	}
	return out
}

// SplitByBands clips a ground or pipe polyline into per-band segments.
//
// Break vertices are inserted first, so each segment starts and ends exactly
// on a break distance. Pieces with fewer than two vertices are dropped.
func SplitByBands(pl domain.Polyline, bands *domain.BandSet) ([]domain.PolylineBandSegment, error) {
	if err := pl.Validate(); err != nil {
		return nil, fmt.Errorf("split by bands: %w", err)
	}
	if bands == nil {
		return nil, fmt.Errorf("split by bands: %w: band set is nil", domain.ErrInvalidConfig)
	}
	if err := bands.Validate(); err != nil {
		return nil, fmt.Errorf("split by bands: %w", err)
	}

	breaks := effectiveBreaks(bands.BreakDistances)
	points := withBreakVertices(pl, breaks)

	segments := make([]domain.PolylineBandSegment, 0, bands.Count())
	band := 0
	bi := 0
	nextBreak := breakAt(breaks, bi)

	buf := domain.Polyline{points[0]}
	for _, p := range points[1:] {
		for p.Distance > nextBreak {
			segments = appendBandSegment(segments, band, buf)

			// The last buffered vertex sits on the break (it was inserted above).
			buf = domain.Polyline{buf[len(buf)-1]}
			band = bands.ClampIndex(band + 1)
			bi++
			nextBreak = breakAt(breaks, bi)
		}
		buf = append(buf, p)
	}

	return appendBandSegment(segments, band, buf), nil
}

func breakAt(breaks []float64, i int) float64 {
	if i < len(breaks) {
		return breaks[i]
	}
	return math.MaxFloat64
}

func appendBandSegment(segments []domain.PolylineBandSegment, band int, buf domain.Polyline) []domain.PolylineBandSegment {
	if len(buf) < 2 {
		return segments
	}
	return append(segments, domain.PolylineBandSegment{BandIndex: band, Vertices: buf})
}
