package services

import (
	"fmt"
	"math"

	"pipeline-profile-service/internal/domain"
)

// BreakSentinel is the largest break distance the clippers treat as geometric.
// Upstream data occasionally carries it as an "open end" marker.
const BreakSentinel = 999999.0

// BandOptions controls band partitioning.
type BandOptions struct {
	// ScanStep is the distance between scan samples.
	ScanStep float64
	// BandHeight is the maximum top-base height of every band but the last.
	BandHeight int
}

func DefaultBandOptions() BandOptions {
	return BandOptions{ScanStep: 0.1, BandHeight: 13}
}

func (o BandOptions) Validate() error {
	if o.ScanStep <= 0 {
		return fmt.Errorf("band options: %w: scan step %v must be positive", domain.ErrInvalidConfig, o.ScanStep)
	}
	if o.BandHeight <= 0 {
		return fmt.Errorf("band options: %w: band height %d must be positive", domain.ErrInvalidConfig, o.BandHeight)
	}
	return nil
}

// bandScan is the running state of the greedy band growth.
type bandScan struct {
	height int
	top    int
	base   int
	bands  []domain.Band
}

func newBandScan(height int, ground0, pipe0 float64) *bandScan {
	return &bandScan{
		height: height,
		top:    ceilInt(ground0),
		base:   floorInt(pipe0),
		bands:  make([]domain.Band, 0, 16),
	}
}

// observe folds one scan sample (ground g, pipe p) into the state.
func (s *bandScan) observe(g, p float64) {
	raisedTop := false
	loweredBase := false

	if g > float64(s.top) {
		s.top = ceilInt(g)
		raisedTop = true
	}
	if p < float64(s.base) {
		s.base = floorInt(p)
		loweredBase = true
	}

	if s.top-s.base <= s.height {
		return
	}

	// Both emissions may fire for the same sample; the second one sees the reset candidates.
	if loweredBase {
		s.bands = append(s.bands, domain.Band{Top: s.top, Base: s.top - s.height})
		s.reset(g, p)
	}
	if raisedTop {
		s.bands = append(s.bands, domain.Band{Top: s.base + s.height, Base: s.base})
		s.reset(g, p)
	}
}

func (s *bandScan) reset(g, p float64) {
	s.top = ceilInt(g)
	s.base = floorInt(p)
}

// close appends the closing band regardless of its height.
func (s *bandScan) close() []domain.Band {
	return append(s.bands, domain.Band{Top: s.top, Base: s.top - s.height})
}

// BuildBands partitions the ground/pipe profile into height-limited bands.
//
// The scan walks the route at a fixed step and greedily grows a window that
// contains both curves; whenever the window gets taller than BandHeight a band
// is emitted. Break distances are then back-filled from where the pipe drops
// below a band's base or the ground rises above its top.
//
// A sample where the pipe lies above ground aborts the whole profile with a
// *domain.GeometryError.
func BuildBands(ground, pipe domain.Polyline, route string, opts BandOptions) (*domain.BandSet, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ground.Validate(); err != nil {
		return nil, fmt.Errorf("build bands: ground: %w", err)
	}
	if err := pipe.Validate(); err != nil {
		return nil, fmt.Errorf("build bands: pipe: %w", err)
	}

	endDistance := math.Max(ground.End().Distance, pipe.End().Distance)
	scan := newBandScan(opts.BandHeight, ground.Start().Elevation, pipe.Start().Elevation)

	// Samples are computed by multiplication so long routes do not accumulate drift.
	for i := 1; ; i++ {
		d := float64(i) * opts.ScanStep
		if d > endDistance+1e-9 {
			break
		}

		g := ground.InterpolateAt(d)
		p := pipe.InterpolateAt(d)
		if p > g {
			return nil, &domain.GeometryError{Route: route, Distance: d}
		}

		scan.observe(g, p)
	}

	bands := scan.close()
	breaks := backfillBreaks(ground, pipe, bands, endDistance)

	return &domain.BandSet{Bands: bands, BreakDistances: breaks}, nil
}

// backfillBreaks finds where each band's boundary falls along the route.
//
// Pipe segments are walked in order; a segment ending below the current band's
// base yields base crossings, otherwise ground vertices inside the segment that
// rise above the current band's top yield top crossings. The result is padded
// or truncated to one entry per band, the last entry is forced to the route
// end, and entries are made non-decreasing.
func backfillBreaks(ground, pipe domain.Polyline, bands []domain.Band, endDistance float64) []float64 {
	last := len(bands) - 1
	k := 0
	breaks := make([]float64, 0, len(bands)+2)

	for l := 1; l < len(pipe); l++ {
		a, b := pipe[l-1], pipe[l]

		if b.Elevation < float64(bands[k].Base) {
			for b.Elevation < float64(bands[k].Base) {
				breaks = append(breaks, crossingDistance(a, b, float64(bands[k].Base)))
				k++
				if k > last {
					k = last
					break
				}
			}
			continue
		}

		for m := 1; m < len(ground); m++ {
			gv := ground[m]
			if gv.Distance <= a.Distance || gv.Distance > b.Distance || gv.Elevation <= float64(bands[k].Top) {
				continue
			}
			for gv.Elevation > float64(bands[k].Top) {
				breaks = append(breaks, crossingDistance(ground[m-1], gv, float64(bands[k].Top)))
				k++
				if k > last {
					k = last
					break
				}
			}
		}
	}

	for len(breaks) < len(bands) {
		breaks = append(breaks, endDistance)
	}
	breaks = breaks[:len(bands)]
	breaks[last] = endDistance

	for i := range breaks {
		if breaks[i] > endDistance {
			breaks[i] = endDistance
		}
		if i > 0 && breaks[i] < breaks[i-1] {
			breaks[i] = breaks[i-1]
		}
	}

	return breaks
}

// crossingDistance returns where the line a-b reaches level, clamped to the segment.
func crossingDistance(a, b domain.Vertex, level float64) float64 {
	dy := b.Elevation - a.Elevation
	if dy == 0 {
		return a.Distance
	}
	d := a.Distance + (level-a.Elevation)*(b.Distance-a.Distance)/dy
	return math.Min(math.Max(d, a.Distance), b.Distance)
}

func ceilInt(v float64) int  { return int(math.Ceil(v)) }
func floorInt(v float64) int { return int(math.Floor(v)) }
