package services

import (
	"fmt"

	"pipeline-profile-service/internal/domain"
)

// HydraulicValueMode says how hydraulic series values are read.
type HydraulicValueMode int

const (
	// AbsoluteElevation values are already elevations.
	AbsoluteElevation HydraulicValueMode = iota
	// AddToPipeElevation values are pressure heads added to the pipe elevation
	// after multiplying by ValueToMeters.
	AddToPipeElevation
)

func (m HydraulicValueMode) String() string {
	switch m {
	case AbsoluteElevation:
		return "absolute"
	case AddToPipeElevation:
		return "add_to_pipe"
	default:
		return fmt.Sprintf("HydraulicValueMode(%d)", int(m))
	}
}

// ParseHydraulicValueMode accepts the names produced by String.
func ParseHydraulicValueMode(s string) (HydraulicValueMode, error) {
	switch s {
	case "", "absolute":
		return AbsoluteElevation, nil
	case "add_to_pipe":
		return AddToPipeElevation, nil
	}
	return 0, fmt.Errorf("%w: unknown hydraulic value mode %q", domain.ErrInvalidConfig, s)
}

type HydraulicOptions struct {
	ValueMode      HydraulicValueMode
	ValueToMeters  float64
	MicroBreakStep float64
}

func DefaultHydraulicOptions() HydraulicOptions {
	return HydraulicOptions{
		ValueMode:      AbsoluteElevation,
		ValueToMeters:  1.0,
		MicroBreakStep: 4.0,
	}
}

func (o HydraulicOptions) Validate() error {
	if o.MicroBreakStep <= 0 {
		return fmt.Errorf("hydraulic options: %w: micro-break step %v must be positive", domain.ErrInvalidConfig, o.MicroBreakStep)
	}
	if o.ValueToMeters <= 0 {
		return fmt.Errorf("hydraulic options: %w: value-to-meters factor %v must be positive", domain.ErrInvalidConfig, o.ValueToMeters)
	}
	if o.ValueMode != AbsoluteElevation && o.ValueMode != AddToPipeElevation {
		return fmt.Errorf("hydraulic options: %w: %v", domain.ErrInvalidConfig, o.ValueMode)
	}
	return nil
}

// hydraulicPoints converts the raw series into (distance, elevation) vertices.
func hydraulicPoints(series, pipe domain.Polyline, opts HydraulicOptions) domain.Polyline {
	if opts.ValueMode == AbsoluteElevation {
		return series
	}
	pts := make(domain.Polyline, len(series))
	for i, v := range series {
		pts[i] = domain.Vertex{
			Distance:  v.Distance,
			Elevation: pipe.InterpolateAt(v.Distance) + v.Elevation*opts.ValueToMeters,
		}
	}
	return pts
}

// hydraulicWalk holds the open segment while the series is walked.
type hydraulicWalk struct {
	bands  *domain.BandSet
	band   int
	topRef float64
	buf    domain.Polyline
	out    domain.HydraulicProfile
}

func (w *hydraulicWalk) add(v domain.Vertex) {
	if n := len(w.buf); n > 0 && w.buf[n-1] == v {
		return
	}
	w.buf = append(w.buf, v)
}

// flush closes the open segment and starts a new one at start.
func (w *hydraulicWalk) flush(start domain.Vertex) {
	w.emit()
	w.buf = domain.Polyline{start}
}

// emit keeps the open segment unless it is degenerate.
func (w *hydraulicWalk) emit() {
	if len(w.buf) < 2 {
		return
	}
	first, last := w.buf[0], w.buf[len(w.buf)-1]
	if first == last {
		return
	}
	w.out.Segments = append(w.out.Segments, domain.HydraulicSegment{
		BandIndex:    w.band,
		TopReference: w.topRef,
		BandTopLevel: float64(w.bands.Bands[w.band].Top),
		Vertices:     w.buf,
	})
}

// BuildHydraulic re-segments the hydraulic curve against the band breaks and
// the micro-break rule.
//
// Walking the points in order, a point past the active band's break closes
// the segment at the interpolated break point and resets the ceiling to the
// new band's top. A point more than MicroBreakStep below the ceiling then
// closes the segment, records a VerticalBreakMarker and lowers the ceiling by
// one step, repeatedly, until the point fits.
func BuildHydraulic(series, pipe domain.Polyline, bands *domain.BandSet, opts HydraulicOptions) (domain.HydraulicProfile, error) {
	if err := opts.Validate(); err != nil {
		return domain.HydraulicProfile{}, err
	}
	if err := series.Validate(); err != nil {
		return domain.HydraulicProfile{}, fmt.Errorf("build hydraulic: series: %w", err)
	}
	if opts.ValueMode == AddToPipeElevation {
		if err := pipe.Validate(); err != nil {
			return domain.HydraulicProfile{}, fmt.Errorf("build hydraulic: pipe: %w", err)
		}
	}
	if bands == nil {
		return domain.HydraulicProfile{}, fmt.Errorf("build hydraulic: %w: band set is nil", domain.ErrInvalidConfig)
	}
	if err := bands.Validate(); err != nil {
		return domain.HydraulicProfile{}, fmt.Errorf("build hydraulic: %w", err)
	}

	pts := hydraulicPoints(series, pipe, opts)
	breaks := effectiveBreaks(bands.BreakDistances)
	step := opts.MicroBreakStep

	w := &hydraulicWalk{
		bands:  bands,
		topRef: float64(bands.Bands[0].Top),
		buf:    domain.Polyline{pts[0]},
		out: domain.HydraulicProfile{
			Segments: make([]domain.HydraulicSegment, 0, 64),
			Markers:  make([]domain.VerticalBreakMarker, 0, 64),
		},
	}
	bi := 0
	bandEnd := breakAt(breaks, bi)

	for i := 1; i < len(pts); i++ {
		p := pts[i]

		for p.Distance > bandEnd {
			cut := domain.Vertex{Distance: bandEnd, Elevation: domain.Lerp(pts[i-1], p, bandEnd)}
			w.add(cut)
			w.flush(cut)

			w.band = bands.ClampIndex(w.band + 1)
			bi++
			bandEnd = breakAt(breaks, bi)
			w.topRef = float64(bands.Bands[w.band].Top)
		}

		for p.Elevation < w.topRef-step {
			w.out.Markers = append(w.out.Markers, domain.VerticalBreakMarker{
				BandIndex: w.band,
				Distance:  p.Distance,
				FromLevel: w.topRef,
				ToLevel:   w.topRef - step,
			})
			w.flush(p)
			w.topRef -= step
		}

		w.add(p)
	}

	w.emit()
	return w.out, nil
}
