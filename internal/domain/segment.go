package domain

// PolylineBandSegment is a contiguous piece of a clipped polyline confined to
// one band. Its first/last vertex may sit exactly on a break distance.
type PolylineBandSegment struct {
	BandIndex int
	Vertices  Polyline
}

// HydraulicSegment is a piece of the hydraulic curve confined to one band and
// one micro-break window. TopReference is the ceiling active while the segment
// was open; BandTopLevel is the enclosing band's true top level.
type HydraulicSegment struct {
	BandIndex    int
	TopReference float64
	BandTopLevel float64
	Vertices     Polyline
}

// VerticalBreakMarker marks where the hydraulic curve was cut because it fell
// more than one step below the current ceiling.
type VerticalBreakMarker struct {
	BandIndex int
	Distance  float64
	FromLevel float64
	ToLevel   float64
}

// HydraulicProfile is the output of hydraulic re-segmentation.
type HydraulicProfile struct {
	Segments []HydraulicSegment
	Markers  []VerticalBreakMarker
}
