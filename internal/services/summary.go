package services

import (
	"gonum.org/v1/gonum/floats"

	"pipeline-profile-service/internal/domain"
)

// Summarize computes headline figures for a built profile.
func Summarize(ground, pipe domain.Polyline, res *domain.ProfileResult) domain.ProfileSummary {
	gElev := elevations(ground)
	pElev := elevations(pipe)

	s := domain.ProfileSummary{
		Length:          res.Bands.MaxDistance(),
		BandCount:       res.Bands.Count(),
		MinGround:       floats.Min(gElev),
		MaxGround:       floats.Max(gElev),
		MinPipe:         floats.Min(pElev),
		MaxPipe:         floats.Max(pElev),
		MicroBreaks:     len(res.Hydraulic.Markers),
		EquipmentByKind: make(map[domain.EquipmentKind]int),
	}

	if lo, hi, ok := HydraulicRange(res.Hydraulic.Segments); ok {
		s.MinHydraulic, s.MaxHydraulic = lo, hi
	}

	for _, pe := range res.Equipment {
		s.EquipmentByKind[pe.Item.Kind()]++
	}

	return s
}

// HydraulicRange returns the elevation range covered by the hydraulic segments.
func HydraulicRange(segments []domain.HydraulicSegment) (lo, hi float64, ok bool) {
	var all []float64
	for _, seg := range segments {
		all = append(all, elevations(seg.Vertices)...)
	}
	if len(all) == 0 {
		return 0, 0, false
	}
	return floats.Min(all), floats.Max(all), true
}

func elevations(pl domain.Polyline) []float64 {
	out := make([]float64, len(pl))
	for i, v := range pl {
		out[i] = v.Elevation
	}
	return out
}
