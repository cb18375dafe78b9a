package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pipeline-profile-service/internal/domain"
)

func TestSummarize(t *testing.T) {
	ground := mustPolyline(t, 0, 100, 50, 104, 120, 98)
	pipe := mustPolyline(t, 0, 98, 50, 101, 120, 96)

	res := &domain.ProfileResult{
		Bands: &domain.BandSet{
			Bands:          []domain.Band{{Top: 104, Base: 91}},
			BreakDistances: []float64{120},
		},
		Hydraulic: domain.HydraulicProfile{
			Segments: []domain.HydraulicSegment{
				{Vertices: mustPolyline(t, 0, 118, 60, 117)},
				{Vertices: mustPolyline(t, 60, 113, 120, 112.5)},
			},
			Markers: []domain.VerticalBreakMarker{{Distance: 60, FromLevel: 117, ToLevel: 113}},
		},
		Equipment: []domain.PlacedEquipment{
			{Item: domain.Hydrant{At: 10, OutletCount: 2}},
			{Item: domain.AirValve{At: 50}},
			{Item: domain.AirValve{At: 80}},
		},
	}

	s := Summarize(ground, pipe, res)
	assert.Equal(t, 120.0, s.Length)
	assert.Equal(t, 1, s.BandCount)
	assert.Equal(t, 98.0, s.MinGround)
	assert.Equal(t, 104.0, s.MaxGround)
	assert.Equal(t, 96.0, s.MinPipe)
	assert.Equal(t, 101.0, s.MaxPipe)
	assert.Equal(t, 112.5, s.MinHydraulic)
	assert.Equal(t, 118.0, s.MaxHydraulic)
	assert.Equal(t, 1, s.MicroBreaks)
	assert.Equal(t, map[domain.EquipmentKind]int{domain.KindHydrant: 1, domain.KindAirValve: 2}, s.EquipmentByKind)
}

func TestHydraulicRangeEmpty(t *testing.T) {
	_, _, ok := HydraulicRange(nil)
	assert.False(t, ok)
}
