package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-profile-service/internal/domain"
)

func TestDetectExtrema(t *testing.T) {
	pipe := mustPolyline(t, 0, 90, 10, 95, 20, 88, 30, 92, 40, 92, 50, 91)

	ex := DetectExtrema(pipe)
	assert.Equal(t, []float64{10}, ex.AirValves)
	assert.Equal(t, []float64{20}, ex.Drains)
}

func TestDetectExtremaMonotone(t *testing.T) {
	ex := DetectExtrema(mustPolyline(t, 0, 90, 10, 89, 20, 80))
	assert.Empty(t, ex.AirValves)
	assert.Empty(t, ex.Drains)
}

func TestPlaceEquipmentDropsAirValveNearDrain(t *testing.T) {
	items, err := PlaceEquipment(
		domain.EquipmentSources{},
		Extrema{AirValves: []float64{10.0, 55.3}, Drains: []float64{10.4}},
		DefaultConflictTolerance,
	)
	require.NoError(t, err)

	assert.Equal(t, []domain.EquipmentItem{
		domain.AirValve{At: 55.3},
		domain.Drain{At: 10.4},
	}, items)
}

func TestPlaceEquipmentOrderAndManualLists(t *testing.T) {
	level := 120.5
	src := domain.EquipmentSources{
		Hydrants:        []domain.Hydrant{{At: 30, OutletCount: 2}},
		Junctions:       []domain.Junction{{At: 40, Label: "B-2"}},
		Bkvs:            []domain.Bkv{{At: 60, StaticLevel: &level}},
		ManualAirValves: []float64{0, 70, -5},
		ManualDrains:    []float64{80},
	}

	items, err := PlaceEquipment(src, Extrema{AirValves: []float64{12}}, DefaultConflictTolerance)
	require.NoError(t, err)

	kinds := make([]domain.EquipmentKind, 0, len(items))
	for _, it := range items {
		kinds = append(kinds, it.Kind())
	}
	assert.Equal(t, []domain.EquipmentKind{
		domain.KindHydrant, domain.KindJunction, domain.KindBkv,
		domain.KindAirValve, domain.KindAirValve, domain.KindDrain,
	}, kinds)
	assert.Equal(t, 12.0, items[3].Distance())
	assert.Equal(t, 70.0, items[4].Distance())
	assert.Equal(t, 80.0, items[5].Distance())
}

func TestPlaceEquipmentTolerance(t *testing.T) {
	ex := Extrema{AirValves: []float64{10}, Drains: []float64{11}}

	items, err := PlaceEquipment(domain.EquipmentSources{}, ex, 1.0)
	require.NoError(t, err)
	assert.Len(t, items, 2, "distance equal to tolerance is not a conflict")

	items, err = PlaceEquipment(domain.EquipmentSources{}, ex, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = PlaceEquipment(domain.EquipmentSources{}, ex, -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestPositionEquipment(t *testing.T) {
	bs := &domain.BandSet{
		Bands:          []domain.Band{{Top: 100, Base: 87}, {Top: 95, Base: 82}},
		BreakDistances: []float64{50, 100},
	}
	pipe := mustPolyline(t, 0, 90, 100, 85)
	tr, err := NewCoordinateTransformer(bs, DefaultTransformOptions())
	require.NoError(t, err)

	placed := PositionEquipment([]domain.EquipmentItem{
		domain.Hydrant{At: 20, OutletCount: 1},
		domain.Drain{At: 80},
	}, bs, pipe, tr)
	require.Len(t, placed, 2)

	assert.Equal(t, 0, placed[0].BandIndex)
	assert.InDelta(t, 89.0, placed[0].PipeElevation, 1e-9)
	assert.InDelta(t, 4.0, placed[0].X, 1e-9)
	assert.InDelta(t, -110.0, placed[0].Y, 1e-9)

	assert.Equal(t, 1, placed[1].BandIndex)
	assert.InDelta(t, 86.0, placed[1].PipeElevation, 1e-9)
	assert.InDelta(t, -90.0, placed[1].Y, 1e-9)
}
