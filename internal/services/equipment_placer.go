package services

import (
	"fmt"

	"pipeline-profile-service/internal/domain"
)

// DefaultConflictTolerance is the air-valve/drain proximity below which the air valve is dropped.
const DefaultConflictTolerance = 1.0

// PlaceEquipment merges the equipment sources of one profile.
//
// Hydrants, junctions and BKVs pass through unchanged. Air valves and drains
// are the union of pipe extrema and manual lists (positive distances only).
// Any air valve closer than tolerance to any drain is removed: drains win.
// Items are returned as hydrants, junctions, BKVs, air valves, drains.
func PlaceEquipment(src domain.EquipmentSources, extrema Extrema, tolerance float64) ([]domain.EquipmentItem, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("place equipment: %w: tolerance %v must not be negative", domain.ErrInvalidConfig, tolerance)
	}

	items := make([]domain.EquipmentItem, 0, len(src.Hydrants)+len(src.Junctions)+len(src.Bkvs)+
		len(extrema.AirValves)+len(extrema.Drains)+len(src.ManualAirValves)+len(src.ManualDrains))

	for _, h := range src.Hydrants {
		items = append(items, h)
	}
	for _, j := range src.Junctions {
		items = append(items, j)
	}
	for _, b := range src.Bkvs {
		items = append(items, b)
	}

	airValves := positiveDistances(extrema.AirValves, src.ManualAirValves)
	drains := positiveDistances(extrema.Drains, src.ManualDrains)
	airValves = removeConflicting(airValves, drains, tolerance)

	for _, d := range airValves {
		items = append(items, domain.AirValve{At: d})
	}
	for _, d := range drains {
		items = append(items, domain.Drain{At: d})
	}

	return items, nil
}

func positiveDistances(lists ...[]float64) []float64 {
	out := make([]float64, 0, 16)
	for _, l := range lists {
		for _, d := range l {
			if d > 0 {
				out = append(out, d)
			}
		}
	}
	return out
}

func removeConflicting(airValves, drains []float64, tolerance float64) []float64 {
	kept := airValves[:0:0]
	for _, a := range airValves {
		if !nearAny(a, drains, tolerance) {
			kept = append(kept, a)
		}
	}
	return kept
}

func nearAny(d float64, others []float64, tolerance float64) bool {
	for _, o := range others {
		if d-o < tolerance && o-d < tolerance {
			return true
		}
	}
	return false
}

// PositionEquipment resolves each item to its band and drawing-plane position
// on the pipe line.
func PositionEquipment(
	items []domain.EquipmentItem,
	bands *domain.BandSet,
	pipe domain.Polyline,
	tr *CoordinateTransformer,
) []domain.PlacedEquipment {
	placed := make([]domain.PlacedEquipment, 0, len(items))
	for _, it := range items {
		d := it.Distance()
		band := bands.BandIndexAt(d)
		elev := pipe.InterpolateAt(d)

		placed = append(placed, domain.PlacedEquipment{
			Item:          it,
			BandIndex:     band,
			PipeElevation: elev,
			X:             tr.ToPlaneX(d, band),
			Y:             tr.ToPlaneY(elev, band),
		})
	}
	return placed
}
