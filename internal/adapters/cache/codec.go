package cache

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"pipeline-profile-service/internal/domain"
)

// resultRecord is the stored form of a ProfileResult; equipment variants are
// flattened because the interface cannot be decoded directly.
type resultRecord struct {
	Route     string                       `msgpack:"route"`
	Bands     *domain.BandSet              `msgpack:"bands"`
	Ground    []domain.PolylineBandSegment `msgpack:"ground"`
	Pipe      []domain.PolylineBandSegment `msgpack:"pipe"`
	Hydraulic domain.HydraulicProfile      `msgpack:"hydraulic"`
	Equipment []equipmentRecord            `msgpack:"equipment"`
	Summary   domain.ProfileSummary        `msgpack:"summary"`
}

type equipmentRecord struct {
	Kind          domain.EquipmentKind `msgpack:"kind"`
	At            float64              `msgpack:"at"`
	Outlets       int                  `msgpack:"outlets,omitempty"`
	Label         string               `msgpack:"label,omitempty"`
	StaticLevel   *float64             `msgpack:"static_level,omitempty"`
	BandIndex     int                  `msgpack:"band"`
	PipeElevation float64              `msgpack:"pipe_elevation"`
	X             float64              `msgpack:"x"`
	Y             float64              `msgpack:"y"`
}

func encodeResult(res *domain.ProfileResult) ([]byte, error) {
	rec := resultRecord{
		Route:     res.Route,
		Bands:     res.Bands,
		Ground:    res.Ground,
		Pipe:      res.Pipe,
		Hydraulic: res.Hydraulic,
		Summary:   res.Summary,
		Equipment: make([]equipmentRecord, 0, len(res.Equipment)),
	}

	for _, pe := range res.Equipment {
		er := equipmentRecord{
			Kind:          pe.Item.Kind(),
			At:            pe.Item.Distance(),
			BandIndex:     pe.BandIndex,
			PipeElevation: pe.PipeElevation,
			X:             pe.X,
			Y:             pe.Y,
		}
		switch it := pe.Item.(type) {
		case domain.Hydrant:
			er.Outlets = it.OutletCount
		case domain.Junction:
			er.Label = it.Label
		case domain.Bkv:
			er.StaticLevel = it.StaticLevel
		}
		rec.Equipment = append(rec.Equipment, er)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(&rec); err != nil {
		return nil, fmt.Errorf("encode profile result: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeResult(b []byte) (*domain.ProfileResult, error) {
	var rec resultRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode profile result: %w", err)
	}

	res := &domain.ProfileResult{
		Route:     rec.Route,
		Bands:     rec.Bands,
		Ground:    rec.Ground,
		Pipe:      rec.Pipe,
		Hydraulic: rec.Hydraulic,
		Summary:   rec.Summary,
		Equipment: make([]domain.PlacedEquipment, 0, len(rec.Equipment)),
	}

	for _, er := range rec.Equipment {
		var item domain.EquipmentItem
		switch er.Kind {
		case domain.KindHydrant:
			item = domain.Hydrant{At: er.At, OutletCount: er.Outlets}
		case domain.KindJunction:
			item = domain.Junction{At: er.At, Label: er.Label}
		case domain.KindBkv:
			item = domain.Bkv{At: er.At, StaticLevel: er.StaticLevel}
		case domain.KindAirValve:
			item = domain.AirValve{At: er.At}
		case domain.KindDrain:
			item = domain.Drain{At: er.At}
		default:
			return nil, fmt.Errorf("decode profile result: unknown equipment kind %q", er.Kind)
		}
		res.Equipment = append(res.Equipment, domain.PlacedEquipment{
			Item:          item,
			BandIndex:     er.BandIndex,
			PipeElevation: er.PipeElevation,
			X:             er.X,
			Y:             er.Y,
		})
	}

	return res, nil
}
