package survey

import (
	"encoding/json"
	"fmt"
	"io"

	"pipeline-profile-service/internal/domain"
)

// ProfileDocument is the JSON form of one route's survey data, shared by the
// remote survey service, seed files and the profile API.
type ProfileDocument struct {
	Route     string        `json:"route"`
	Ground    []float64     `json:"ground"`
	Pipe      []float64     `json:"pipe"`
	Hydraulic []float64     `json:"hydraulic,omitempty"`
	Hydrants  []HydrantDoc  `json:"hydrants,omitempty"`
	Junctions []JunctionDoc `json:"junctions,omitempty"`
	Bkvs      []BkvDoc      `json:"bkvs,omitempty"`
	AirValves []float64     `json:"air_valves,omitempty"`
	Drains    []float64     `json:"drains,omitempty"`
}

type HydrantDoc struct {
	At      float64 `json:"at"`
	Outlets int     `json:"outlets"`
}

type JunctionDoc struct {
	At    float64 `json:"at"`
	Label string  `json:"label"`
}

type BkvDoc struct {
	At          float64  `json:"at"`
	StaticLevel *float64 `json:"static_level,omitempty"`
}

// ToInput converts the document into a domain input. Junctions without a
// label are dropped. Series are checked later, when the profile is built.
func (d *ProfileDocument) ToInput() (*domain.ProfileInput, error) {
	if d.Route == "" {
		return nil, &domain.InputError{Field: "route", Err: fmt.Errorf("%w: route label is empty", domain.ErrInvalidSeries)}
	}

	in := &domain.ProfileInput{
		Route:     d.Route,
		Ground:    d.Ground,
		Pipe:      d.Pipe,
		Hydraulic: d.Hydraulic,
	}

	for _, h := range d.Hydrants {
		in.Equipment.Hydrants = append(in.Equipment.Hydrants, domain.Hydrant{At: h.At, OutletCount: h.Outlets})
	}
	for _, j := range d.Junctions {
		if j.Label == "" {
			continue
		}
		in.Equipment.Junctions = append(in.Equipment.Junctions, domain.Junction{At: j.At, Label: j.Label})
	}
	for _, b := range d.Bkvs {
		in.Equipment.Bkvs = append(in.Equipment.Bkvs, domain.Bkv{At: b.At, StaticLevel: b.StaticLevel})
	}
	in.Equipment.ManualAirValves = d.AirValves
	in.Equipment.ManualDrains = d.Drains

	return in, nil
}

// FromInput is the inverse of ToInput.
func FromInput(in *domain.ProfileInput) *ProfileDocument {
	d := &ProfileDocument{
		Route:     in.Route,
		Ground:    in.Ground,
		Pipe:      in.Pipe,
		Hydraulic: in.Hydraulic,
		AirValves: in.Equipment.ManualAirValves,
		Drains:    in.Equipment.ManualDrains,
	}
	for _, h := range in.Equipment.Hydrants {
		d.Hydrants = append(d.Hydrants, HydrantDoc{At: h.At, Outlets: h.OutletCount})
	}
	for _, j := range in.Equipment.Junctions {
		d.Junctions = append(d.Junctions, JunctionDoc{At: j.At, Label: j.Label})
	}
	for _, b := range in.Equipment.Bkvs {
		d.Bkvs = append(d.Bkvs, BkvDoc{At: b.At, StaticLevel: b.StaticLevel})
	}
	return d
}

// DecodeDocuments reads either a single document or a JSON array of them.
func DecodeDocuments(r io.Reader) ([]ProfileDocument, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode profile documents: %w", err)
	}

	var many []ProfileDocument
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}

	var one ProfileDocument
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	return []ProfileDocument{one}, nil
}
