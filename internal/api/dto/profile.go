package dto

import (
	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/services"
)

type BandResponse struct {
	Index int     `json:"index"`
	Top   int     `json:"top"`
	Base  int     `json:"base"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Points are [distance, elevation] pairs.
type SegmentResponse struct {
	Band   int          `json:"band"`
	Points [][2]float64 `json:"points"`
}

type HydraulicSegmentResponse struct {
	Band         int          `json:"band"`
	TopReference float64      `json:"top_reference"`
	BandTop      float64      `json:"band_top"`
	Points       [][2]float64 `json:"points"`
}

type MarkerResponse struct {
	Band     int     `json:"band"`
	Distance float64 `json:"distance"`
	From     float64 `json:"from"`
	To       float64 `json:"to"`
}

type HydraulicResponse struct {
	Segments []HydraulicSegmentResponse `json:"segments"`
	Markers  []MarkerResponse           `json:"markers"`
}

type EquipmentResponse struct {
	Kind          string   `json:"kind"`
	At            float64  `json:"at"`
	Band          int      `json:"band"`
	PipeElevation float64  `json:"pipe_elevation"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Outlets       int      `json:"outlets,omitempty"`
	Label         string   `json:"label,omitempty"`
	StaticLevel   *float64 `json:"static_level,omitempty"`
}

type SummaryResponse struct {
	Length       float64        `json:"length"`
	BandCount    int            `json:"band_count"`
	MinGround    float64        `json:"min_ground"`
	MaxGround    float64        `json:"max_ground"`
	MinPipe      float64        `json:"min_pipe"`
	MaxPipe      float64        `json:"max_pipe"`
	MinHydraulic float64        `json:"min_hydraulic"`
	MaxHydraulic float64        `json:"max_hydraulic"`
	MicroBreaks  int            `json:"micro_breaks"`
	Equipment    map[string]int `json:"equipment"`
}

type ProfileResponse struct {
	Route     string              `json:"route"`
	Bands     []BandResponse      `json:"bands"`
	Ground    []SegmentResponse   `json:"ground"`
	Pipe      []SegmentResponse   `json:"pipe"`
	Hydraulic HydraulicResponse   `json:"hydraulic"`
	Equipment []EquipmentResponse `json:"equipment"`
	Summary   SummaryResponse     `json:"summary"`
}

type ListRoutesResponse struct {
	Routes []string `json:"routes"`
}

type BuildRoutesRequest struct {
	Routes      []string `json:"routes"`
	Concurrency int      `json:"concurrency"`
}

type RouteOutcomeResponse struct {
	Route   string           `json:"route"`
	OK      bool             `json:"ok"`
	Error   string           `json:"error,omitempty"`
	Summary *SummaryResponse `json:"summary,omitempty"`
}

type BuildRoutesResponse struct {
	Outcomes []RouteOutcomeResponse `json:"outcomes"`
}

// NewProfileResponse flattens a built profile for the wire.
func NewProfileResponse(res *domain.ProfileResult) ProfileResponse {
	out := ProfileResponse{
		Route:     res.Route,
		Bands:     make([]BandResponse, 0, res.Bands.Count()),
		Ground:    segments(res.Ground),
		Pipe:      segments(res.Pipe),
		Equipment: make([]EquipmentResponse, 0, len(res.Equipment)),
		Summary:   NewSummaryResponse(res.Summary),
		Hydraulic: HydraulicResponse{
			Segments: make([]HydraulicSegmentResponse, 0, len(res.Hydraulic.Segments)),
			Markers:  make([]MarkerResponse, 0, len(res.Hydraulic.Markers)),
		},
	}

	for i, b := range res.Bands.Bands {
		start, end := res.Bands.Range(i)
		out.Bands = append(out.Bands, BandResponse{Index: i, Top: b.Top, Base: b.Base, Start: start, End: end})
	}

	for _, s := range res.Hydraulic.Segments {
		out.Hydraulic.Segments = append(out.Hydraulic.Segments, HydraulicSegmentResponse{
			Band:         s.BandIndex,
			TopReference: s.TopReference,
			BandTop:      s.BandTopLevel,
			Points:       points(s.Vertices),
		})
	}
	for _, m := range res.Hydraulic.Markers {
		out.Hydraulic.Markers = append(out.Hydraulic.Markers, MarkerResponse{
			Band: m.BandIndex, Distance: m.Distance, From: m.FromLevel, To: m.ToLevel,
		})
	}

	for _, pe := range res.Equipment {
		er := EquipmentResponse{
			Kind:          string(pe.Item.Kind()),
			At:            pe.Item.Distance(),
			Band:          pe.BandIndex,
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
		out.Equipment = append(out.Equipment, er)
	}

	return out
}

// NewBuildRoutesResponse reports each route's outcome; failed routes carry
// their error text instead of a summary.
func NewBuildRoutesResponse(outcomes []services.RouteOutcome) BuildRoutesResponse {
	res := BuildRoutesResponse{Outcomes: make([]RouteOutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		out := RouteOutcomeResponse{Route: o.Route, OK: o.Err == nil}
		if o.Err != nil {
			out.Error = o.Err.Error()
		} else {
			s := NewSummaryResponse(o.Result.Summary)
			out.Summary = &s
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	return res
}

func NewSummaryResponse(s domain.ProfileSummary) SummaryResponse {
	eq := make(map[string]int, len(s.EquipmentByKind))
	for k, n := range s.EquipmentByKind {
		eq[string(k)] = n
	}
	return SummaryResponse{
		Length:       s.Length,
		BandCount:    s.BandCount,
		MinGround:    s.MinGround,
		MaxGround:    s.MaxGround,
		MinPipe:      s.MinPipe,
		MaxPipe:      s.MaxPipe,
		MinHydraulic: s.MinHydraulic,
		MaxHydraulic: s.MaxHydraulic,
		MicroBreaks:  s.MicroBreaks,
		Equipment:    eq,
	}
}

func segments(in []domain.PolylineBandSegment) []SegmentResponse {
	out := make([]SegmentResponse, 0, len(in))
	for _, s := range in {
		out = append(out, SegmentResponse{Band: s.BandIndex, Points: points(s.Vertices)})
	}
	return out
}

func points(pl domain.Polyline) [][2]float64 {
	out := make([][2]float64, len(pl))
	for i, v := range pl {
		out[i] = [2]float64{v.Distance, v.Elevation}
	}
	return out
}
