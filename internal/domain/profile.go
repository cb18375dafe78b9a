package domain

// Raw equipment lists for one profile, already parsed by the source adapter.
// Empty junction labels and missing entries are dropped before they get here.
type EquipmentSources struct {
	Hydrants        []Hydrant
	Junctions       []Junction
	Bkvs            []Bkv
	ManualAirValves []float64
	ManualDrains    []float64
}

// ProfileInput is everything an upstream source supplies for one route.
// Series use the flat [d0, v0, d1, v1, ...] form.
type ProfileInput struct {
	Route     string
	Ground    []float64
	Pipe      []float64
	Hydraulic []float64
	Equipment EquipmentSources
}

// ProfileSummary carries headline figures for reports and renderer headers.
type ProfileSummary struct {
	Length          float64
	BandCount       int
	MinGround       float64
	MaxGround       float64
	MinPipe         float64
	MaxPipe         float64
	MinHydraulic    float64
	MaxHydraulic    float64
	MicroBreaks     int
	EquipmentByKind map[EquipmentKind]int
}

// ProfileResult is the drawing-ready output for one route.
type ProfileResult struct {
	Route     string
	Bands     *BandSet
	Ground    []PolylineBandSegment
	Pipe      []PolylineBandSegment
	Hydraulic HydraulicProfile
	Equipment []PlacedEquipment
	Summary   ProfileSummary
}
