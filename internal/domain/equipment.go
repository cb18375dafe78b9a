package domain

// EquipmentKind names an equipment variant for serialization and rendering.
type EquipmentKind string

const (
	KindHydrant  EquipmentKind = "hydrant"
	KindBkv      EquipmentKind = "bkv"
	KindJunction EquipmentKind = "junction"
	KindAirValve EquipmentKind = "air_valve"
	KindDrain    EquipmentKind = "drain"
)

// EquipmentItem is a closed set of profile equipment variants; each carries
// only the fields it needs. Implementations live in this package only.
type EquipmentItem interface {
	Distance() float64
	Kind() EquipmentKind
	equipment()
}

// Hydrant is an irrigation hydrant with a number of outlets.
type Hydrant struct {
	At          float64
	OutletCount int
}

// Bkv is a pressure-break valve, optionally annotated with its static water level.
type Bkv struct {
	At          float64
	StaticLevel *float64
}

// Junction is a branch-off point of another line.
type Junction struct {
	At    float64
	Label string
}

// AirValve sits on a local high point of the pipe.
type AirValve struct {
	At float64
}

// Drain sits on a local low point of the pipe.
type Drain struct {
	At float64
}

func (h Hydrant) Distance() float64  { return h.At }
func (b Bkv) Distance() float64      { return b.At }
func (j Junction) Distance() float64 { return j.At }
func (a AirValve) Distance() float64 { return a.At }
func (d Drain) Distance() float64    { return d.At }

func (Hydrant) Kind() EquipmentKind  { return KindHydrant }
func (Bkv) Kind() EquipmentKind      { return KindBkv }
func (Junction) Kind() EquipmentKind { return KindJunction }
func (AirValve) Kind() EquipmentKind { return KindAirValve }
func (Drain) Kind() EquipmentKind    { return KindDrain }

func (Hydrant) equipment()  {}
func (Bkv) equipment()      {}
func (Junction) equipment() {}
func (AirValve) equipment() {}
func (Drain) equipment()    {}

// PlacedEquipment is an equipment item resolved to a band and drawing-plane position.
type PlacedEquipment struct {
	Item          EquipmentItem
	BandIndex     int
	PipeElevation float64
	X             float64
	Y             float64
}
