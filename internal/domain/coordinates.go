package domain

// Plan-view survey point (easting, northing) of a pipeline vertex.
type PlanPoint struct {
	Easting  float64
	Northing float64
}

// One row of the plan coordinate table.
// Turn and Deflection are nil for the first and last vertex.
type CoordinateRow struct {
	Name       string
	Point      PlanPoint
	Turn       *float64
	Deflection *float64
	Chainage   float64
}
