package dto

import (
	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/services"
)

type PlanPointRequest struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

type CoordinateTableRequest struct {
	Points []PlanPointRequest `json:"points"`
}

type CoordinateRowResponse struct {
	Name       string   `json:"name"`
	Easting    float64  `json:"easting"`
	Northing   float64  `json:"northing"`
	Turn       *float64 `json:"turn,omitempty"`
	Deflection *float64 `json:"deflection,omitempty"`
	Chainage   float64  `json:"chainage"`
	// Chainage formatted as km+metres, e.g. "1+234.50".
	Station string `json:"station"`
}

type CoordinateTableResponse struct {
	Rows []CoordinateRowResponse `json:"rows"`
}

func NewCoordinateTableResponse(rows []domain.CoordinateRow) CoordinateTableResponse {
	res := CoordinateTableResponse{Rows: make([]CoordinateRowResponse, 0, len(rows))}
	for _, r := range rows {
		res.Rows = append(res.Rows, CoordinateRowResponse{
			Name:       r.Name,
			Easting:    r.Point.Easting,
			Northing:   r.Point.Northing,
			Turn:       r.Turn,
			Deflection: r.Deflection,
			Chainage:   r.Chainage,
			Station:    services.FormatChainage(r.Chainage),
		})
	}
	return res
}
