package handlers

import (
	"net/http"

	"pipeline-profile-service/internal/api/dto"
	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/services"
)

// CoordinateTable returns names, turn angles and chainage for a plan polyline.
func CoordinateTable(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.CoordinateTableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pts := make([]domain.PlanPoint, 0, len(req.Points))
	for _, p := range req.Points {
		pts = append(pts, domain.PlanPoint{Easting: p.Easting, Northing: p.Northing})
	}

	rows, err := services.CoordinateTable(pts)
	if err != nil {
		writeServiceError(w, r, "coordinate table", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewCoordinateTableResponse(rows))
}
