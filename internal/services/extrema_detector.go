package services

import "pipeline-profile-service/internal/domain"

// Extrema holds candidate equipment distances derived from the pipe profile.
type Extrema struct {
	AirValves []float64
	Drains    []float64
}

// DetectExtrema returns strict interior local maxima (air-valve candidates)
// and minima (drain candidates). Endpoints never qualify.
func DetectExtrema(pipe domain.Polyline) Extrema {
	ex := Extrema{AirValves: []float64{}, Drains: []float64{}}

	for i := 1; i < len(pipe)-1; i++ {
		prev, cur, next := pipe[i-1].Elevation, pipe[i].Elevation, pipe[i+1].Elevation

		if prev < cur && cur > next {
			ex.AirValves = append(ex.AirValves, pipe[i].Distance)
		}
		if prev > cur && cur < next {
			ex.Drains = append(ex.Drains, pipe[i].Distance)
		}
	}

	return ex
}
