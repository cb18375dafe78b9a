package services

import (
	"fmt"
	"math"

	"pipeline-profile-service/internal/domain"
)

const gradsPerCircle = 400.0

// TurnAngles returns the turning angle at b between legs a→b and b→c and the
// corresponding deflection, both in grads rounded to two decimals. The turn is
// normalised to [-200, 200], the deflection (200 - turn) to [0, 400].
func TurnAngles(a, b, c domain.PlanPoint) (turn, deflection float64) {
	a1 := math.Atan2(b.Northing-a.Northing, b.Easting-a.Easting)
	a2 := math.Atan2(c.Northing-b.Northing, c.Easting-b.Easting)

	turn = (a1 - a2) * gradsPerCircle / (2 * math.Pi)
	if turn > 200 {
		turn -= gradsPerCircle
	} else if turn < -200 {
		turn += gradsPerCircle
	}

	deflection = 200 - turn
	if deflection < 0 {
		deflection += gradsPerCircle
	} else if deflection > gradsPerCircle {
		deflection -= gradsPerCircle
	}

	return round2(turn), round2(deflection)
}

// CoordinateTable builds the plan coordinate table for one line: vertex names,
// turn/deflection at interior vertices and running chainage.
func CoordinateTable(points []domain.PlanPoint) ([]domain.CoordinateRow, error) {
	if len(points) < 2 {
		return nil, &domain.InputError{
			Field: "plan",
			Err:   fmt.Errorf("%w: need at least 2 plan points, got %d", domain.ErrInvalidSeries, len(points)),
		}
	}

	rows := make([]domain.CoordinateRow, 0, len(points))
	chainage := 0.0
	last := len(points) - 1

	for i, p := range points {
		row := domain.CoordinateRow{Point: p, Chainage: chainage}

		switch i {
		case 0:
			row.Name = "Start"
		case last:
			row.Name = "End"
		default:
			row.Name = fmt.Sprintf("S%d", i)
			turn, defl := TurnAngles(points[i-1], p, points[i+1])
			row.Turn = &turn
			row.Deflection = &defl
		}

		rows = append(rows, row)
		if i < last {
			chainage += math.Hypot(points[i+1].Easting-p.Easting, points[i+1].Northing-p.Northing)
		}
	}

	return rows, nil
}

// FormatChainage renders a distance in metres as km+metres, e.g. 1234.5 -> "1+234.50".
func FormatChainage(m float64) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	cents := int64(math.Round(m * 100))
	km := cents / 100000
	rest := float64(cents%100000) / 100
	return fmt.Sprintf("%s%d+%06.2f", sign, km, rest)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
