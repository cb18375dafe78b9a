package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/db"
	"pipeline-profile-service/internal/platform/obs"
)

const (
	seriesGround    = "ground"
	seriesPipe      = "pipe"
	seriesHydraulic = "hydraulic"
)

// SQLProfileRepository implements ProfileRepository on SQLite or Postgres.
type SQLProfileRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLProfileRepository(conn *sql.DB, dialect db.Dialect) *SQLProfileRepository {
	return &SQLProfileRepository{DB: conn, Dialect: dialect}
}

func NewSqliteProfileRepository(conn *sql.DB) *SQLProfileRepository {
	return NewSQLProfileRepository(conn, db.SQLite)
}

// ListRoutes returns all stored route labels in order.
func (s *SQLProfileRepository) ListRoutes(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "repo.ListRoutes")(&err)

	if s.DB == nil {
		return nil, errors.New("profile repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT label FROM routes ORDER BY label;`)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]string, 0, 64)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

// GetProfile loads one route's series and equipment.
func (s *SQLProfileRepository) GetProfile(ctx context.Context, route string) (_ *domain.ProfileInput, err error) {
	defer obs.Time(ctx, "repo.GetProfile")(&err)

	if s.DB == nil {
		return nil, errors.New("profile repository: DB is nil")
	}

	var label string
	err = s.DB.QueryRowContext(ctx, s.Dialect.Bind(`SELECT label FROM routes WHERE label = ?;`), route).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", domain.ErrRouteNotFound, route)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %q: query routes table: %w", route, err)
	}

	in := &domain.ProfileInput{Route: label}
	if err := s.loadSeries(ctx, in); err != nil {
		return nil, fmt.Errorf("get profile %q: %w", route, err)
	}
	if err := s.loadEquipment(ctx, in); err != nil {
		return nil, fmt.Errorf("get profile %q: %w", route, err)
	}

	return in, nil
}

func (s *SQLProfileRepository) loadSeries(ctx context.Context, in *domain.ProfileInput) error {
	q := s.Dialect.Bind(`
	SELECT series, distance, value
	FROM series_points
	WHERE route = ?
	ORDER BY series, seq;
	`)
	rows, err := s.DB.QueryContext(ctx, q, in.Route)
	if err != nil {
		return fmt.Errorf("query series_points table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var series string
		var d, v float64
		if err := rows.Scan(&series, &d, &v); err != nil {
			return fmt.Errorf("scan series row: %w", err)
		}
		switch series {
		case seriesGround:
			in.Ground = append(in.Ground, d, v)
		case seriesPipe:
			in.Pipe = append(in.Pipe, d, v)
		case seriesHydraulic:
			in.Hydraulic = append(in.Hydraulic, d, v)
		default:
			return fmt.Errorf("unknown series %q", series)
		}
	}
	return rows.Err()
}

func (s *SQLProfileRepository) loadEquipment(ctx context.Context, in *domain.ProfileInput) error {
	q := s.Dialect.Bind(`
	SELECT kind, distance, outlets, label, static_level
	FROM equipment
	WHERE route = ?
	ORDER BY seq;
	`)
	rows, err := s.DB.QueryContext(ctx, q, in.Route)
	if err != nil {
		return fmt.Errorf("query equipment table: %w", err)
	}
	defer rows.Close()

	eq := &in.Equipment
	for rows.Next() {
		var (
			kind    string
			d       float64
			outlets int
			label   string
			level   sql.NullFloat64
		)
		if err := rows.Scan(&kind, &d, &outlets, &label, &level); err != nil {
			return fmt.Errorf("scan equipment row: %w", err)
		}

		switch domain.EquipmentKind(kind) {
		case domain.KindHydrant:
			eq.Hydrants = append(eq.Hydrants, domain.Hydrant{At: d, OutletCount: outlets})
		case domain.KindJunction:
			eq.Junctions = append(eq.Junctions, domain.Junction{At: d, Label: label})
		case domain.KindBkv:
			b := domain.Bkv{At: d}
			if level.Valid {
				v := level.Float64
				b.StaticLevel = &v
			}
			eq.Bkvs = append(eq.Bkvs, b)
		case domain.KindAirValve:
			eq.ManualAirValves = append(eq.ManualAirValves, d)
		case domain.KindDrain:
			eq.ManualDrains = append(eq.ManualDrains, d)
		default:
			return fmt.Errorf("unknown equipment kind %q", kind)
		}
	}
	return rows.Err()
}

// SaveProfile stores in, replacing any existing data for the same route.
func (s *SQLProfileRepository) SaveProfile(ctx context.Context, in *domain.ProfileInput) (err error) {
	defer obs.Time(ctx, "repo.SaveProfile")(&err)

	if s.DB == nil {
		return errors.New("profile repository: DB is nil")
	}
	if in == nil || in.Route == "" {
		return errors.New("save profile: route label must be non-empty")
	}
	for name, series := range map[string][]float64{seriesGround: in.Ground, seriesPipe: in.Pipe, seriesHydraulic: in.Hydraulic} {
		if len(series)%2 != 0 {
			return &domain.InputError{Field: name, Err: fmt.Errorf("%w: odd length %d", domain.ErrInvalidSeries, len(series))}
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save profile %q: begin tx: %w", in.Route, err)
	}
	defer func() { _ = tx.Rollback() }()

	d := s.Dialect
	stmts := []string{
		`INSERT INTO routes (label) VALUES (?) ON CONFLICT (label) DO NOTHING;`,
		`DELETE FROM series_points WHERE route = ?;`,
		`DELETE FROM equipment WHERE route = ?;`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, d.Bind(q), in.Route); err != nil {
			return fmt.Errorf("save profile %q: %w", in.Route, err)
		}
	}

	pointStmt, err := tx.PrepareContext(ctx, d.Bind(`
	INSERT INTO series_points (route, series, seq, distance, value)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save profile %q: prepare series insert: %w", in.Route, err)
	}
	defer pointStmt.Close()

	for _, sr := range []struct {
		name   string
		values []float64
	}{
		{seriesGround, in.Ground},
		{seriesPipe, in.Pipe},
		{seriesHydraulic, in.Hydraulic},
	} {
		for i := 0; i+1 < len(sr.values); i += 2 {
			if _, err := pointStmt.ExecContext(ctx, in.Route, sr.name, i/2, sr.values[i], sr.values[i+1]); err != nil {
				return fmt.Errorf("save profile %q: insert %s point %d: %w", in.Route, sr.name, i/2, err)
			}
		}
	}

	eqStmt, err := tx.PrepareContext(ctx, d.Bind(`
	INSERT INTO equipment (route, seq, kind, distance, outlets, label, static_level)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save profile %q: prepare equipment insert: %w", in.Route, err)
	}
	defer eqStmt.Close()

	seq := 0
	insertEq := func(kind domain.EquipmentKind, at float64, outlets int, label string, level *float64) error {
		var lv sql.NullFloat64
		if level != nil {
			lv = sql.NullFloat64{Float64: *level, Valid: true}
		}
		if _, err := eqStmt.ExecContext(ctx, in.Route, seq, string(kind), at, outlets, label, lv); err != nil {
			return fmt.Errorf("save profile %q: insert %s #%d: %w", in.Route, kind, seq, err)
		}
		seq++
		return nil
	}

	eq := in.Equipment
	for _, h := range eq.Hydrants {
		if err := insertEq(domain.KindHydrant, h.At, h.OutletCount, "", nil); err != nil {
			return err
		}
	}
	for _, j := range eq.Junctions {
		if err := insertEq(domain.KindJunction, j.At, 0, j.Label, nil); err != nil {
			return err
		}
	}
	for _, b := range eq.Bkvs {
		if err := insertEq(domain.KindBkv, b.At, 0, "", b.StaticLevel); err != nil {
			return err
		}
	}
	for _, a := range eq.ManualAirValves {
		if err := insertEq(domain.KindAirValve, a, 0, "", nil); err != nil {
			return err
		}
	}
	for _, dr := range eq.ManualDrains {
		if err := insertEq(domain.KindDrain, dr, 0, "", nil); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save profile %q: commit tx: %w", in.Route, err)
	}
	return nil
}
