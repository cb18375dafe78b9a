// Command profilectl builds pipeline profiles from survey documents or a
// database and writes them as JSON or rendered previews.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"pipeline-profile-service/internal/adapters/render"
	"pipeline-profile-service/internal/adapters/repositories"
	"pipeline-profile-service/internal/adapters/survey"
	"pipeline-profile-service/internal/api/dto"
	"pipeline-profile-service/internal/config"
	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/db"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/ports"
	"pipeline-profile-service/internal/services"
)

type options struct {
	input       string
	databaseURL string
	route       string
	tuning      string
	format      string
	output      string
	plan        string
	concurrency int
	debug       bool
}

func main() {
	var o options
	flag.StringVar(&o.input, "in", "", "profile document file (single object or array)")
	flag.StringVar(&o.databaseURL, "db", "", "database URL to read routes from instead of -in")
	flag.StringVar(&o.route, "route", "", "route to build; empty builds every route as a JSON summary")
	flag.StringVar(&o.tuning, "tuning", "", "tuning YAML file")
	flag.StringVar(&o.format, "format", "json", "output format: json, png, svg or html")
	flag.StringVar(&o.output, "out", "", "output file (default stdout)")
	flag.StringVar(&o.plan, "plan", "", "plan point file ([[easting, northing], ...]); prints the coordinate table")
	flag.IntVar(&o.concurrency, "j", 4, "parallel builds when building every route")
	flag.BoolVar(&o.debug, "debug", false, "debug logging")
	flag.Parse()

	if err := log.Init(o.debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), o); err != nil {
		fmt.Fprintln(os.Stderr, "profilectl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	w := io.Writer(os.Stdout)
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if o.plan != "" {
		return writeCoordinateTable(w, o.plan)
	}

	tuning, err := config.LoadTuning(o.tuning)
	if err != nil {
		return err
	}
	opts, err := tuning.ProfileOptions()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(o)
	if err != nil {
		return err
	}
	defer closeRepo()

	if o.route == "" {
		if o.format != "json" {
			return errors.New("-route is required for rendered output")
		}
		outcomes, err := services.BuildProfiles(ctx, services.BuildProfilesRequest{
			Concurrency: o.concurrency,
			Options:     opts,
		}, repo, nil)
		if err != nil {
			return err
		}
		return encodeJSON(w, dto.NewBuildRoutesResponse(outcomes))
	}

	res, err := services.BuildRouteProfile(ctx, o.route, opts, repo, nil)
	if err != nil {
		return err
	}

	if o.format == "json" {
		return encodeJSON(w, dto.NewProfileResponse(res))
	}

	renderer, err := render.Set{render.NewPlotRenderer(), render.NewChartRenderer()}.For(o.format)
	if err != nil {
		return err
	}
	return renderer.Render(w, res, o.format)
}

func openRepository(o options) (ports.ProfileRepository, func(), error) {
	switch {
	case o.databaseURL != "":
		conn, err := db.Open(o.databaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewSQLProfileRepository(conn, db.DialectOf(o.databaseURL))
		return repo, func() { _ = conn.Close() }, nil

	case o.input != "":
		f, err := os.Open(o.input)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()

		docs, err := survey.DecodeDocuments(f)
		if err != nil {
			return nil, nil, err
		}
		inputs := make([]*domain.ProfileInput, 0, len(docs))
		for i := range docs {
			in, err := docs[i].ToInput()
			if err != nil {
				return nil, nil, fmt.Errorf("document #%d: %w", i+1, err)
			}
			inputs = append(inputs, in)
		}
		return survey.NewMemoryProfileRepository(inputs...), func() {}, nil
	}

	return nil, nil, errors.New("one of -in or -db is required")
}

func writeCoordinateTable(w io.Writer, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw [][2]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse plan points: %w", err)
	}
	pts := make([]domain.PlanPoint, 0, len(raw))
	for _, p := range raw {
		pts = append(pts, domain.PlanPoint{Easting: p[0], Northing: p[1]})
	}

	rows, err := services.CoordinateTable(pts)
	if err != nil {
		return err
	}

	return encodeJSON(w, dto.NewCoordinateTableResponse(rows))
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
