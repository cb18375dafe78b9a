package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/platform/obs"
	"pipeline-profile-service/internal/ports"
)

// ProfileOptions bundles every tunable of a profile build.
type ProfileOptions struct {
	Band              BandOptions
	Hydraulic         HydraulicOptions
	Transform         TransformOptions
	ConflictTolerance float64
}

func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		Band:              DefaultBandOptions(),
		Hydraulic:         DefaultHydraulicOptions(),
		Transform:         DefaultTransformOptions(),
		ConflictTolerance: DefaultConflictTolerance,
	}
}

func (o ProfileOptions) Validate() error {
	if err := o.Band.Validate(); err != nil {
		return err
	}
	if err := o.Hydraulic.Validate(); err != nil {
		return err
	}
	if err := o.Transform.Validate(); err != nil {
		return err
	}
	if o.ConflictTolerance < 0 {
		return fmt.Errorf("profile options: %w: conflict tolerance %v must not be negative", domain.ErrInvalidConfig, o.ConflictTolerance)
	}
	return nil
}

// BuildProfile runs the whole pipeline for one route: bands first, then the
// ground/pipe clipping, hydraulic re-segmentation and equipment placement that
// all consume the band set. Any error aborts the profile; no partial result
// is returned.
func BuildProfile(ctx context.Context, in *domain.ProfileInput, opts ProfileOptions) (_ *domain.ProfileResult, err error) {
	defer obs.Time(ctx, "profile.Build")(&err)

	if in == nil {
		return nil, errors.New("build profile: input must be non-nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("build profile %q: %w", in.Route, err)
	}

	ground, err := domain.NewPolyline(in.Ground)
	if err != nil {
		return nil, fmt.Errorf("build profile %q: ground: %w", in.Route, err)
	}
	pipe, err := domain.NewPolyline(in.Pipe)
	if err != nil {
		return nil, fmt.Errorf("build profile %q: pipe: %w", in.Route, err)
	}

	bands, err := BuildBands(ground, pipe, in.Route, opts.Band)
	if err != nil {
		return nil, fmt.Errorf("build profile %q: %w", in.Route, err)
	}

	res := &domain.ProfileResult{Route: in.Route, Bands: bands}

	if res.Ground, err = SplitByBands(ground, bands); err != nil {
		return nil, fmt.Errorf("build profile %q: ground: %w", in.Route, err)
	}
	if res.Pipe, err = SplitByBands(pipe, bands); err != nil {
		return nil, fmt.Errorf("build profile %q: pipe: %w", in.Route, err)
	}

	// The hydraulic series is optional; lines without a pressure table still get drawn.
	if len(in.Hydraulic) > 0 {
		series, err := domain.NewPolyline(in.Hydraulic)
		if err != nil {
			return nil, fmt.Errorf("build profile %q: hydraulic: %w", in.Route, err)
		}
		if res.Hydraulic, err = BuildHydraulic(series, pipe, bands, opts.Hydraulic); err != nil {
			return nil, fmt.Errorf("build profile %q: %w", in.Route, err)
		}
	}

	tr, err := NewCoordinateTransformer(bands, opts.Transform)
	if err != nil {
		return nil, fmt.Errorf("build profile %q: %w", in.Route, err)
	}

	items, err := PlaceEquipment(in.Equipment, DetectExtrema(pipe), opts.ConflictTolerance)
	if err != nil {
		return nil, fmt.Errorf("build profile %q: %w", in.Route, err)
	}
	res.Equipment = PositionEquipment(items, bands, pipe, tr)
	res.Summary = Summarize(ground, pipe, res)

	return res, nil
}

// BuildCachedProfile builds in, consulting cache first when one is given.
// Cache failures are logged and never fail the build.
func BuildCachedProfile(
	ctx context.Context,
	in *domain.ProfileInput,
	opts ProfileOptions,
	cache ports.ResultCache,
) (*domain.ProfileResult, error) {
	if in == nil {
		return nil, errors.New("build cached profile: input must be non-nil")
	}
	if cache == nil {
		return BuildProfile(ctx, in, opts)
	}

	key := Fingerprint(in, opts)
	if res, ok, err := cache.Get(ctx, key); err != nil {
		log.Warnw("profile cache get failed", "route", in.Route, "key", key, "err", err)
	} else if ok {
		return res, nil
	}

	res, err := BuildProfile(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	if err := cache.Put(ctx, key, res); err != nil {
		log.Warnw("profile cache put failed", "route", in.Route, "key", key, "err", err)
	}
	return res, nil
}

// BuildRouteProfile loads one route from the repository and builds it.
func BuildRouteProfile(
	ctx context.Context,
	route string,
	opts ProfileOptions,
	repo ports.ProfileRepository,
	cache ports.ResultCache,
) (*domain.ProfileResult, error) {
	in, err := repo.GetProfile(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("build route profile: get profile %q: %w", route, err)
	}
	return BuildCachedProfile(ctx, in, opts, cache)
}

type BuildProfilesRequest struct {
	// Routes to build; empty means every route in the repository.
	Routes      []string
	Concurrency int
	Options     ProfileOptions
}

// RouteOutcome is the per-route result of a batch build. A geometry or input
// error only fails its own route.
type RouteOutcome struct {
	Route  string
	Result *domain.ProfileResult
	Err    error
}

// BuildProfiles builds many routes in parallel. Profiles share nothing, so
// each one runs independently; outcomes keep the request's route order.
// Only repository listing failures or cancellation fail the whole batch.
func BuildProfiles(
	ctx context.Context,
	req BuildProfilesRequest,
	repo ports.ProfileRepository,
	cache ports.ResultCache,
) ([]RouteOutcome, error) {
	routes := req.Routes
	if len(routes) == 0 {
		var err error
		routes, err = repo.ListRoutes(ctx)
		if err != nil {
			return nil, fmt.Errorf("build profiles: list routes: %w", err)
		}
	}

	limit := req.Concurrency
	if limit <= 0 {
		limit = 4
	}

	outcomes := make([]RouteOutcome, len(routes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, route := range routes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := BuildRouteProfile(gctx, route, req.Options, repo, cache)
			if err != nil {
				log.Warnw("route profile failed", "route", route, "err", err)
			}
			outcomes[i] = RouteOutcome{Route: route, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build profiles: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build profiles: %w", err)
	}

	return outcomes, nil
}
