package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-profile-service/internal/adapters/survey"
	"pipeline-profile-service/internal/domain"
)

func flatInput(route string) *domain.ProfileInput {
	return &domain.ProfileInput{
		Route:     route,
		Ground:    []float64{0, 100, 100, 100},
		Pipe:      []float64{0, 90, 50, 92, 100, 90},
		Hydraulic: []float64{0, 99, 100, 98},
		Equipment: domain.EquipmentSources{
			Hydrants:     []domain.Hydrant{{At: 25, OutletCount: 2}},
			ManualDrains: []float64{80},
		},
	}
}

func spikeInput(route string) *domain.ProfileInput {
	return &domain.ProfileInput{
		Route:  route,
		Ground: []float64{0, 100, 100, 100},
		Pipe:   []float64{0, 90, 41.9, 90, 42, 101, 42.1, 90, 100, 90},
	}
}

type memCache struct {
	mu   sync.Mutex
	m    map[string]*domain.ProfileResult
	puts int
	err  error
}

func newMemCache() *memCache { return &memCache{m: map[string]*domain.ProfileResult{}} }

func (c *memCache) Get(ctx context.Context, key string) (*domain.ProfileResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	r, ok := c.m[key]
	return r, ok, nil
}

func (c *memCache) Put(ctx context.Context, key string, res *domain.ProfileResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.puts++
	c.m[key] = res
	return nil
}

type failingRepo struct{}

func (failingRepo) ListRoutes(ctx context.Context) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) GetProfile(ctx context.Context, route string) (*domain.ProfileInput, error) {
	return nil, errors.New("connection refused")
}

func TestBuildProfile(t *testing.T) {
	res, err := BuildProfile(context.Background(), flatInput("L1"), DefaultProfileOptions())
	require.NoError(t, err)

	assert.Equal(t, "L1", res.Route)
	assert.Equal(t, []domain.Band{{Top: 100, Base: 87}}, res.Bands.Bands)
	require.Len(t, res.Ground, 1)
	require.Len(t, res.Pipe, 1)
	require.Len(t, res.Hydraulic.Segments, 1)
	assert.Empty(t, res.Hydraulic.Markers)

	kinds := map[domain.EquipmentKind]int{}
	for _, pe := range res.Equipment {
		kinds[pe.Item.Kind()]++
		assert.Equal(t, 0, pe.BandIndex)
	}
	assert.Equal(t, map[domain.EquipmentKind]int{
		domain.KindHydrant:  1,
		domain.KindAirValve: 1,
		domain.KindDrain:    1,
	}, kinds)

	s := res.Summary
	assert.Equal(t, 100.0, s.Length)
	assert.Equal(t, 1, s.BandCount)
	assert.Equal(t, 100.0, s.MinGround)
	assert.Equal(t, 90.0, s.MinPipe)
	assert.Equal(t, 92.0, s.MaxPipe)
	assert.Equal(t, 98.0, s.MinHydraulic)
	assert.Equal(t, 99.0, s.MaxHydraulic)
	assert.Equal(t, kinds, s.EquipmentByKind)
}

func TestBuildProfileWithoutHydraulic(t *testing.T) {
	in := flatInput("L2")
	in.Hydraulic = nil

	res, err := BuildProfile(context.Background(), in, DefaultProfileOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Hydraulic.Segments)
	assert.Equal(t, 0.0, res.Summary.MaxHydraulic)
}

func TestBuildProfileErrors(t *testing.T) {
	_, err := BuildProfile(context.Background(), spikeInput("L7"), DefaultProfileOptions())
	var geo *domain.GeometryError
	require.True(t, errors.As(err, &geo))
	assert.Equal(t, "L7", geo.Route)

	bad := flatInput("L3")
	bad.Pipe = []float64{0, 90, 0, 91}
	_, err = BuildProfile(context.Background(), bad, DefaultProfileOptions())
	assert.True(t, errors.Is(err, domain.ErrInvalidSeries))

	opts := DefaultProfileOptions()
	opts.ConflictTolerance = -1
	_, err = BuildProfile(context.Background(), flatInput("L4"), opts)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	_, err = BuildProfile(context.Background(), nil, DefaultProfileOptions())
	assert.Error(t, err)
}

func TestBuildCachedProfileUsesCache(t *testing.T) {
	cache := newMemCache()
	in := flatInput("L1")

	first, err := BuildCachedProfile(context.Background(), in, DefaultProfileOptions(), cache)
	require.NoError(t, err)
	second, err := BuildCachedProfile(context.Background(), in, DefaultProfileOptions(), cache)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.puts)

	opts := DefaultProfileOptions()
	opts.Band.BandHeight = 20
	_, err = BuildCachedProfile(context.Background(), in, opts, cache)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts, "different options must not share a cache entry")
}

func TestBuildCachedProfileSurvivesCacheFailure(t *testing.T) {
	cache := newMemCache()
	cache.err = errors.New("redis down")

	res, err := BuildCachedProfile(context.Background(), flatInput("L1"), DefaultProfileOptions(), cache)
	require.NoError(t, err)
	assert.Equal(t, "L1", res.Route)
}

func TestBuildProfiles(t *testing.T) {
	repo := survey.NewMemoryProfileRepository(flatInput("A"), spikeInput("B"), flatInput("C"))

	outcomes, err := BuildProfiles(context.Background(), BuildProfilesRequest{
		Concurrency: 2,
		Options:     DefaultProfileOptions(),
	}, repo, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "A", outcomes[0].Route)
	assert.NoError(t, outcomes[0].Err)
	assert.NotNil(t, outcomes[0].Result)

	var geo *domain.GeometryError
	assert.True(t, errors.As(outcomes[1].Err, &geo))
	assert.Nil(t, outcomes[1].Result)

	assert.NoError(t, outcomes[2].Err)
}

func TestBuildProfilesSelectedRoutes(t *testing.T) {
	repo := survey.NewMemoryProfileRepository(flatInput("A"))

	outcomes, err := BuildProfiles(context.Background(), BuildProfilesRequest{
		Routes:  []string{"A", "missing"},
		Options: DefaultProfileOptions(),
	}, repo, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)
	assert.True(t, errors.Is(outcomes[1].Err, domain.ErrRouteNotFound))
}

func TestBuildProfilesListFailure(t *testing.T) {
	_, err := BuildProfiles(context.Background(), BuildProfilesRequest{Options: DefaultProfileOptions()}, failingRepo{}, nil)
	assert.Error(t, err)
}

func TestBuildProfilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildProfiles(ctx, BuildProfilesRequest{
		Routes:  []string{"A"},
		Options: DefaultProfileOptions(),
	}, survey.NewMemoryProfileRepository(flatInput("A")), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFingerprint(t *testing.T) {
	opts := DefaultProfileOptions()
	a := Fingerprint(flatInput("L1"), opts)

	assert.Equal(t, a, Fingerprint(flatInput("L1"), opts))
	assert.NotEqual(t, a, Fingerprint(flatInput("L2"), opts))

	moved := flatInput("L1")
	moved.Equipment.Hydrants[0].At = 26
	assert.NotEqual(t, a, Fingerprint(moved, opts))

	opts.Hydraulic.MicroBreakStep = 5
	assert.NotEqual(t, a, Fingerprint(flatInput("L1"), opts))
}
