package survey

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pipeline-profile-service/internal/domain"
)

// MemoryProfileRepository serves profiles held in memory, e.g. documents
// decoded from a file.
type MemoryProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*domain.ProfileInput
	gets     int
}

func NewMemoryProfileRepository(profiles ...*domain.ProfileInput) *MemoryProfileRepository {
	m := make(map[string]*domain.ProfileInput, len(profiles))
	for _, p := range profiles {
		m[p.Route] = p
	}
	return &MemoryProfileRepository{profiles: m}
}

func (r *MemoryProfileRepository) ListRoutes(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes := make([]string, 0, len(r.profiles))
	for k := range r.profiles {
		routes = append(routes, k)
	}
	sort.Strings(routes)
	return routes, nil
}

func (r *MemoryProfileRepository) GetProfile(ctx context.Context, route string) (*domain.ProfileInput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gets++
	p, ok := r.profiles[route]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrRouteNotFound, route)
	}
	return p, nil
}

// Gets reports how many GetProfile calls were served.
func (r *MemoryProfileRepository) Gets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}
