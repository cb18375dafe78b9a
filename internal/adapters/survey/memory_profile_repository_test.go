package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-profile-service/internal/domain"
)

func TestMemoryProfileRepository(t *testing.T) {
	repo := NewMemoryProfileRepository(
		&domain.ProfileInput{Route: "B"},
		&domain.ProfileInput{Route: "A"},
	)

	routes, err := repo.ListRoutes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, routes)

	in, err := repo.GetProfile(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", in.Route)

	_, err = repo.GetProfile(context.Background(), "C")
	assert.True(t, errors.Is(err, domain.ErrRouteNotFound))
	assert.Equal(t, 2, repo.Gets())
}
