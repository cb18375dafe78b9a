package ports

import (
	"context"

	"pipeline-profile-service/internal/domain"
)

// Port: a boundary for retrieving parsed survey data from a data source.
type ProfileRepository interface {
	// Return all route labels known to the source, in stable order.
	ListRoutes(ctx context.Context) ([]string, error)
	// Return the survey input for one route, or domain.ErrRouteNotFound.
	GetProfile(ctx context.Context, route string) (*domain.ProfileInput, error)
}
