package ports

import (
	"context"

	"pipeline-profile-service/internal/domain"
)

// Contract for storing built profiles keyed by an input fingerprint.
type ResultCache interface {
	// Return the cached result and true, or false on a miss.
	Get(ctx context.Context, key string) (*domain.ProfileResult, bool, error)
	Put(ctx context.Context, key string, res *domain.ProfileResult) error
}
