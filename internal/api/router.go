package api

import (
	"net/http"

	"pipeline-profile-service/internal/api/handlers"
	"pipeline-profile-service/internal/ports"
	"pipeline-profile-service/internal/services"
)

// Deps are the adapters the HTTP layer needs. Cache may be nil.
type Deps struct {
	Repo      ports.ProfileRepository
	Cache     ports.ResultCache
	Options   services.ProfileOptions
	Renderers []ports.ProfileRenderer
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	profiles := &handlers.ProfileHandler{
		Repo:      deps.Repo,
		Cache:     deps.Cache,
		Options:   deps.Options,
		Renderers: deps.Renderers,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes", profiles.ListRoutes)
	mux.HandleFunc("/routes/build", profiles.BuildRoutes)
	mux.HandleFunc("/routes/{label}/profile", profiles.Profile)
	mux.HandleFunc("/routes/{label}/preview", profiles.Preview)
	mux.HandleFunc("/profiles", profiles.Build)
	mux.HandleFunc("/coordinates/table", handlers.CoordinateTable)

	return requestIDMiddleware(loggingMiddleware(mux))
}
