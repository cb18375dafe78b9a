package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"pipeline-profile-service/internal/adapters/survey"
	"pipeline-profile-service/internal/api/dto"
	"pipeline-profile-service/internal/ports"
	"pipeline-profile-service/internal/services"
)

// ProfileHandler serves stored routes and builds profiles on request.
type ProfileHandler struct {
	Repo      ports.ProfileRepository
	Cache     ports.ResultCache
	Options   services.ProfileOptions
	Renderers []ports.ProfileRenderer
}

func (h *ProfileHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		writeServiceError(w, r, "list routes", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListRoutesResponse{Routes: routes})
}

// Profile builds (or loads from cache) the profile of a stored route.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	res, err := services.BuildRouteProfile(r.Context(), r.PathValue("label"), h.Options, h.Repo, h.Cache)
	if err != nil {
		writeServiceError(w, r, "build route profile", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewProfileResponse(res))
}

// Build builds a profile from raw series in the request body without storing it.
func (h *ProfileHandler) Build(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var doc survey.ProfileDocument
	if !decodeBody(w, r, &doc) {
		return
	}

	in, err := doc.ToInput()
	if err != nil {
		writeServiceError(w, r, "build profile", err)
		return
	}

	res, err := services.BuildCachedProfile(r.Context(), in, h.Options, h.Cache)
	if err != nil {
		writeServiceError(w, r, "build profile", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewProfileResponse(res))
}

// BuildRoutes builds many stored routes at once. Per-route failures are
// reported in the outcome list rather than failing the request.
func (h *ProfileHandler) BuildRoutes(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.BuildRoutesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Concurrency < 0 || req.Concurrency > 32 {
		writeError(w, r, http.StatusBadRequest, "concurrency must be between 0 and 32")
		return
	}

	outcomes, err := services.BuildProfiles(r.Context(), services.BuildProfilesRequest{
		Routes:      req.Routes,
		Concurrency: req.Concurrency,
		Options:     h.Options,
	}, h.Repo, h.Cache)
	if err != nil {
		writeServiceError(w, r, "build routes", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewBuildRoutesResponse(outcomes))
}

// Preview renders a stored route in the format given by ?format= (png by default).
func (h *ProfileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "png"
	}

	renderer := h.rendererFor(format)
	if renderer == nil {
		writeError(w, r, http.StatusBadRequest, "unsupported format "+format)
		return
	}

	res, err := services.BuildRouteProfile(r.Context(), r.PathValue("label"), h.Options, h.Repo, h.Cache)
	if err != nil {
		writeServiceError(w, r, "preview", err)
		return
	}

	// Render into a buffer so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := renderer.Render(&buf, res, format); err != nil {
		writeServiceError(w, r, "render preview", err)
		return
	}

	w.Header().Set("Content-Type", previewContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ProfileHandler) rendererFor(format string) ports.ProfileRenderer {
	for _, rd := range h.Renderers {
		for _, f := range rd.Formats() {
			if f == format {
				return rd
			}
		}
	}
	return nil
}

func previewContentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "svg":
		return "image/svg+xml"
	case "html":
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}
