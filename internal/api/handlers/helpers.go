package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/platform/obs"
)

const msgpackContentType = "application/msgpack"

// wantsMsgpack reports whether the Accept header names either MessagePack
// media type.
func wantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := strings.Cut(part, ";")
		switch strings.ToLower(strings.TrimSpace(mt)) {
		case msgpackContentType, "application/x-msgpack":
			return true
		}
	}
	return false
}

// writeJSON encodes v as JSON, or as MessagePack when the client asks for it.
// MessagePack output reuses the json field names.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if wantsMsgpack(r) {
		w.Header().Set("Content-Type", msgpackContentType)
		w.WriteHeader(status)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(v); err != nil {
			log.Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

// writeServiceError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var geo *domain.GeometryError
	var inErr *domain.InputError

	switch {
	case errors.As(err, &geo):
		writeError(w, r, http.StatusUnprocessableEntity, geo.Error())
	case errors.Is(err, domain.ErrRouteNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.As(err, &inErr), errors.Is(err, domain.ErrInvalidSeries), errors.Is(err, domain.ErrInvalidConfig):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Errorw(op+" failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeBody reads exactly one JSON object into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
