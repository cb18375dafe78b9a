package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap/zaptest"

	"pipeline-profile-service/internal/adapters/render"
	"pipeline-profile-service/internal/adapters/survey"
	"pipeline-profile-service/internal/api/dto"
	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/ports"
	"pipeline-profile-service/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log.SetLogger(zaptest.NewLogger(t))
	t.Cleanup(func() { log.SetLogger(nil) })

	repo := survey.NewMemoryProfileRepository(
		&domain.ProfileInput{
			Route:     "A",
			Ground:    []float64{0, 100, 100, 100},
			Pipe:      []float64{0, 90, 50, 92, 100, 90},
			Hydraulic: []float64{0, 99, 100, 98},
			Equipment: domain.EquipmentSources{Hydrants: []domain.Hydrant{{At: 20, OutletCount: 1}}},
		},
		&domain.ProfileInput{
			Route:  "spike",
			Ground: []float64{0, 100, 100, 100},
			Pipe:   []float64{0, 90, 41.9, 90, 42, 101, 42.1, 90, 100, 90},
		},
	)

	srv := httptest.NewServer(NewRouter(Deps{
		Repo:      repo,
		Options:   services.DefaultProfileOptions(),
		Renderers: []ports.ProfileRenderer{render.NewPlotRenderer(), render.NewChartRenderer()},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))

	resp, err = http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))
}

func TestListRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/routes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.ListRoutesResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, []string{"A", "spike"}, body.Routes)
}

func TestRouteProfile(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/routes/A/profile")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.ProfileResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "A", body.Route)
	assert.Equal(t, []dto.BandResponse{{Index: 0, Top: 100, Base: 87, Start: 0, End: 100}}, body.Bands)
	require.Len(t, body.Pipe, 1)
	assert.Equal(t, [2]float64{50, 92}, body.Pipe[0].Points[1])
	assert.Len(t, body.Hydraulic.Segments, 1)
	assert.Equal(t, 1, body.Summary.Equipment["hydrant"])
	assert.Equal(t, 1, body.Summary.Equipment["air_valve"])
}

func TestRouteProfileErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/routes/missing/profile", http.StatusNotFound},
		{"/routes/spike/profile", http.StatusUnprocessableEntity},
		{"/routes/A/preview?format=pdf", http.StatusBadRequest},
		{"/routes/missing/preview", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)

			var body map[string]string
			decodeJSON(t, resp, &body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBuildProfileFromBody(t *testing.T) {
	srv := newTestServer(t)

	body := `{"route":"X","ground":[0,50,20,50],"pipe":[0,45,20,45],"drains":[10]}`
	resp, err := http.Post(srv.URL+"/profiles", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res dto.ProfileResponse
	decodeJSON(t, resp, &res)
	assert.Equal(t, "X", res.Route)
	require.Len(t, res.Equipment, 1)
	assert.Equal(t, "drain", res.Equipment[0].Kind)

	for _, bad := range []string{`{`, `{"route":"X","ground":[0,1,2],"pipe":[0,0,2,0]}`, `{"route":"X","extra":1}`} {
		resp, err := http.Post(srv.URL+"/profiles", "application/json", strings.NewReader(bad))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestBuildRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/routes/build", "application/json", strings.NewReader(`{"concurrency":2}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.BuildRoutesResponse
	decodeJSON(t, resp, &body)
	require.Len(t, body.Outcomes, 2)
	assert.True(t, body.Outcomes[0].OK)
	assert.NotNil(t, body.Outcomes[0].Summary)
	assert.False(t, body.Outcomes[1].OK)
	assert.Contains(t, body.Outcomes[1].Error, "pipe above ground")
}

func TestPreview(t *testing.T) {
	srv := newTestServer(t)

	for format, ctype := range map[string]string{
		"png":  "image/png",
		"svg":  "image/svg+xml",
		"html": "text/html; charset=utf-8",
	} {
		resp, err := http.Get(srv.URL + "/routes/A/preview?format=" + format)
		require.NoError(t, err)

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, format)
		assert.Equal(t, ctype, resp.Header.Get("Content-Type"), format)
		assert.NotZero(t, buf.Len(), format)
	}
}

func TestCoordinateTable(t *testing.T) {
	srv := newTestServer(t)

	body := `{"points":[{"easting":0,"northing":0},{"easting":300,"northing":400},{"easting":300,"northing":1500}]}`
	resp, err := http.Post(srv.URL+"/coordinates/table", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res dto.CoordinateTableResponse
	decodeJSON(t, resp, &res)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "S1", res.Rows[1].Name)
	assert.Equal(t, "0+500.00", res.Rows[1].Station)
	assert.Equal(t, "1+600.00", res.Rows[2].Station)
	assert.NotNil(t, res.Rows[1].Turn)

	resp, err = http.Post(srv.URL+"/coordinates/table", "application/json", strings.NewReader(`{"points":[]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMsgpackNegotiation(t *testing.T) {
	srv := newTestServer(t)

	for _, accept := range []string{"application/msgpack", "application/x-msgpack", "application/json;q=0.5, application/msgpack"} {
		t.Run(accept, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/routes", nil)
			req.Header.Set("Accept", accept)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, "application/msgpack", resp.Header.Get("Content-Type"))

			var body map[string][]string
			require.NoError(t, msgpack.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, []string{"A", "spike"}, body["routes"])
		})
	}
}

func TestProfileMsgpack(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/routes/A/profile", nil)
	req.Header.Set("Accept", "application/msgpack")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/msgpack", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, msgpack.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "A", body["route"])
}

func TestJSONIsDefault(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/routes")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
