package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/services"
)

func TestGet(t *testing.T) {
	t.Setenv("PROFILE_TEST_KEY", "  value ")
	assert.Equal(t, "value", Get("PROFILE_TEST_KEY", "fallback"))

	t.Setenv("PROFILE_TEST_KEY", " ")
	assert.Equal(t, "fallback", Get("PROFILE_TEST_KEY", "fallback"))

	t.Setenv("PROFILE_TEST_INT", "12")
	assert.Equal(t, 12, GetInt("PROFILE_TEST_INT", 3))
	t.Setenv("PROFILE_TEST_INT", "x")
	assert.Equal(t, 3, GetInt("PROFILE_TEST_INT", 3))
}

func TestDefaultTuningMatchesServices(t *testing.T) {
	opts, err := DefaultTuning().ProfileOptions()
	require.NoError(t, err)
	assert.Equal(t, services.DefaultProfileOptions(), opts)
}

func TestLoadTuningOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
band_height: 20
hydraulic_mode: add_to_pipe
value_to_meters: 10.2
transform:
  panel_spacing: 40
`), 0o644))

	tn, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 20, tn.BandHeight)
	assert.Equal(t, 0.1, tn.ScanStep, "unset keys keep defaults")
	assert.Equal(t, 40.0, tn.Transform.PanelSpacing)
	assert.Equal(t, 0.2, tn.Transform.UnitsPerDistance)

	opts, err := tn.ProfileOptions()
	require.NoError(t, err)
	assert.Equal(t, services.AddToPipeElevation, opts.Hydraulic.ValueMode)
	assert.Equal(t, 10.2, opts.Hydraulic.ValueToMeters)
}

func TestLoadTuningMissingFile(t *testing.T) {
	tn, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tn)

	tn, err = LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tn)
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("scan_step: -1\n"), 0o644))
	_, err := LoadTuning(bad)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	mode := filepath.Join(dir, "mode.yaml")
	require.NoError(t, os.WriteFile(mode, []byte("hydraulic_mode: sideways\n"), 0o644))
	_, err = LoadTuning(mode)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("band_height: [\n"), 0o644))
	_, err = LoadTuning(broken)
	assert.Error(t, err)
}
