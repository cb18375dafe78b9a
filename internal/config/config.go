// Package config reads environment settings and the profile tuning file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pipeline-profile-service/internal/services"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt is Get for integer settings; malformed values fall back.
func GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// Tuning holds every profile-building constant that deployments may adjust.
type Tuning struct {
	ScanStep          float64 `yaml:"scan_step"`
	BandHeight        int     `yaml:"band_height"`
	MicroBreakStep    float64 `yaml:"micro_break_step"`
	HydraulicMode     string  `yaml:"hydraulic_mode"`
	ValueToMeters     float64 `yaml:"value_to_meters"`
	ConflictTolerance float64 `yaml:"conflict_tolerance"`

	Transform TransformTuning `yaml:"transform"`
}

type TransformTuning struct {
	OriginX           float64 `yaml:"origin_x"`
	TopReferenceY     float64 `yaml:"top_reference_y"`
	UnitsPerDistance  float64 `yaml:"units_per_distance"`
	UnitsPerElevation float64 `yaml:"units_per_elevation"`
	PanelSpacing      float64 `yaml:"panel_spacing"`
}

func DefaultTuning() Tuning {
	def := services.DefaultProfileOptions()
	return Tuning{
		ScanStep:          def.Band.ScanStep,
		BandHeight:        def.Band.BandHeight,
		MicroBreakStep:    def.Hydraulic.MicroBreakStep,
		HydraulicMode:     def.Hydraulic.ValueMode.String(),
		ValueToMeters:     def.Hydraulic.ValueToMeters,
		ConflictTolerance: def.ConflictTolerance,
		Transform: TransformTuning{
			OriginX:           def.Transform.OriginX,
			TopReferenceY:     def.Transform.TopReferenceY,
			UnitsPerDistance:  def.Transform.UnitsPerDistance,
			UnitsPerElevation: def.Transform.UnitsPerElevation,
			PanelSpacing:      def.Transform.PanelSpacing,
		},
	}
}

// LoadTuning overlays the YAML file at path on DefaultTuning. An empty path
// or a missing file yields the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return Tuning{}, fmt.Errorf("load tuning %q: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &t); err != nil {
		return Tuning{}, fmt.Errorf("load tuning %q: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("load tuning %q: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	_, err := t.ProfileOptions()
	return err
}

// ProfileOptions converts the tuning into builder options.
func (t Tuning) ProfileOptions() (services.ProfileOptions, error) {
	mode, err := services.ParseHydraulicValueMode(t.HydraulicMode)
	if err != nil {
		return services.ProfileOptions{}, fmt.Errorf("tuning: %w", err)
	}

	opts := services.ProfileOptions{
		Band: services.BandOptions{ScanStep: t.ScanStep, BandHeight: t.BandHeight},
		Hydraulic: services.HydraulicOptions{
			ValueMode:      mode,
			ValueToMeters:  t.ValueToMeters,
			MicroBreakStep: t.MicroBreakStep,
		},
		Transform: services.TransformOptions{
			OriginX:           t.Transform.OriginX,
			TopReferenceY:     t.Transform.TopReferenceY,
			UnitsPerDistance:  t.Transform.UnitsPerDistance,
			UnitsPerElevation: t.Transform.UnitsPerElevation,
			PanelSpacing:      t.Transform.PanelSpacing,
		},
		ConflictTolerance: t.ConflictTolerance,
	}
	if err := opts.Validate(); err != nil {
		return services.ProfileOptions{}, fmt.Errorf("tuning: %w", err)
	}
	return opts, nil
}
