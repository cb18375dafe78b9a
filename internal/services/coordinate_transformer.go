package services

import (
	"fmt"

	"pipeline-profile-service/internal/domain"
)

// TransformOptions describes the drawing plane.
type TransformOptions struct {
	OriginX float64
	// TopReferenceY is the plane row every band's top level maps to.
	TopReferenceY     float64
	UnitsPerDistance  float64
	UnitsPerElevation float64
	// PanelSpacing offsets band i horizontally by i*PanelSpacing.
	PanelSpacing float64
}

// DefaultTransformOptions matches a 1/500 horizontal, 1/100 vertical sheet in metres.
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{UnitsPerDistance: 0.2, UnitsPerElevation: 10.0}
}

func (o TransformOptions) Validate() error {
	if o.UnitsPerDistance <= 0 {
		return fmt.Errorf("transform options: %w: units per distance %v must be positive", domain.ErrInvalidConfig, o.UnitsPerDistance)
	}
	if o.UnitsPerElevation <= 0 {
		return fmt.Errorf("transform options: %w: units per elevation %v must be positive", domain.ErrInvalidConfig, o.UnitsPerElevation)
	}
	return nil
}

// CoordinateTransformer maps (distance, elevation, band) to drawing-plane coordinates.
// Every band shares the same plane row for its top level.
type CoordinateTransformer struct {
	bands *domain.BandSet
	opt   TransformOptions
}

// NewCoordinateTransformer rejects non-positive scale factors and an empty band set.
func NewCoordinateTransformer(bands *domain.BandSet, opts TransformOptions) (*CoordinateTransformer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if bands == nil || bands.Count() == 0 {
		return nil, fmt.Errorf("coordinate transformer: %w: empty band set", domain.ErrInvalidConfig)
	}
	return &CoordinateTransformer{bands: bands, opt: opts}, nil
}

// ToPlaneX places distance within the panel of bandIndex, clamped to a valid band.
func (t *CoordinateTransformer) ToPlaneX(distance float64, bandIndex int) float64 {
	bandIndex = t.bands.ClampIndex(bandIndex)
	return t.opt.OriginX + float64(bandIndex)*t.opt.PanelSpacing + distance*t.opt.UnitsPerDistance
}

// ToPlaneY measures elevation down from the band's top level, which sits at TopReferenceY.
func (t *CoordinateTransformer) ToPlaneY(elevation float64, bandIndex int) float64 {
	top := float64(t.bands.TopLevel(bandIndex))
	return t.opt.TopReferenceY - (top-elevation)*t.opt.UnitsPerElevation
}

// ToPlanePoint transforms one vertex.
func (t *CoordinateTransformer) ToPlanePoint(v domain.Vertex, bandIndex int) (x, y float64) {
	return t.ToPlaneX(v.Distance, bandIndex), t.ToPlaneY(v.Elevation, bandIndex)
}

func (t *CoordinateTransformer) Options() TransformOptions { return t.opt }
