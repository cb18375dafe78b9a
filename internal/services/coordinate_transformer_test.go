package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-profile-service/internal/domain"
)

func TestCoordinateTransformer(t *testing.T) {
	bs := &domain.BandSet{
		Bands:          []domain.Band{{Top: 100, Base: 87}, {Top: 95, Base: 82}},
		BreakDistances: []float64{50, 100},
	}
	opts := TransformOptions{OriginX: 10, TopReferenceY: 200, UnitsPerDistance: 0.2, UnitsPerElevation: 10, PanelSpacing: 50}

	tr, err := NewCoordinateTransformer(bs, opts)
	require.NoError(t, err)

	assert.InDelta(t, 62.0, tr.ToPlaneX(10, 1), 1e-9)
	assert.InDelta(t, 62.0, tr.ToPlaneX(10, 5), 1e-9, "band index clamps")
	assert.InDelta(t, 200.0, tr.ToPlaneY(95, 1), 1e-9)
	assert.InDelta(t, 150.0, tr.ToPlaneY(90, 1), 1e-9)
	assert.InDelta(t, 150.0, tr.ToPlaneY(95, 0), 1e-9)

	x, y := tr.ToPlanePoint(domain.Vertex{Distance: 0, Elevation: 100}, 0)
	assert.InDelta(t, 10.0, x, 1e-9)
	assert.InDelta(t, 200.0, y, 1e-9)
	assert.Equal(t, opts, tr.Options())
}

func TestNewCoordinateTransformerRejectsBadInput(t *testing.T) {
	_, err := NewCoordinateTransformer(&domain.BandSet{}, DefaultTransformOptions())
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	_, err = NewCoordinateTransformer(singleBand(), TransformOptions{UnitsPerDistance: 1})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}
