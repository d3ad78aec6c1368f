package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cristianadrielbraun/qrlogo/internal/geometry"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		size        float64
		scale       float64
		logoSize    float64
		logoOffset  float64
		plateRadius float64
	}{
		{name: "default scale", size: 300, scale: 1, logoSize: 60, logoOffset: 120, plateRadius: 35},
		{name: "unset scale", size: 300, scale: 0, logoSize: 60, logoOffset: 120, plateRadius: 35},
		{name: "min scale", size: 300, scale: 0.5, logoSize: 30, logoOffset: 135, plateRadius: 20},
		{name: "max scale", size: 300, scale: 1.5, logoSize: 90, logoOffset: 105, plateRadius: 50},
		{name: "odd size", size: 301, scale: 1, logoSize: 60.2, logoOffset: 120.4, plateRadius: 35.1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := geometry.Compute(tt.size, tt.scale)
			assert.InDelta(t, tt.logoSize, l.LogoSize, 1e-9)
			assert.InDelta(t, tt.logoOffset, l.LogoX, 1e-9)
			assert.InDelta(t, tt.logoOffset, l.LogoY, 1e-9)
			assert.InDelta(t, tt.plateRadius, l.PlateRadius, 1e-9)
			assert.InDelta(t, tt.logoSize/2, l.ClipRadius, 1e-9)
			assert.Equal(t, tt.size/2, l.CenterX)
			assert.Equal(t, tt.size/2, l.CenterY)
		})
	}
}

func TestComputePaddingDoesNotScale(t *testing.T) {
	t.Parallel()

	for _, scale := range []float64{0.5, 0.75, 1, 1.25, 1.5, 3} {
		l := geometry.Compute(512, scale)
		assert.InDelta(t, geometry.PlatePadding, l.PlateRadius-l.ClipRadius, 1e-9)
	}
}

func TestClampScale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, geometry.ClampScale(0))
	assert.Equal(t, 0.5, geometry.ClampScale(0.1))
	assert.Equal(t, 1.5, geometry.ClampScale(4))
	assert.Equal(t, 1.2, geometry.ClampScale(1.2))
	assert.Equal(t, 0.5, geometry.ClampScale(-1))
}
