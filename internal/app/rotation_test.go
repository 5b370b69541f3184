package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/objview/pkg/math3d"
)

func TestRotationDecays(t *testing.T) {
	r := NewRotationState(60)
	r.ApplyImpulse(0, 0.5, 0)
	assert.True(t, r.Moving())

	for range 300 {
		r.Update()
	}
	assert.False(t, r.Moving())
	assert.Positive(t, r.Yaw.Position)
	assert.Zero(t, r.Pitch.Position)
}

func TestRotationMatrix(t *testing.T) {
	r := NewRotationState(60)
	assert.Equal(t, math3d.Identity(), r.Matrix())

	r.Yaw.Position = math.Pi / 2
	p := r.Matrix().MulVec3(math3d.V3(1, 0, 0))
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, -1, p.Z, 1e-9)

	r.Reset()
	assert.Equal(t, math3d.Identity(), r.Matrix())
}

func TestScreenToLightDir(t *testing.T) {
	v := NewViewState()
	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"center", 50, 50, math3d.V3(0, 0, 1)},
		{"right edge", 100, 50, math3d.V3(1, 0, 0)},
		{"top edge", 50, 0, math3d.V3(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ScreenToLightDir(tt.x, tt.y, 100, 100)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}
