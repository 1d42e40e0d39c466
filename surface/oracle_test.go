package surface

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereOnSurface(t *testing.T) {
	s := Sphere{Radius: 1}
	p := mgl32.Vec3{1, 0, 0}
	assert.True(t, OnSurface(s, p, 1e-4))
	assert.False(t, OnSurface(s, mgl32.Vec3{0, 0, 0}, 1e-4))
}

func TestGradientPointsOutwardOnSphere(t *testing.T) {
	s := Sphere{Radius: 1}
	p := mgl32.Vec3{1, 0, 0}
	g := Gradient(s, p)
	require.Greater(t, g.Len(), float32(0))

	n := g.Normalize()
	// Gradient of |p|^2-1 at (1,0,0) should point along +X.
	assert.InDelta(t, 1.0, float64(n.X()), 0.05)
	assert.InDelta(t, 0.0, float64(n.Y()), 0.05)
	assert.InDelta(t, 0.0, float64(n.Z()), 0.05)
}

func TestTranslateShiftsSurface(t *testing.T) {
	base := Sphere{Radius: 1}
	moved := Translate{Child: base, Offset: mgl32.Vec3{5, 0, 0}}
	assert.InDelta(t, 0.0, float64(moved.Sample(mgl32.Vec3{6, 0, 0})), 1e-4)
}

func TestSmoothUnionCoversBothLobes(t *testing.T) {
	a := Sphere{Center: mgl32.Vec3{-1, 0, 0}, Radius: 1}
	b := Sphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 1}
	u := SmoothUnion{A: a, B: b, K: 0.5}

	assert.Less(t, u.Sample(mgl32.Vec3{-1, 0, 0}), float32(0))
	assert.Less(t, u.Sample(mgl32.Vec3{1, 0, 0}), float32(0))
	// Far from both lobes should be clearly outside.
	assert.Greater(t, u.Sample(mgl32.Vec3{0, 10, 0}), float32(0))
}

func TestEllipsoidOctants(t *testing.T) {
	e := Ellipsoid{Radii: mgl32.Vec3{3, 2, 1}}
	// At (3,2,1)/sqrt(3) each of x^2/9, y^2/4, z^2 is 1/3, so the point lies
	// on the surface in every octant its signs select.
	inv := float32(1 / math.Sqrt(3))
	for _, sign := range [][3]float32{{1, 1, 1}, {-1, 1, 1}, {1, -1, 1}, {1, 1, -1}} {
		p := mgl32.Vec3{3 * sign[0] * inv, 2 * sign[1] * inv, 1 * sign[2] * inv}
		assert.InDelta(t, 0.0, float64(e.Sample(p)), 1e-3)
	}
}

func TestScaleTracksShrinkingSphere(t *testing.T) {
	base := Sphere{Radius: 1}
	s := Scale{Child: base, Factor: 5}
	// At factor 5 the effective radius is 5; a point at distance 5 is on-surface.
	p := mgl32.Vec3{5, 0, 0}
	assert.InDelta(t, 0.0, float64(s.Sample(p)), 1e-2)
}

func TestNoiseIsDeterministicForSeed(t *testing.T) {
	a := NewNoise(mgl32.Vec3{}, 1, 0.2, 0.5, 42)
	b := NewNoise(mgl32.Vec3{}, 1, 0.2, 0.5, 42)
	p := mgl32.Vec3{0.3, 0.7, -0.2}
	assert.Equal(t, a.Sample(p), b.Sample(p))
}

func TestNoiseStaysNearBaseRadius(t *testing.T) {
	n := NewNoise(mgl32.Vec3{}, 2, 0.1, 1.0, 7)
	// Sample on the unperturbed sphere of radius 2: |f| should stay small
	// relative to the base radius since amplitude is small.
	p := mgl32.Vec3{2, 0, 0}
	assert.Less(t, math.Abs(float64(n.Sample(p))), 0.5)
}
