package aprs

import (
	"math/rand"
	"testing"

	"github.com/gekko3d/sporeforge/surface"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleInitialCoversUnitSphere(t *testing.T) {
	s := surface.Sphere{Radius: 1}
	rng := rand.New(rand.NewSource(1))

	points, capped, err := sampleInitial(s, 0.3, 10_000, rng)
	require.NoError(t, err)
	assert.False(t, capped)
	assert.Greater(t, len(points), 10)

	for _, p := range points {
		assert.True(t, surface.OnSurface(s, p, 1e-2))
	}
}

func TestSampleInitialRejectsTooCloseSiblings(t *testing.T) {
	s := surface.Sphere{Radius: 1}
	rng := rand.New(rand.NewSource(2))
	rho := float32(0.3)

	points, _, err := sampleInitial(s, rho, 10_000, rng)
	require.NoError(t, err)

	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			d := points[i].Sub(points[j]).Len()
			assert.GreaterOrEqual(t, d, float32(1.9*float64(rho))*0.9, "points %d and %d too close", i, j)
		}
	}
}

func TestSampleInitialHonoursCapacityCap(t *testing.T) {
	s := surface.Sphere{Radius: 1}
	rng := rand.New(rand.NewSource(3))

	points, capped, err := sampleInitial(s, 0.05, 50, rng)
	require.NoError(t, err)
	assert.True(t, capped)
	assert.LessOrEqual(t, len(points), 50)
}

func TestSampleInitialCoversBothLobesOfSmoothUnion(t *testing.T) {
	a := surface.Sphere{Center: mgl32.Vec3{-1, 0, 0}, Radius: 1}
	b := surface.Sphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 1}
	u := surface.SmoothUnion{A: a, B: b, K: 0.5}
	rng := rand.New(rand.NewSource(4))

	points, _, err := sampleInitial(u, 0.25, 20_000, rng)
	require.NoError(t, err)

	var sawLeft, sawRight bool
	for _, p := range points {
		if p.X() < -0.5 {
			sawLeft = true
		}
		if p.X() > 0.5 {
			sawRight = true
		}
	}
	assert.True(t, sawLeft, "expected coverage of the left lobe")
	assert.True(t, sawRight, "expected coverage of the right lobe")
}
