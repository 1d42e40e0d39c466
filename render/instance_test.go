package render

import (
	"testing"

	"github.com/gekko3d/sporeforge/aprs"
	"github.com/gekko3d/sporeforge/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackMatchesLiveCount(t *testing.T) {
	e := aprs.New(5000, surface.Sphere{Radius: 1}, aprs.WithSeed(1))
	require.NoError(t, e.Step(0.3))

	out := Pack(e, nil)
	assert.Equal(t, e.LiveCount(), len(out))
}

func TestPackParallelMatchesPack(t *testing.T) {
	e := aprs.New(5000, surface.Sphere{Radius: 1}, aprs.WithSeed(2))
	require.NoError(t, e.Step(0.3))

	serial := Pack(e, nil)
	parallel := PackParallel(e, 4)
	assert.Equal(t, len(serial), len(parallel))
}

func TestPackReusesBackingArray(t *testing.T) {
	e := aprs.New(5000, surface.Sphere{Radius: 1}, aprs.WithSeed(3))
	require.NoError(t, e.Step(0.3))

	buf := make([]ParticleInstance, 0, 10000)
	out := Pack(e, buf)
	assert.LessOrEqual(t, len(out), cap(buf))
	require.NotEmpty(t, out)
	assert.Same(t, &buf[:1][0], &out[0])
}
