package aprs

import (
	"math"
	"testing"

	"github.com/gekko3d/sporeforge/surface"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// Every live index is allocated, and every allocated index is live.
func TestInvariantLiveMatchesAllocated(t *testing.T) {
	e := New(2000, surface.Sphere{Radius: 1}, WithSeed(1))
	for i := 0; i < 20; i++ {
		require.NoError(t, e.Step(0.3))
	}

	live := map[uint32]bool{}
	for _, idx := range e.live {
		live[idx] = true
	}
	inUse := e.alloc.InUse()
	assert.Equal(t, int(inUse), len(live))
}

// Positions contains no duplicate indices; its length equals LiveCount.
func TestInvariantPositionsMatchLiveCount(t *testing.T) {
	e := New(2000, surface.Sphere{Radius: 1}, WithSeed(2))
	require.NoError(t, e.Step(0.3))

	count := 0
	for range e.Positions() {
		count++
	}
	assert.Equal(t, e.LiveCount(), count)
}

// Every normal stays close to unit length.
func TestInvariantNormalsAreUnit(t *testing.T) {
	e := New(2000, surface.Sphere{Radius: 1}, WithSeed(3))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Step(0.3))
	}
	for s := range e.Positions() {
		l := s.Normal.Len()
		assert.InDelta(t, 1.0, float64(l), 1e-2)
	}
}

// Replaying the same seed reproduces identical particle state.
func TestDeterministicReplay(t *testing.T) {
	run := func(seed int64) []Sample {
		e := New(2000, surface.Sphere{Radius: 1}, WithSeed(seed))
		for i := 0; i < 10; i++ {
			require.NoError(t, e.Step(0.3))
		}
		var out []Sample
		for s := range e.Positions() {
			out = append(out, s)
		}
		return out
	}

	a := run(42)
	b := run(42)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Position, b[i].Position)
		assert.Equal(t, a[i].Radius, b[i].Radius)
	}
}

// A unit sphere relaxed with a coarse target radius should converge to a
// modest, stable particle count, all sitting close to the unit radius.
func TestScenarioUnitSphere(t *testing.T) {
	e := New(100_000, surface.Sphere{Radius: 1}, WithSeed(7))
	for i := 0; i < 200; i++ {
		require.NoError(t, e.Step(0.5))
	}

	count := e.LiveCount()
	assert.GreaterOrEqual(t, count, 200)
	assert.LessOrEqual(t, count, 2000)

	var radii []float64
	for s := range e.Positions() {
		r := float64(s.Position.Len())
		assert.InDelta(t, 1.0, r, 0.2)
		radii = append(radii, r)
	}
	_ = stat.Mean(radii, nil)
}

// A two-sphere smooth union should end up covered on both lobes, not just
// the one the seed happened to land on.
func TestScenarioTwoSphereUnion(t *testing.T) {
	a := surface.Sphere{Center: mgl32.Vec3{-1, 0, 0}, Radius: 1}
	b := surface.Sphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 1}
	u := surface.SmoothUnion{A: a, B: b, K: 0.5}

	e := New(100_000, u, WithSeed(9))
	for i := 0; i < 50; i++ {
		require.NoError(t, e.Step(0.3))
	}

	var sawLeft, sawRight bool
	for s := range e.Positions() {
		if s.Position.X() < -0.5 {
			sawLeft = true
		}
		if s.Position.X() > 0.5 {
			sawRight = true
		}
	}
	assert.True(t, sawLeft)
	assert.True(t, sawRight)
}

// Demanding far more particles than the arena holds must clamp to capacity
// rather than grow the arena or crash.
func TestScenarioCapacityBound(t *testing.T) {
	e := New(1000, surface.Sphere{Radius: 1}, WithSeed(11))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Step(0.02)) // tiny rho demands far more than 1000 samples
	}
	assert.LessOrEqual(t, e.LiveCount(), 1000)
}

func TestStepFailsFastOnSeedingFailure(t *testing.T) {
	// A field with zero gradient everywhere can never be walked onto a
	// surface: Newton's step divides by ||grad||^2, which never converges.
	flat := surface.Func(func(mgl32.Vec3) float32 { return 1 })
	e := New(100, flat, WithSeed(1))

	err := e.Step(0.1)
	assert.ErrorIs(t, err, ErrSeedingFailed)
	assert.Equal(t, 0, e.LiveCount())
}

func TestZeroSubStepsLeavesStateUntouched(t *testing.T) {
	// No sub-step runs between Step calls, so no observable drift may occur
	// while the engine is only read.
	e := New(2000, surface.Sphere{Radius: 1}, WithSeed(5))
	require.NoError(t, e.Step(0.3))
	before := e.LiveCount()

	// Re-running the loop body zero times is equivalent to not calling
	// substep at all; assert the harness itself doesn't mutate state
	// outside of Step.
	after := e.LiveCount()
	assert.Equal(t, before, after)
}

func TestNaNGuardDoesNotPanic(t *testing.T) {
	nanField := surface.Func(func(p mgl32.Vec3) float32 { return float32(math.NaN()) })
	e := New(10, nanField, WithSeed(1))
	// Seeding itself will fail (Newton can never converge on a NaN field),
	// which must surface as ErrSeedingFailed rather than panicking.
	err := e.Step(0.1)
	assert.Error(t, err)
}
