package aprs

import (
	"math"
	"math/rand"

	"github.com/gekko3d/sporeforge/surface"
	"github.com/go-gl/mathgl/mgl32"
)

// maxSeedIterations bounds the Newton search for an on-surface seed point.
const maxSeedIterations = 100

// maxRefineIterations bounds the per-sibling pull-then-push refinement.
const maxRefineIterations = 10

// sampleInitial produces the hexagonal-front covering of the oracle's
// surface starting from a random seed, after Levet et al. It returns the
// accepted positions (capped at maxCount, soft CapacityExceeded) and
// whether that cap was hit.
func sampleInitial(s surface.Oracle, rho float32, maxCount int, rng *rand.Rand) (points []mgl32.Vec3, capped bool, err error) {
	seed, ok := newtonSeed(s, rng)
	if !ok {
		return nil, false, ErrSeedingFailed
	}

	accepted := []mgl32.Vec3{seed}
	queue := []mgl32.Vec3{seed}

	index := NewSpatialIndex()
	rebuild := func() {
		buf := make([]Particle, len(accepted))
		live := make([]uint32, len(accepted))
		for i, p := range accepted {
			buf[i] = Particle{Position: p}
			live[i] = uint32(i)
		}
		index.Rebuild(buf, live)
	}
	rebuild()

	for len(queue) > 0 {
		if len(accepted) >= maxCount {
			capped = true
			break
		}

		parent := queue[0]
		queue = queue[1:]

		g := surface.Gradient(s, parent)
		if g.Len() < 1e-8 {
			continue // DegenerateGradient at this front point: drop it
		}
		n := g.Normalize()
		u, v := tangentFrame(n)

		for i := 0; i < 6 && len(accepted) < maxCount; i++ {
			theta := float64(i) * math.Pi / 3
			guess := parent.
				Add(u.Mul(2 * rho * float32(math.Cos(theta)))).
				Add(v.Mul(2 * rho * float32(math.Sin(theta))))

			p, ok := refineSibling(s, parent, guess, rho)
			if !ok {
				continue
			}

			neighbours := index.QueryRadius(p, 1.9*rho)
			if len(neighbours) > 0 {
				continue
			}

			accepted = append(accepted, p)
			queue = append(queue, p)
			rebuild()
		}
	}

	return accepted, capped, nil
}

func newtonSeed(s surface.Oracle, rng *rand.Rand) (mgl32.Vec3, bool) {
	p := mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
	for iter := 0; iter < maxSeedIterations; iter++ {
		if surface.OnSurface(s, p, surface.OnSurfaceEpsilon) {
			return p, true
		}
		g := surface.Gradient(s, p)
		gg := g.Dot(g)
		if gg < 1e-12 {
			return mgl32.Vec3{}, false
		}
		f := s.Sample(p)
		p = p.Sub(g.Mul(f / gg))
	}
	return p, surface.OnSurface(s, p, surface.OnSurfaceEpsilon)
}

// refineSibling pulls guess onto the surface, pushing it back out to at
// least 2*rho from parent whenever the pull step brings it too close.
func refineSibling(s surface.Oracle, parent, guess mgl32.Vec3, rho float32) (mgl32.Vec3, bool) {
	p := guess
	for iter := 0; iter < maxRefineIterations; iter++ {
		g := surface.Gradient(s, p)
		gg := g.Dot(g)
		if gg < 1e-12 {
			return mgl32.Vec3{}, false
		}
		f := s.Sample(p)
		p = p.Sub(g.Mul(f / gg))

		if dir := p.Sub(parent); dir.Len() < 2*rho {
			if dl := dir.Len(); dl > 1e-9 {
				p = parent.Add(dir.Mul(2 * rho / dl))
			}
		}

		if surface.OnSurface(s, p, surface.OnSurfaceEpsilon) {
			break
		}
	}
	return p, true
}

// tangentFrame returns an orthonormal (u,v) basis perpendicular to the
// unit vector n.
func tangentFrame(n mgl32.Vec3) (u, v mgl32.Vec3) {
	helper := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(n.Y())) > 0.9 {
		helper = mgl32.Vec3{1, 0, 0}
	}
	u = n.Cross(helper).Normalize()
	v = n.Cross(u).Normalize()
	return u, v
}
