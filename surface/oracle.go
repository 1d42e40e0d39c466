// Package surface defines the Surface Oracle contract the APRS engine samples
// against, plus a small set of composable implicit-surface primitives.
package surface

import "github.com/go-gl/mathgl/mgl32"

// Oracle is a pure, thread-safe scalar field f:R3->R. Implementations need not
// be true Euclidean distances, but f must be continuous and change sign
// across the surface, and its gradient must not vanish on the surface.
type Oracle interface {
	Sample(p mgl32.Vec3) float32
}

// Func adapts a plain function to the Oracle interface.
type Func func(p mgl32.Vec3) float32

func (f Func) Sample(p mgl32.Vec3) float32 { return f(p) }

// GradientStep is the forward-difference step h used by Gradient.
const GradientStep = 1e-4

// Gradient approximates the forward-difference gradient of S at p.
func Gradient(s Oracle, p mgl32.Vec3) mgl32.Vec3 {
	const h = GradientStep
	f0 := s.Sample(p)
	dx := s.Sample(p.Add(mgl32.Vec3{h, 0, 0})) - f0
	dy := s.Sample(p.Add(mgl32.Vec3{0, h, 0})) - f0
	dz := s.Sample(p.Add(mgl32.Vec3{0, 0, h})) - f0
	return mgl32.Vec3{dx / h, dy / h, dz / h}
}

// OnSurfaceEpsilon is the default tolerance for the on-surface predicate.
const OnSurfaceEpsilon = 2e-6

// OnSurface reports whether p lies on S's zero set within eps.
func OnSurface(s Oracle, p mgl32.Vec3, eps float32) bool {
	v := s.Sample(p)
	if v < 0 {
		v = -v
	}
	return v <= eps
}
