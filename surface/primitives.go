package surface

import "github.com/go-gl/mathgl/mgl32"

// Sphere is the implicit field |p-center|^2 - radius^2.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func (s Sphere) Sample(p mgl32.Vec3) float32 {
	d := p.Sub(s.Center)
	r := s.Radius
	return d.Dot(d) - r*r
}

// Ellipsoid is the implicit field x^2/a^2 + y^2/b^2 + z^2/c^2 - 1.
type Ellipsoid struct {
	Center  mgl32.Vec3
	Radii   mgl32.Vec3 // a, b, c
}

func (e Ellipsoid) Sample(p mgl32.Vec3) float32 {
	d := p.Sub(e.Center)
	ax, ay, az := e.Radii.X(), e.Radii.Y(), e.Radii.Z()
	return d.X()*d.X()/(ax*ax) + d.Y()*d.Y()/(ay*ay) + d.Z()*d.Z()/(az*az) - 1
}

// Translate wraps a child oracle, evaluating it in a frame offset by Offset.
// A time-varying Offset lets the caller animate the surface between engine
// steps; the oracle itself never advances its own animation.
type Translate struct {
	Child  Oracle
	Offset mgl32.Vec3
}

func (t Translate) Sample(p mgl32.Vec3) float32 {
	return t.Child.Sample(p.Sub(t.Offset))
}

// SmoothUnion blends two fields with a polynomial smooth-min, after Inigo
// Quilez's smin formulation. K controls blend width; K=0 degenerates to a
// hard min.
type SmoothUnion struct {
	A, B Oracle
	K    float32
}

func (u SmoothUnion) Sample(p mgl32.Vec3) float32 {
	a := u.A.Sample(p)
	b := u.B.Sample(p)
	if u.K <= 0 {
		return min32(a, b)
	}
	h := clamp01(0.5 + 0.5*(b-a)/u.K)
	return lerp32(b, a, h) - u.K*h*(1-h)
}

// Scale wraps a child oracle whose implicit radius is scaled by Factor,
// which the caller may mutate between steps to animate a shrinking or
// growing surface.
type Scale struct {
	Child  Oracle
	Factor float32
}

func (s Scale) Sample(p mgl32.Vec3) float32 {
	if s.Factor == 0 {
		s.Factor = 1
	}
	return s.Child.Sample(p.Mul(1 / s.Factor)) * s.Factor * s.Factor
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func lerp32(a, b, t float32) float32 { return a + (b-a)*t }
