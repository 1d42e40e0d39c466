package surface

import (
	"github.com/go-gl/mathgl/mgl32"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Noise is an implicit field for a "lumpy" organic surface: a sphere whose
// radius is perturbed by 3D simplex noise. It supplements the purely
// algebraic primitives with the kind of surface a creature-creator tool
// would actually sample.
type Noise struct {
	Center    mgl32.Vec3
	Radius    float32
	Amplitude float32
	Frequency float32

	gen *opensimplex.Noise
}

// NewNoise builds a Noise surface seeded deterministically so that two
// engines constructed with the same seed sample identical fields.
func NewNoise(center mgl32.Vec3, radius, amplitude, frequency float32, seed int64) *Noise {
	return &Noise{
		Center:    center,
		Radius:    radius,
		Amplitude: amplitude,
		Frequency: frequency,
		gen:       opensimplex.New(seed),
	}
}

func (n *Noise) Sample(p mgl32.Vec3) float32 {
	d := p.Sub(n.Center)
	r := float32(d.Len())
	nz := n.gen.Eval3(
		float64(d.X()*n.Frequency),
		float64(d.Y()*n.Frequency),
		float64(d.Z()*n.Frequency),
	)
	target := n.Radius + n.Amplitude*float32(nz)
	return r - target
}
