// Package aprs implements the Adaptive Particle-Repulsion Sampler: the
// engine that seeds, relaxes, splits and kills particles so that they stay a
// well-distributed sampling of a deforming implicit surface.
package aprs

import "github.com/go-gl/mathgl/mgl32"

// Particle is one sample point on the surface. After any completed
// sub-step, Normal is unit length and aligned with the surface gradient,
// and Radius is strictly positive.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Normal   mgl32.Vec3
	Radius   float32
}

// Sample is the read-only view of a particle returned by Engine.Positions.
type Sample struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Radius   float32
}

// Arena is a fixed-capacity buffer of Particle records. Two arenas (front
// and back) are allocated once at construction time so that steady-state
// stepping never reallocates (each arena is one allocation of N records).
type Arena struct {
	particles []Particle
}

// NewArena preallocates a zero-valued arena of the given capacity.
func NewArena(capacity uint32) *Arena {
	return &Arena{particles: make([]Particle, capacity)}
}

func (a *Arena) Len() int { return len(a.particles) }

func (a *Arena) Get(i uint32) Particle { return a.particles[i] }

func (a *Arena) Set(i uint32, p Particle) { a.particles[i] = p }
