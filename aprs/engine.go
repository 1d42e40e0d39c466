package aprs

import (
	"math"
	"math/rand"
	"time"

	"github.com/gekko3d/sporeforge/surface"
	"github.com/go-gl/mathgl/mgl32"
)

// Tuning constants for the relaxation model, kept as float32 to avoid
// repeated conversions in the hot per-particle loop.
const (
	Alpha                 float32 = 6.0   // repulsion amplitude
	Phi                   float32 = 15.0  // surface-feedback gain
	NeighbourMultiplier   float32 = 3.0   // ν: search radius = ν*r
	DeltaT                float32 = 0.03  // Δt
	SubStepsPerStep       int     = 4     // I
	EquilibriumSpeedCoeff float32 = 100.0 // v_e
	FissionEnergyFraction float32 = 0.2   // σ_f
	DeathRadiusFraction   float32 = 0.7   // σ_d
	MaxRadiusFraction     float32 = 1.2   // σ_r
)

// DesiredEnergy is E* = α*0.8.
const DesiredEnergy float32 = Alpha * 0.8

// DefaultCapacity is the arena size (N) used when no explicit capacity is
// configured.
const DefaultCapacity uint32 = 100_000

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSeed fixes the engine's RNG seed, used for seed search, the death draw
// and fission direction, so that two runs built with the same seed replay
// identically.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger attaches a logger for the engine's soft, non-fatal failures
// (capacity pressure, degenerate gradients, NaN guards).
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is the Relaxation Engine: front/back buffers, the live-set, the
// slot allocator, the spatial index, and simulation time.
type Engine struct {
	oracle   surface.Oracle
	capacity uint32

	front *Arena
	back  *Arena
	live  []uint32
	alloc *SlotAllocator
	index *SpatialIndex

	rng    *rand.Rand
	logger Logger

	t   float64
	rho float32

	seeded bool

	scratch []neighbourTriple
}

type neighbourTriple struct {
	j   uint32
	eij float32 // E(i<-j)
	eji float32 // E(j<-i)
}

// New preallocates both arenas and the spatial index for capacity
// particles, sampling against oracle.
func New(capacity uint32, oracle surface.Oracle, opts ...Option) *Engine {
	e := &Engine{
		oracle:   oracle,
		capacity: capacity,
		front:    NewArena(capacity),
		back:     NewArena(capacity),
		alloc:    NewSlotAllocator(capacity),
		index:    NewSpatialIndex(),
		logger:   NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// LiveCount returns the number of particles currently alive.
func (e *Engine) LiveCount() int { return len(e.live) }

// Positions returns a lazy, finite, restartable view over the live
// particles, reading from the front buffer.
func (e *Engine) Positions() func(yield func(Sample) bool) {
	return func(yield func(Sample) bool) {
		for _, idx := range e.live {
			p := e.front.Get(idx)
			if !yield(Sample{Position: p.Position, Normal: p.Normal, Radius: p.Radius}) {
				return
			}
		}
	}
}

// Step advances the engine by one macro-step (SubStepsPerStep sub-steps)
// against the desired particle radius rho. The only caller-visible failure
// is ErrSeedingFailed, returned without advancing when seeding fails; the
// engine stays unseeded, so the next call tries to seed again. Once seeded,
// Step always returns nil.
func (e *Engine) Step(rho float32) error {
	e.rho = rho

	if !e.seeded {
		if err := e.seed(rho); err != nil {
			return err
		}
		e.seeded = true
	}

	for i := 0; i < SubStepsPerStep; i++ {
		e.substep()
	}
	return nil
}

func (e *Engine) seed(rho float32) error {
	points, capped, err := sampleInitial(e.oracle, rho, int(e.capacity), e.rng)
	if err != nil {
		return err
	}
	if capped {
		e.logger.Warnf("aprs: %s: initial sampler reached capacity %d", KindCapacityExceeded, e.capacity)
	}

	for _, p := range points {
		idx, ok := e.alloc.Allocate()
		if !ok {
			e.logger.Warnf("aprs: %s: arena exhausted while seeding", KindCapacityExceeded)
			break
		}
		g := surface.Gradient(e.oracle, p)
		n := mgl32.Vec3{}
		if l := g.Len(); l > 1e-8 {
			n = g.Mul(1 / l)
		}
		particle := Particle{Position: p, Velocity: mgl32.Vec3{}, Normal: n, Radius: rho}
		e.front.Set(idx, particle)
		e.back.Set(idx, particle)
		e.live = append(e.live, idx)
	}

	e.rebuildIndex()
	return nil
}

func (e *Engine) rebuildIndex() {
	e.index.Rebuild(e.front.particles, e.live)
}

// substep runs one relaxation pass over every live particle (reverse
// iteration over a snapshot, so fission/death mutations never disturb
// indices still to be visited this pass), then swaps buffers, rebuilds the
// spatial index, and advances time.
func (e *Engine) substep() {
	snapshot := e.live
	n := len(snapshot)

	var deaths []uint32
	var newSlots []uint32

	for k := n - 1; k >= 0; k-- {
		idx := snapshot[k]
		p := e.front.Get(idx)

		died, fissioned, newSlot := e.updateParticle(idx, p)
		if died {
			deaths = append(deaths, idx)
			continue
		}
		if fissioned {
			newSlots = append(newSlots, newSlot)
			continue
		}
	}

	if len(deaths) > 0 {
		e.applyDeaths(deaths)
	}
	if len(newSlots) > 0 {
		e.live = append(e.live, newSlots...)
	}

	e.front, e.back = e.back, e.front
	e.rebuildIndex()
	e.t += float64(DeltaT)
}

func (e *Engine) applyDeaths(deaths []uint32) {
	dead := make(map[uint32]struct{}, len(deaths))
	for _, idx := range deaths {
		dead[idx] = struct{}{}
		e.alloc.Free(idx)
	}
	filtered := e.live[:0]
	for _, idx := range e.live {
		if _, isDead := dead[idx]; !isDead {
			filtered = append(filtered, idx)
		}
	}
	e.live = filtered
}

// updateParticle runs one sub-step of the relaxation model for a single
// particle. It returns died=true if the particle was removed, fissioned=true
// (with newSlot set) if it split into two children, or neither if it was
// relaxed normally. Unless the particle died, e.back.Set(idx, ...) has
// already been written with its resulting state (copy-through on skip); a
// particle that dies is not written to the back buffer.
func (e *Engine) updateParticle(idx uint32, p Particle) (died, fissioned bool, newSlot uint32) {
	neighbours := e.gatherNeighbours(idx, p)

	var eiSum float32
	for _, nb := range neighbours {
		eiSum += nb.eij
	}

	speed := p.Velocity.Len()
	if speed < EquilibriumSpeedCoeff*p.Radius {
		deathThreshold := DeathRadiusFraction * e.rho
		if p.Radius < deathThreshold && e.rng.Float32() > p.Radius/deathThreshold {
			return true, false, 0
		}

		shouldFission := p.Radius > MaxRadiusFraction*e.rho ||
			(eiSum > FissionEnergyFraction*DesiredEnergy && p.Radius > e.rho)
		if shouldFission {
			if slot, ok := e.fission(idx, p); ok {
				return false, true, slot
			}
			e.logger.Warnf("aprs: %s: fission skipped, arena full", KindCapacityExceeded)
			// fall through: the parent is not split and relaxes normally this sub-step
		}
	}

	e.relax(idx, p, neighbours, eiSum)
	return false, false, 0
}

func (e *Engine) gatherNeighbours(idx uint32, p Particle) []neighbourTriple {
	raw := e.index.QueryRadius(p.Position, NeighbourMultiplier*p.Radius)
	e.scratch = e.scratch[:0]
	for _, j := range raw {
		if j == idx {
			continue
		}
		other := e.front.Get(j)
		d2 := p.Position.Sub(other.Position).LenSqr()
		eij := Alpha * expf32(-d2/(4*p.Radius*p.Radius))
		eji := Alpha * expf32(-d2/(4*other.Radius*other.Radius))
		e.scratch = append(e.scratch, neighbourTriple{j: j, eij: eij, eji: eji})
	}
	return e.scratch
}

// fission replaces particle idx with two children of radius r/sqrt(2),
// displaced by a random unit vector scaled by r. The first child reuses
// idx; the second gets a freshly allocated slot.
func (e *Engine) fission(idx uint32, p Particle) (uint32, bool) {
	slot, ok := e.alloc.Allocate()
	if !ok {
		return 0, false
	}

	childRadius := p.Radius / float32(math.Sqrt2)
	d := randomUnitVector(e.rng).Mul(p.Radius)

	p1 := p.Position.Add(d)
	p2 := p.Position.Sub(d)
	child1 := Particle{Position: p1, Radius: childRadius, Normal: gradientNormal(e.oracle, p1)}
	child2 := Particle{Position: p2, Radius: childRadius, Normal: gradientNormal(e.oracle, p2)}

	e.back.Set(idx, child1)
	e.front.Set(slot, child2)
	e.back.Set(slot, child2)
	return slot, true
}

// relax runs the velocity/position/normal/radius update for a particle that
// is neither dying nor fissioning this sub-step, and writes the result into
// the back buffer. Non-finite results or a degenerate gradient freeze the
// particle for this sub-step (it retains its previous state).
func (e *Engine) relax(idx uint32, p Particle, neighbours []neighbourTriple, eiSum float32) {
	g := surface.Gradient(e.oracle, p.Position)
	gg := g.Dot(g)
	if gg < 1e-10 {
		e.logger.Debugf("aprs: %s at index %d", KindDegenerateGradient, idx)
		e.back.Set(idx, p)
		return
	}

	var deltaV mgl32.Vec3
	var d float32
	ri2 := p.Radius * p.Radius
	for _, nb := range neighbours {
		other := e.front.Get(nb.j)
		diff := p.Position.Sub(other.Position)
		oj2 := other.Radius * other.Radius
		if oj2 > 0 {
			deltaV = deltaV.Add(diff.Mul(nb.eij / ri2)).Add(diff.Mul(nb.eji / oj2))
		}
		d += diff.LenSqr() * nb.eij
	}
	deltaV = deltaV.Mul(ri2)

	f := e.oracle.Sample(p.Position)
	vPrime := deltaV.Sub(g.Mul((g.Dot(deltaV) + Phi*f) / gg))

	pPrime := p.Position.Add(vPrime.Mul(DeltaT))

	var ri3 float32
	if p.Radius > 0 {
		ri3 = p.Radius * p.Radius * p.Radius
	}
	var dStat float32
	if ri3 > 0 {
		dStat = d / ri3
	}
	rPrime := p.Radius + DeltaT*(-Phi*(eiSum-DesiredEnergy))/(dStat+10)

	if !finite3(vPrime) || !finite3(pPrime) || !isFinite32(rPrime) {
		e.logger.Warnf("aprs: %s at index %d", KindNaNEncountered, idx)
		e.back.Set(idx, p)
		return
	}

	nPrime := gradientNormal(e.oracle, pPrime)
	if nPrime == (mgl32.Vec3{}) {
		nPrime = p.Normal // degenerate gradient at the new position: keep old normal
	}

	if rPrime <= 0 {
		rPrime = p.Radius
	}

	e.back.Set(idx, Particle{Position: pPrime, Velocity: vPrime, Normal: nPrime, Radius: rPrime})
}

func gradientNormal(s surface.Oracle, p mgl32.Vec3) mgl32.Vec3 {
	g := surface.Gradient(s, p)
	if l := g.Len(); l > 1e-8 {
		return g.Mul(1 / l)
	}
	return mgl32.Vec3{}
}

func randomUnitVector(rng *rand.Rand) mgl32.Vec3 {
	z := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return mgl32.Vec3{
		float32(r * math.Cos(theta)),
		float32(r * math.Sin(theta)),
		float32(z),
	}
}

func finite3(v mgl32.Vec3) bool {
	return isFinite32(v.X()) && isFinite32(v.Y()) && isFinite32(v.Z())
}

func isFinite32(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func expf32(x float32) float32 {
	return float32(math.Exp(float64(x)))
}
