// Package render bridges an aprs.Engine's particle stream to GPU-ready
// instance buffers. The boundary is one-directional and read-only: render
// never calls back into the engine.
package render

import (
	"runtime"
	"sync"

	"github.com/gekko3d/sporeforge/aprs"
)

// ParticleInstance matches the per-instance vertex layout an instanced
// impostor-sphere draw expects: world position, repulsion radius doubling
// as billboard size, and the surface normal for shading.
type ParticleInstance struct {
	Pos    [3]float32
	Size   float32
	Normal [3]float32
	_      float32 // pad to 32 bytes for a vec4-aligned WGSL layout
}

var instBufPool = sync.Pool{
	New: func() any {
		b := make([]ParticleInstance, 0, 1024)
		return &b
	},
}

// Pack drains engine's current live particles into instance records,
// appending into out[:0] so that passing the previous frame's slice back in
// reuses its backing array and steady-state frames allocate nothing.
func Pack(engine *aprs.Engine, out []ParticleInstance) []ParticleInstance {
	out = out[:0]
	for s := range engine.Positions() {
		out = append(out, ParticleInstance{
			Pos:    [3]float32{s.Position.X(), s.Position.Y(), s.Position.Z()},
			Size:   s.Radius,
			Normal: [3]float32{s.Normal.X(), s.Normal.Y(), s.Normal.Z()},
		})
	}
	return out
}

// PackParallel shards the live-set across a bounded worker pool and merges
// the results, for the case where LiveCount is large enough that packing
// becomes a measurable fraction of the frame budget. Semantically
// equivalent to Pack; the per-worker order of the merged slice is
// unspecified (the caller only needs the full set for drawing, not a
// stable order).
func PackParallel(engine *aprs.Engine, workers int) []ParticleInstance {
	var snapshot []aprs.Sample
	for s := range engine.Positions() {
		snapshot = append(snapshot, s)
	}
	if len(snapshot) == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > 8 {
		workers = 8
	}
	if workers > len(snapshot) {
		workers = len(snapshot)
	}

	chunk := (len(snapshot) + workers - 1) / workers
	var wg sync.WaitGroup
	results := make([][]ParticleInstance, workers)

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(snapshot) {
			break
		}
		if end > len(snapshot) {
			end = len(snapshot)
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			bufPtr := instBufPool.Get().(*[]ParticleInstance)
			buf := (*bufPtr)[:0]
			for _, s := range snapshot[start:end] {
				buf = append(buf, ParticleInstance{
					Pos:    [3]float32{s.Position.X(), s.Position.Y(), s.Position.Z()},
					Size:   s.Radius,
					Normal: [3]float32{s.Normal.X(), s.Normal.Y(), s.Normal.Z()},
				})
			}
			results[w] = append([]ParticleInstance(nil), buf...)
			*bufPtr = buf[:0]
			instBufPool.Put(bufPtr)
		}(w, start, end)
	}
	wg.Wait()

	out := make([]ParticleInstance, 0, len(snapshot))
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
