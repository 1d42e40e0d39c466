// Command creaturecraft is the interactive demo harness: it seeds an APRS
// engine against a configurable implicit surface, steps it every frame, and
// draws the live particle set as point sprites in a GLFW/WebGPU window.
package main

import (
	"flag"
	"log"
	"unsafe"

	"github.com/gekko3d/sporeforge/aprs"
	"github.com/gekko3d/sporeforge/config"
	"github.com/gekko3d/sporeforge/internal/harness"
	"github.com/gekko3d/sporeforge/render"
	"github.com/gekko3d/sporeforge/surface"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file overriding defaults")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("creaturecraft: loading config: %v", err)
		}
		cfg = loaded
	}

	runID := uuid.New()

	app := harness.New(
		harness.LoggingModule{Prefix: "creaturecraft", Debug: cfg.DebugLogging},
		harness.TimeModule{},
		harness.WindowModule{
			Width:          cfg.WindowWidth,
			Height:         cfg.WindowHeight,
			Title:          cfg.WindowTitle,
			InstanceStride: uint64(unsafe.Sizeof(render.ParticleInstance{})),
		},
	)

	logger := app.Logger()
	logger.Infof("run %s: capacity=%d desired_radius=%.3f seed=%d", runID, cfg.Capacity, cfg.DesiredRadius, cfg.Seed)

	oracle := buildCreatureSurface()
	// harness.Logger's method set is a superset of aprs.Logger's, so the
	// same DefaultLogger backs both without an adapter.
	engine := aprs.New(cfg.Capacity, oracle, aprs.WithSeed(cfg.Seed), aprs.WithLogger(logger))

	win := harness.MustResource[*harness.Window](app)
	gpu := harness.MustResource[*harness.GPU](app)

	var instances []render.ParticleInstance
	runSimulationLoop(app, win, gpu, engine, &cfg, &instances)
}

// runSimulationLoop drives the prelude/simulate/render stages directly
// rather than through Commands-registered systems: the demo has exactly one
// engine and one window, so the indirection buys nothing here.
func runSimulationLoop(app *harness.App, win *harness.Window, gpu *harness.GPU, engine *aprs.Engine, cfg *config.Config, instances *[]render.ParticleInstance) {
	logger := app.Logger()
	frame := 0

	for !win.ShouldClose() {
		win.PollEvents()

		if err := engine.Step(cfg.DesiredRadius); err != nil {
			logger.Errorf("engine step failed: %v", err)
			break
		}

		*instances = render.Pack(engine, *instances)
		data := instancesToBytes(*instances)
		if err := gpu.DrawInstances(data, uint32(len(*instances))); err != nil {
			logger.Errorf("draw failed: %v", err)
			break
		}

		if frame%120 == 0 {
			logger.Infof("frame %d: live=%d", frame, engine.LiveCount())
		}
		if cfg.CSVDumpPath != "" && frame == 600 {
			if err := render.DumpCSV(cfg.CSVDumpPath, engine); err != nil {
				logger.Warnf("csv dump failed: %v", err)
			}
		}
		frame++
	}
}

func instancesToBytes(instances []render.ParticleInstance) []byte {
	if len(instances) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(render.ParticleInstance{}))
	return unsafe.Slice((*byte)(unsafe.Pointer(&instances[0])), len(instances)*size)
}

// buildCreatureSurface composes the demo's default implicit surface: two
// noise-perturbed lobes fused with a smooth union, a body and a head.
func buildCreatureSurface() surface.Oracle {
	body := surface.NewNoise(mgl32.Vec3{0, 0, 0}, 1.0, 0.08, 2.5, 7)
	head := surface.NewNoise(mgl32.Vec3{1.3, 0.4, 0}, 0.5, 0.05, 3.0, 11)
	return surface.SmoothUnion{A: body, B: head, K: 0.3}
}
