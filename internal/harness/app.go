package harness

// Stage names a point in the per-frame schedule a system runs at.
type Stage string

const (
	// StagePrelude runs once per frame before simulation: input polling,
	// window-event pumping, config hot-reload.
	StagePrelude Stage = "prelude"
	// StageSimulate advances the APRS engine.
	StageSimulate Stage = "simulate"
	// StageRender packs the live particle set and submits a frame.
	StageRender Stage = "render"
)

// System is one scheduled unit of per-frame work.
type System func(app *App) error

// Module installs resources and systems into an App under construction.
type Module interface {
	Install(app *App, cmd *Commands)
}

// App owns the resource set and the staged system schedule. It carries no
// ECS: the demo has one engine and one window, not a world of entities.
type App struct {
	resources []any
	stages    map[Stage][]System
	order     []Stage
}

// New builds an App from a list of modules, installing each in order.
func New(modules ...Module) *App {
	app := &App{
		stages: make(map[Stage][]System),
		order:  []Stage{StagePrelude, StageSimulate, StageRender},
	}
	cmd := &Commands{app: app}
	for _, m := range modules {
		m.Install(app, cmd)
	}
	return app
}

// Resource finds the first installed resource assignable to T, an interface
// or concrete type, and reports whether one was found.
func Resource[T any](app *App) (T, bool) {
	var zero T
	for _, r := range app.resources {
		if v, ok := r.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustResource panics if the resource isn't present; used during startup
// wiring where a missing resource is a programming error, not a runtime one.
func MustResource[T any](app *App) T {
	v, ok := Resource[T](app)
	if !ok {
		panic("harness: required resource not installed")
	}
	return v
}

// RunFrame executes every stage, in order, once.
func (app *App) RunFrame() error {
	for _, stage := range app.order {
		for _, sys := range app.stages[stage] {
			if err := sys(app); err != nil {
				return err
			}
		}
	}
	return nil
}

// Commands is the restricted handle Module.Install receives for mutating
// the App during construction, keeping build-time wiring separate from the
// per-frame System calls that run afterward.
type Commands struct {
	app *App
}

// AddResources appends resources to the App, later AddResources calls take
// precedence over earlier ones when Resource[T] is queried.
func (c *Commands) AddResources(resources ...any) {
	// Prepend so the most-recently-added resource of a given type is found
	// first by Resource[T]'s forward scan.
	c.app.resources = append(resources, c.app.resources...)
}

// AddSystem schedules sys to run every frame under stage.
func (c *Commands) AddSystem(stage Stage, sys System) {
	c.app.stages[stage] = append(c.app.stages[stage], sys)
}
