package harness

import "time"

// Time is a per-frame resource tracking wall-clock delta, clamped so a
// debugger breakpoint or a slow first frame doesn't inject a huge Dt into
// the simulation stage.
type Time struct {
	Elapsed float64
	Dt      float64
	last    time.Time
}

const maxDt = 0.25

// Tick advances Time from the wall clock. First call yields Dt=0.
func (t *Time) Tick() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		return
	}
	dt := now.Sub(t.last).Seconds()
	if dt > maxDt {
		dt = maxDt
	}
	t.Dt = dt
	t.Elapsed += dt
	t.last = now
}

// TimeModule installs a zero-value Time resource.
type TimeModule struct{}

func (TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{})
}
