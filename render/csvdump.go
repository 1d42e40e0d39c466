package render

import (
	"os"

	"github.com/gekko3d/sporeforge/aprs"
	"github.com/gocarina/gocsv"
)

// csvRow is one particle snapshot row. Exported fields + csv tags are what
// gocsv's reflection-based marshaler requires.
type csvRow struct {
	X      float32 `csv:"x"`
	Y      float32 `csv:"y"`
	Z      float32 `csv:"z"`
	Nx     float32 `csv:"nx"`
	Ny     float32 `csv:"ny"`
	Nz     float32 `csv:"nz"`
	Radius float32 `csv:"radius"`
}

// DumpCSV writes the engine's current particle snapshot to path. This is
// offline debug tooling only; the engine itself has no file format.
func DumpCSV(path string, engine *aprs.Engine) error {
	rows := make([]csvRow, 0, engine.LiveCount())
	for s := range engine.Positions() {
		rows = append(rows, csvRow{
			X: s.Position.X(), Y: s.Position.Y(), Z: s.Position.Z(),
			Nx: s.Normal.X(), Ny: s.Normal.Y(), Nz: s.Normal.Z(),
			Radius: s.Radius,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}
