package telemetry

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/dpd/sim"
)

// propertyRow is the flat, gocsv-tagged mirror of sim.PropertyRecord
// (grounded on the teacher's telemetry.OutputManager header-then-rows
// CSV pattern).
type propertyRow struct {
	Step              int64   `csv:"step"`
	UpotConservative  float64 `csv:"upot_conservative"`
	UpotBond          float64 `csv:"upot_bond"`
	UpotElectrostatic float64 `csv:"upot_electrostatic"`
	Ukin              float64 `csv:"ukin"`
	Temperature       float64 `csv:"temperature"`
	Pxx               float64 `csv:"pxx"`
	Pyy               float64 `csv:"pyy"`
	Pzz               float64 `csv:"pzz"`
}

// PropertyWriter implements sim.OutputWriter, appending one CSV row per
// WriteProperty call and writing the header on the first row.
type PropertyWriter struct {
	file          *os.File
	headerWritten bool
}

// NewPropertyWriter creates (truncating) path and returns a writer ready
// for WriteProperty calls.
func NewPropertyWriter(path string) (*PropertyWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating %s: %w", path, err)
	}
	return &PropertyWriter{file: f}, nil
}

// WriteProperty implements sim.OutputWriter.
func (w *PropertyWriter) WriteProperty(rec sim.PropertyRecord) error {
	row := []propertyRow{{
		Step:              rec.Step,
		UpotConservative:  rec.UpotConservative,
		UpotBond:          rec.UpotBond,
		UpotElectrostatic: rec.UpotElectrostatic,
		Ukin:              rec.Ukin,
		Temperature:       rec.Temperature,
		Pxx:               rec.Pxx,
		Pyy:               rec.Pyy,
		Pzz:               rec.Pzz,
	}}
	if !w.headerWritten {
		if err := gocsv.Marshal(row, w.file); err != nil {
			return fmt.Errorf("telemetry: writing property header+row: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(row, w.file); err != nil {
		return fmt.Errorf("telemetry: writing property row: %w", err)
	}
	return nil
}

// Close implements sim.OutputWriter.
func (w *PropertyWriter) Close() error {
	return w.file.Close()
}
