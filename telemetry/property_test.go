package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/dpd/sim"
)

func TestPropertyWriterWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "properties.csv")

	w, err := NewPropertyWriter(path)
	if err != nil {
		t.Fatalf("NewPropertyWriter: %v", err)
	}
	if err := w.WriteProperty(sim.PropertyRecord{Step: 1, Ukin: 1.5, Temperature: 0.9}); err != nil {
		t.Fatalf("WriteProperty: %v", err)
	}
	if err := w.WriteProperty(sim.PropertyRecord{Step: 2, Ukin: 1.6, Temperature: 1.0}); err != nil {
		t.Fatalf("WriteProperty: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 1 header + 2 rows, got %d lines: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "step") {
		t.Errorf("expected header row to contain \"step\", got %q", lines[0])
	}
}

func TestNewPropertyWriterFailsOnUnwritableDir(t *testing.T) {
	if _, err := NewPropertyWriter("/nonexistent-dir/properties.csv"); err == nil {
		t.Errorf("expected error creating file in nonexistent directory")
	}
}
