package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorBasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseCellAssign)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhasePairPass)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}
	if _, ok := stats.PhaseAvg[PhaseCellAssign]; !ok {
		t.Error("expected cell_assign phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhasePairPass]; !ok {
		t.Error("expected pair_pass phase to be tracked")
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseKick)
		pc.EndStep()
	}
	stats := pc.Stats()
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration after window filled")
	}
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
}

func TestPerfCollectorPhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndStep()
	}
	stats := pc.Stats()
	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)
	stats := pc.Stats()
	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestWindowMeanVarianceEmptyIsZero(t *testing.T) {
	pc := NewPerfCollector(10)
	mean, variance := pc.WindowMeanVariance()
	if mean != 0 || variance != 0 {
		t.Errorf("expected zero mean/variance for empty window, got (%v, %v)", mean, variance)
	}
}

func TestWindowMeanVarianceAfterSamples(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartStep()
		time.Sleep(50 * time.Microsecond)
		pc.EndStep()
	}
	mean, _ := pc.WindowMeanVariance()
	if mean <= 0 {
		t.Errorf("expected positive mean step duration, got %v", mean)
	}
}
