package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/cfar/internal/engine"
	"github.com/san-kum/cfar/internal/sim"
)

func sampleRecords(n int) []sim.StepRecord {
	recs := make([]sim.StepRecord, n)
	for i := range recs {
		mode := sim.ModePrecision
		if i%2 == 1 {
			mode = sim.ModeFluctuation
		}
		recs[i] = sim.StepRecord{
			Day:   i,
			State: engine.State{Outcome: 0.4 + 0.01*float64(i), Norm: 0.5, Attention: 0.5, Constraint: 0.4, Burden: 0.2},
			Mode:  mode,
		}
	}
	return recs
}

func TestPlotRun(t *testing.T) {
	out := PlotRun(sampleRecords(20))

	for _, caption := range []string{"outcome Y", "norm N", "attention A", "constraint C", "burden B", "mode per day"} {
		if !strings.Contains(out, caption) {
			t.Errorf("plot missing %q", caption)
		}
	}
}

func TestPlotRunEmpty(t *testing.T) {
	if out := PlotRun(nil); out != "no data to plot" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestModeRibbon(t *testing.T) {
	recs := sampleRecords(4)
	recs[3].Pulse = 0.05

	out := modeRibbon(recs)
	if !strings.Contains(out, ".~.!") {
		t.Errorf("unexpected ribbon:\n%s", out)
	}
}

func TestFormatSummary(t *testing.T) {
	sum := sim.Summary{
		FinalState:      engine.State{Outcome: 0.87},
		FinalError:      0.03,
		MaxOutcome:      0.91,
		DaysAtTarget:    12,
		PrecisionDays:   80,
		FluctuationDays: 40,
		Pulses:          3,
		ArmPulls:        []int{50, 70},
	}

	out := FormatSummary(sum, []string{"sms_nudge", "poster_refresh"})
	for _, want := range []string{"0.870", "sms_nudge", "poster_refresh", "3 pulses", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
