package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/cfar/internal/engine"
	"github.com/san-kum/cfar/internal/sim"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	m.Observe(sim.StepRecord{Attention: 1, Structural: 0, Pulse: 0})
	m.Observe(sim.StepRecord{Attention: 0, Structural: 1, Pulse: 0})

	want := (0.6 + 1.0) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should zero the metric")
	}
}

func TestTimeAboveTarget(t *testing.T) {
	m := NewTimeAboveTarget(0.7)

	for _, y := range []float64{0.5, 0.7, 0.8, 0.6} {
		m.Observe(sim.StepRecord{State: engine.State{Outcome: y}})
	}
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestPulseCount(t *testing.T) {
	m := NewPulseCount()

	// 0.005 is below the reporting threshold, the others above.
	for _, p := range []float64{0.005, 0.015, 0.2, 0} {
		m.Observe(sim.StepRecord{Pulse: p})
	}
	if m.Value() != 2 {
		t.Errorf("expected 2 reported pulses, got %f", m.Value())
	}
}

func TestModeShare(t *testing.T) {
	m := NewModeShare()

	m.Observe(sim.StepRecord{Mode: sim.ModePrecision})
	m.Observe(sim.StepRecord{Mode: sim.ModeFluctuation})
	m.Observe(sim.StepRecord{Mode: sim.ModeFluctuation})
	m.Observe(sim.StepRecord{Mode: sim.ModePrecision})

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestDefaults(t *testing.T) {
	ms := Defaults(0.9)
	if len(ms) != 4 {
		t.Fatalf("expected 4 default metrics, got %d", len(ms))
	}
	seen := make(map[string]bool)
	for _, m := range ms {
		seen[m.Name()] = true
	}
	for _, name := range []string{"control_effort", "time_above_target", "pulse_count", "fluctuation_share"} {
		if !seen[name] {
			t.Errorf("missing default metric %s", name)
		}
	}
}
