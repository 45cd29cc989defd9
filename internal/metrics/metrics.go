// Package metrics provides per-run reductions over step records. Each
// metric implements [sim.Metric] and is attached to the loop by the
// caller.
package metrics

import (
	"github.com/san-kum/cfar/internal/control"
	"github.com/san-kum/cfar/internal/engine"
	"github.com/san-kum/cfar/internal/sim"
)

// ControlEffort averages the weighted intervention cost per day.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(rec sim.StepRecord) {
	c.sum += engine.Cost(rec.Attention, rec.Structural, rec.Pulse)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// TimeAboveTarget is the fraction of days the outcome met or beat the
// target.
type TimeAboveTarget struct {
	target  float64
	hits    int
	samples int
}

func NewTimeAboveTarget(target float64) *TimeAboveTarget {
	return &TimeAboveTarget{target: target}
}

func (t *TimeAboveTarget) Name() string { return "time_above_target" }

func (t *TimeAboveTarget) Observe(rec sim.StepRecord) {
	t.samples++
	if rec.State.Outcome >= t.target {
		t.hits++
	}
}

func (t *TimeAboveTarget) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.samples)
}

func (t *TimeAboveTarget) Reset() {
	t.hits = 0
	t.samples = 0
}

// PulseCount counts fluctuation pulses above the reporting threshold.
type PulseCount struct {
	count int
}

func NewPulseCount() *PulseCount { return &PulseCount{} }

func (p *PulseCount) Name() string { return "pulse_count" }

func (p *PulseCount) Observe(rec sim.StepRecord) {
	if rec.Pulse > control.ReportThreshold {
		p.count++
	}
}

func (p *PulseCount) Value() float64 { return float64(p.count) }

func (p *PulseCount) Reset() { p.count = 0 }

// ModeShare is the fraction of days spent in fluctuation mode.
type ModeShare struct {
	fluctuation int
	samples     int
}

func NewModeShare() *ModeShare { return &ModeShare{} }

func (m *ModeShare) Name() string { return "fluctuation_share" }

func (m *ModeShare) Observe(rec sim.StepRecord) {
	m.samples++
	if rec.Mode == sim.ModeFluctuation {
		m.fluctuation++
	}
}

func (m *ModeShare) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.fluctuation) / float64(m.samples)
}

func (m *ModeShare) Reset() {
	m.fluctuation = 0
	m.samples = 0
}

// Defaults is the standard metric set attached to a run.
func Defaults(target float64) []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewTimeAboveTarget(target),
		NewPulseCount(),
		NewModeShare(),
	}
}
