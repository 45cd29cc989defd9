package control

import (
	"math"

	"github.com/san-kum/cfar/internal/engine"
)

const (
	// FireThreshold is the smallest pulse magnitude that counts as an
	// actual fire: below it the controller returns 0 and the cooldown
	// clock is left alone.
	FireThreshold = 0.02

	// ReportThreshold is the smaller magnitude above which a pulse is
	// counted in run summaries. Distinct from FireThreshold on purpose:
	// one gates the cooldown, the other only affects reporting.
	ReportThreshold = 0.01

	// trendWindow / slopeWindow bound the history slice a trend is fit
	// over: the slope of the last slopeWindow points of the last
	// trendWindow days.
	trendWindow = 10
	slopeWindow = 5

	// minHistory is the number of states needed before any trend is
	// trusted at all.
	minHistory = 3

	// fireSentinel predates any simulation day, so a fresh controller is
	// immediately eligible.
	fireSentinel = -999
)

// Fluctuation generates bounded designed-disruption pulses when the
// structural channel is blocked by the resolution floor. It fires only on
// a detected attention trap and never twice within CooldownDays.
type Fluctuation struct {
	MaxPulse           float64
	CooldownDays       int
	AttentionThreshold float64
	StallThreshold     float64

	lastFire int
}

func NewFluctuation(maxPulse float64, cooldownDays int, attentionThreshold, stallThreshold float64) *Fluctuation {
	return &Fluctuation{
		MaxPulse:           maxPulse,
		CooldownDays:       cooldownDays,
		AttentionThreshold: attentionThreshold,
		StallThreshold:     stallThreshold,
		lastFire:           fireSentinel,
	}
}

// Compute returns the pulse magnitude for the given day, or 0 when the
// cooldown is active, the history is too short, no attention trap is
// present, or the computed magnitude is below FireThreshold.
func (f *Fluctuation) Compute(s engine.State, day int, history engine.History) float64 {
	if day-f.lastFire < f.CooldownDays {
		return 0
	}
	if len(history) < minHistory {
		return 0
	}

	recent := history.Last(trendWindow)
	ySlope := engine.SlopeWindow(recent.Outcomes(), slopeWindow)
	cSlope := engine.SlopeWindow(recent.Constraints(), slopeWindow)

	if !f.trapDetected(s, ySlope, cSlope) {
		return 0
	}

	g := engine.GradientStrength(s, ySlope)
	headroom := math.Min(1.0, s.Attention/f.AttentionThreshold)
	guard := math.Max(0, engine.BurdenCeiling-s.Burden)

	pulse := math.Min(f.MaxPulse, 0.5*g*headroom*guard)
	if pulse <= FireThreshold {
		return 0
	}

	f.lastFire = day
	return pulse
}

// trapDetected checks the attention trap: attention strictly above
// threshold, outcome progress stalled, and constraint either declining or
// already weak. All three must hold.
func (f *Fluctuation) trapDetected(s engine.State, ySlope, cSlope float64) bool {
	highAttention := s.Attention > f.AttentionThreshold
	stalled := math.Abs(ySlope) < f.StallThreshold
	decliningStructure := cSlope < -0.01 || s.Constraint < 0.1
	return highAttention && stalled && decliningStructure
}

// Status reports the cooldown clock as of the given day.
type Status struct {
	LastFireDay       int  `json:"last_fire_day"`
	DaysSinceFire     int  `json:"days_since_fire"`
	CooldownRemaining int  `json:"cooldown_remaining"`
	ReadyToFire       bool `json:"ready_to_fire"`
}

func (f *Fluctuation) Status(day int) Status {
	since := day - f.lastFire
	remaining := f.CooldownDays - since
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		LastFireDay:       f.lastFire,
		DaysSinceFire:     since,
		CooldownRemaining: remaining,
		ReadyToFire:       since >= f.CooldownDays,
	}
}

// Adaptation bounds and rates for AdaptiveFluctuation.
const (
	adaptLookAheadDays = 5
	adaptWindow        = 3
	maxPulseCeiling    = 0.3
	maxPulseFloor      = 0.05
	cooldownFloor      = 3
	cooldownCeiling    = 14
)

// AdaptiveFluctuation nudges its own pulse ceiling and cooldown based on
// how the outcome trends after each pulse. Effective pulses earn a larger
// ceiling and shorter cooldown; counterproductive ones the reverse.
type AdaptiveFluctuation struct {
	Fluctuation
	AdaptationRate float64

	effectiveness []float64
}

func NewAdaptiveFluctuation(maxPulse float64, cooldownDays int, attentionThreshold, stallThreshold float64) *AdaptiveFluctuation {
	return &AdaptiveFluctuation{
		Fluctuation:    *NewFluctuation(maxPulse, cooldownDays, attentionThreshold, stallThreshold),
		AdaptationRate: 0.1,
	}
}

// ObserveOutcome scores the outcome trend over the look-ahead window after
// a pulse and, once enough scores accumulate, adapts MaxPulse and
// CooldownDays within their fixed bounds. Short windows are ignored.
func (a *AdaptiveFluctuation) ObserveOutcome(post engine.History) {
	if len(post) < adaptLookAheadDays {
		return
	}

	trend := engine.Slope(post[:adaptLookAheadDays].Outcomes())
	eff := trend
	if trend <= 0 {
		eff = -0.1
	}
	a.effectiveness = append(a.effectiveness, eff)

	if len(a.effectiveness) < adaptWindow {
		return
	}
	recent := a.effectiveness[len(a.effectiveness)-adaptWindow:]
	sum := 0.0
	for _, v := range recent {
		sum += v
	}
	mean := sum / adaptWindow

	switch {
	case mean > 0.01:
		a.MaxPulse = math.Min(maxPulseCeiling, a.MaxPulse*(1+a.AdaptationRate))
		a.CooldownDays = max(cooldownFloor, int(float64(a.CooldownDays)*0.9))
	case mean < -0.005:
		a.MaxPulse = math.Max(maxPulseFloor, a.MaxPulse*(1-a.AdaptationRate))
		a.CooldownDays = min(cooldownCeiling, int(float64(a.CooldownDays)*1.1))
	}
}
