package control

import (
	"testing"

	"github.com/san-kum/cfar/internal/engine"
)

// trapHistory builds a history that satisfies all three trap conditions:
// attention pinned above threshold, flat outcome, declining constraint.
func trapHistory(days int) engine.History {
	h := make(engine.History, 0, days)
	for i := 0; i < days; i++ {
		h = append(h, engine.State{
			Outcome:    0.5,
			Norm:       0.5,
			Attention:  0.9,
			Constraint: 0.4 - 0.02*float64(i),
			Burden:     0.2,
		})
	}
	return h
}

func TestFluctuationFiresOnTrap(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)
	h := trapHistory(6)

	pulse := f.Compute(h[len(h)-1], 6, h)
	if pulse <= 0 {
		t.Fatal("expected a pulse on a clean attention trap")
	}
	if pulse > f.MaxPulse {
		t.Errorf("pulse %f exceeds ceiling %f", pulse, f.MaxPulse)
	}
	if pulse <= FireThreshold {
		t.Errorf("fired pulse %f should exceed the fire threshold", pulse)
	}
}

func TestFluctuationCooldown(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)
	h := trapHistory(30)

	fired := f.Compute(h[5], 5, h[:6])
	if fired <= 0 {
		t.Fatal("expected initial fire")
	}

	// Every day inside the cooldown must be silent, trap or not.
	for day := 6; day < 12; day++ {
		if p := f.Compute(h[day], day, h[:day+1]); p != 0 {
			t.Fatalf("fired at day %d inside cooldown", day)
		}
	}

	if p := f.Compute(h[12], 12, h[:13]); p <= 0 {
		t.Error("expected eligibility once cooldown expires")
	}
}

func TestFluctuationRequiresAttentionExcess(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)

	h := trapHistory(6)
	for i := range h {
		h[i].Attention = 0.8 // exactly at threshold: not an excess
	}
	if p := f.Compute(h[len(h)-1], 6, h); p != 0 {
		t.Errorf("fired without strict attention excess: %f", p)
	}

	for i := range h {
		h[i].Attention = 0.3
	}
	if p := f.Compute(h[len(h)-1], 6, h); p != 0 {
		t.Errorf("fired at low attention: %f", p)
	}
}

func TestFluctuationRequiresStall(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)

	// Outcome clearly improving: no trap even with declining constraint.
	h := trapHistory(6)
	for i := range h {
		h[i].Outcome = 0.3 + 0.05*float64(i)
	}
	if p := f.Compute(h[len(h)-1], 6, h); p != 0 {
		t.Errorf("fired while progress was being made: %f", p)
	}
}

func TestFluctuationRequiresWeakConstraint(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)

	// Constraint high and rising: structure is healthy, no trap.
	h := trapHistory(6)
	for i := range h {
		h[i].Constraint = 0.5 + 0.02*float64(i)
	}
	if p := f.Compute(h[len(h)-1], 6, h); p != 0 {
		t.Errorf("fired with healthy constraint: %f", p)
	}

	// But an already-weak constraint qualifies even when flat.
	for i := range h {
		h[i].Constraint = 0.05
	}
	if p := f.Compute(h[len(h)-1], 6, h); p <= 0 {
		t.Error("expected fire on weak constraint level")
	}
}

func TestFluctuationShortHistory(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)
	h := trapHistory(2)
	if p := f.Compute(h[len(h)-1], 2, h); p != 0 {
		t.Errorf("fired with insufficient history: %f", p)
	}
}

func TestFluctuationBurdenGuard(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)
	h := trapHistory(6)
	for i := range h {
		h[i].Burden = 0.85 // above the ceiling: guard is zero
	}
	if p := f.Compute(h[len(h)-1], 6, h); p != 0 {
		t.Errorf("fired under high burden: %f", p)
	}
}

func TestFluctuationStatus(t *testing.T) {
	f := NewFluctuation(0.2, 7, 0.8, 0.01)

	st := f.Status(0)
	if !st.ReadyToFire {
		t.Error("fresh controller should be ready to fire")
	}

	h := trapHistory(6)
	if f.Compute(h[len(h)-1], 6, h) <= 0 {
		t.Fatal("expected fire")
	}

	st = f.Status(8)
	if st.LastFireDay != 6 || st.DaysSinceFire != 2 || st.CooldownRemaining != 5 || st.ReadyToFire {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestAdaptiveFluctuationTightensOnFailure(t *testing.T) {
	a := NewAdaptiveFluctuation(0.2, 10, 0.8, 0.01)

	// Three declining post-pulse windows: ceiling shrinks, cooldown grows.
	post := make(engine.History, adaptLookAheadDays)
	for i := range post {
		post[i] = engine.State{Outcome: 0.6 - 0.05*float64(i)}
	}
	for i := 0; i < 3; i++ {
		a.ObserveOutcome(post)
	}

	if a.MaxPulse >= 0.2 {
		t.Errorf("expected smaller pulse ceiling, got %f", a.MaxPulse)
	}
	if a.CooldownDays <= 10 {
		t.Errorf("expected longer cooldown, got %d", a.CooldownDays)
	}
}

func TestAdaptiveFluctuationLoosensOnSuccess(t *testing.T) {
	a := NewAdaptiveFluctuation(0.2, 10, 0.8, 0.01)

	post := make(engine.History, adaptLookAheadDays)
	for i := range post {
		post[i] = engine.State{Outcome: 0.4 + 0.05*float64(i)}
	}
	for i := 0; i < 3; i++ {
		a.ObserveOutcome(post)
	}

	if a.MaxPulse <= 0.2 {
		t.Errorf("expected larger pulse ceiling, got %f", a.MaxPulse)
	}
	if a.CooldownDays >= 10 {
		t.Errorf("expected shorter cooldown, got %d", a.CooldownDays)
	}
}

func TestAdaptiveFluctuationBounds(t *testing.T) {
	a := NewAdaptiveFluctuation(0.2, 7, 0.8, 0.01)

	rising := make(engine.History, adaptLookAheadDays)
	for i := range rising {
		rising[i] = engine.State{Outcome: 0.1 + 0.1*float64(i)}
	}
	for i := 0; i < 50; i++ {
		a.ObserveOutcome(rising)
	}
	if a.MaxPulse > maxPulseCeiling || a.CooldownDays < cooldownFloor {
		t.Errorf("adaptation escaped bounds: pulse %f cooldown %d", a.MaxPulse, a.CooldownDays)
	}

	falling := make(engine.History, adaptLookAheadDays)
	for i := range falling {
		falling[i] = engine.State{Outcome: 0.9 - 0.1*float64(i)}
	}
	for i := 0; i < 50; i++ {
		a.ObserveOutcome(falling)
	}
	if a.MaxPulse < maxPulseFloor || a.CooldownDays > cooldownCeiling {
		t.Errorf("adaptation escaped bounds: pulse %f cooldown %d", a.MaxPulse, a.CooldownDays)
	}
}

func TestAdaptiveFluctuationShortWindow(t *testing.T) {
	a := NewAdaptiveFluctuation(0.2, 7, 0.8, 0.01)
	a.ObserveOutcome(trapHistory(2))
	if len(a.effectiveness) != 0 {
		t.Error("short windows should be ignored")
	}
}

func TestStrategies(t *testing.T) {
	names := StrategyNames()
	if len(names) != 5 {
		t.Fatalf("expected 5 strategies, got %d", len(names))
	}

	s, ok := GetStrategy("attention_pulse")
	if !ok {
		t.Fatal("attention_pulse should exist")
	}

	f := NewFluctuation(0.2, 7, 0.8, 0.01)
	f.Apply(s)
	if f.MaxPulse != s.MaxPulse || f.CooldownDays != s.CooldownDays {
		t.Error("apply should override pulse ceiling and cooldown")
	}

	if _, ok := GetStrategy("nope"); ok {
		t.Error("unknown strategy should not resolve")
	}
}
