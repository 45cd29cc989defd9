package control

import "sort"

// Strategy is a named fluctuation preset: a pulse ceiling and cooldown
// tuned for a class of situations.
type Strategy struct {
	Description  string
	MaxPulse     float64
	CooldownDays int
	Contexts     []string
}

var strategies = map[string]Strategy{
	"novelty_rotation": {
		Description:  "rotate frames, visuals, and messaging approaches",
		MaxPulse:     0.15,
		CooldownDays: 5,
		Contexts:     []string{"high_habituation", "attention_saturation"},
	},
	"temporal_jitter": {
		Description:  "introduce micro-cadence changes and timing variations",
		MaxPulse:     0.10,
		CooldownDays: 3,
		Contexts:     []string{"routine_staleness", "predictability_trap"},
	},
	"context_refocusing": {
		Description:  "pair with fresh local stats or new anchor points",
		MaxPulse:     0.20,
		CooldownDays: 7,
		Contexts:     []string{"norm_saturation", "reference_drift"},
	},
	"micro_environment": {
		Description:  "small physical environment or affordance tweaks",
		MaxPulse:     0.25,
		CooldownDays: 10,
		Contexts:     []string{"structural_decay", "constraint_erosion"},
	},
	"attention_pulse": {
		Description:  "coordinated attention-constraint pulses for system reset",
		MaxPulse:     0.30,
		CooldownDays: 14,
		Contexts:     []string{"system_reset", "phase_transition"},
	},
}

// GetStrategy looks up a named strategy; ok is false for unknown names.
func GetStrategy(name string) (Strategy, bool) {
	s, ok := strategies[name]
	return s, ok
}

// StrategyNames lists the known strategies in stable order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overrides the controller's pulse ceiling and cooldown with the
// strategy's values.
func (f *Fluctuation) Apply(s Strategy) {
	f.MaxPulse = s.MaxPulse
	f.CooldownDays = s.CooldownDays
}
