package config

import (
	"sort"

	"github.com/san-kum/cfar/internal/sim"
)

// Presets are ready-to-run scenario configurations.
var presets = map[string]func() *Config{
	// Neighborhood anti-littering campaign: the reference scenario. Good
	// instrumentation, weekly cadence, modest noise.
	"littering": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "littering"
		return cfg
	},

	// Residential speeding reduction: slower feedback, wider area, and a
	// strong habituation effect, so the resolution floor sits higher and
	// fluctuation mode dominates.
	"speeding": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "speeding"
		cfg.TargetY = 0.8
		cfg.HorizonDays = 180
		cfg.InitState = StateConfig{Y: 0.45, N: 0.5, A: 0.6, C: 0.4, B: 0.25}
		cfg.Estimator.FeedbackLatencyDays = 7.0
		cfg.Estimator.SpatialScaleKm = 3.0
		cfg.Estimator.HabituationRate = 0.08
		cfg.Fluctuation.Adaptive = true
		cfg.Arms = []sim.Arm{
			{Name: "speed_display", Dose: 0.12},
			{Name: "school_outreach", Dose: 0.08},
			{Name: "lane_markings", Dose: 0.05},
		}
		return cfg
	},

	// Office recycling drive: tight spatial scale and fast feedback give a
	// very low floor; precision mode carries most of the run.
	"recycling": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "recycling"
		cfg.TargetY = 0.85
		cfg.HorizonDays = 90
		cfg.InitState = StateConfig{Y: 0.5, N: 0.45, A: 0.4, C: 0.5, B: 0.15}
		cfg.Estimator.SensingFeatures = 12
		cfg.Estimator.ActuationChannels = 6
		cfg.Estimator.FeedbackLatencyDays = 0.5
		cfg.Estimator.CadenceDays = 2.0
		cfg.Estimator.SpatialScaleKm = 0.2
		cfg.Arms = []sim.Arm{
			{Name: "bin_labels", Dose: 0.08},
			{Name: "team_scoreboard", Dose: 0.12},
		}
		return cfg
	},
}

// GetPreset returns a named preset, or nil when it does not exist.
func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	return fn()
}

// ListPresets returns the preset names in stable order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
