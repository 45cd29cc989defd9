// Package config loads, validates, and materializes run configurations.
// Every tunable named by the engine, controllers, and loop appears here
// as an explicit typed field; validation happens once at load time, never
// per step.
package config

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cfar/internal/control"
	"github.com/san-kum/cfar/internal/engine"
	"github.com/san-kum/cfar/internal/sim"
)

const (
	DefaultTargetY         = 0.9
	DefaultHorizonDays     = 120
	DefaultRewardThreshold = 0.6
	DefaultNoiseStd        = 0.02
)

type Config struct {
	Name            string                 `yaml:"name"`
	TargetY         float64                `yaml:"target_y"`
	HorizonDays     int                    `yaml:"horizon_days"`
	RewardThreshold float64                `yaml:"reward_threshold"`
	NoiseStd        float64                `yaml:"noise_std"`
	Seed            int64                  `yaml:"seed"`
	InitState       StateConfig            `yaml:"init_state"`
	Dynamics        engine.Params          `yaml:"dynamics"`
	PID             PIDConfig              `yaml:"pid"`
	Bandit          BanditConfig           `yaml:"bandit"`
	Fluctuation     FluctuationConfig      `yaml:"fluctuation"`
	Arms            []sim.Arm              `yaml:"arms"`
	Estimator       engine.EstimatorInputs `yaml:"estimator"`
}

type StateConfig struct {
	Y float64 `yaml:"y"`
	N float64 `yaml:"n"`
	A float64 `yaml:"a"`
	C float64 `yaml:"c"`
	B float64 `yaml:"b"`
}

type PIDConfig struct {
	Kp         float64 `yaml:"kp"`
	Ki         float64 `yaml:"ki"`
	Kd         float64 `yaml:"kd"`
	Deadband   float64 `yaml:"deadband"`
	MaxStep    float64 `yaml:"max_step"`
	Hysteresis float64 `yaml:"hysteresis"`
	Damping    float64 `yaml:"damping"`
}

type BanditConfig struct {
	PriorAlpha float64 `yaml:"prior_alpha"`
	PriorBeta  float64 `yaml:"prior_beta"`
}

type FluctuationConfig struct {
	MaxPulse           float64 `yaml:"max_pulse"`
	CooldownDays       int     `yaml:"cooldown_days"`
	AttentionThreshold float64 `yaml:"attention_threshold"`
	StallThreshold     float64 `yaml:"stall_threshold"`
	Adaptive           bool    `yaml:"adaptive"`
	Strategy           string  `yaml:"strategy"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:            "default",
		TargetY:         DefaultTargetY,
		HorizonDays:     DefaultHorizonDays,
		RewardThreshold: DefaultRewardThreshold,
		NoiseStd:        DefaultNoiseStd,
		Seed:            42,
		InitState:       StateConfig{Y: 0.35, N: 0.4, A: 0.5, C: 0.3, B: 0.2},
		Dynamics:        engine.DefaultParams(),
		PID: PIDConfig{
			Kp:         0.8,
			Ki:         0.05,
			Kd:         0.2,
			Deadband:   0.005,
			MaxStep:    0.1,
			Hysteresis: 0.01,
			Damping:    control.DefaultDamping,
		},
		Bandit: BanditConfig{PriorAlpha: 1, PriorBeta: 1},
		Fluctuation: FluctuationConfig{
			MaxPulse:           0.2,
			CooldownDays:       7,
			AttentionThreshold: 0.8,
			StallThreshold:     0.01,
		},
		Arms: []sim.Arm{
			{Name: "sms_nudge", Dose: 0.10},
			{Name: "poster_refresh", Dose: 0.05},
			{Name: "local_stats", Dose: 0.15},
		},
		Estimator: engine.EstimatorInputs{
			SensingFeatures:     5,
			ActuationChannels:   3,
			FeedbackLatencyDays: 1.0,
			CadenceDays:         7.0,
			SpatialScaleKm:      1.0,
			ResidualStd:         0.05,
			OpsVariance:         0.03,
			HabituationRate:     0.02,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects a configuration the loop cannot run. These are the
// only pre-loop failures; nothing inside the loop can fail afterwards.
func (c *Config) Validate() error {
	if c.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be positive, got %d", c.HorizonDays)
	}
	if c.TargetY < 0 || c.TargetY > 1 {
		return fmt.Errorf("target_y must be in [0,1], got %f", c.TargetY)
	}
	if c.RewardThreshold < 0 || c.RewardThreshold > 1 {
		return fmt.Errorf("reward_threshold must be in [0,1], got %f", c.RewardThreshold)
	}
	if c.NoiseStd < 0 {
		return fmt.Errorf("noise_std must be non-negative, got %f", c.NoiseStd)
	}
	if len(c.Arms) == 0 {
		return fmt.Errorf("arms catalog must not be empty")
	}
	for i, arm := range c.Arms {
		if arm.Name == "" {
			return fmt.Errorf("arm %d has no name", i)
		}
	}
	if c.PID.MaxStep <= 0 {
		return fmt.Errorf("pid.max_step must be positive, got %f", c.PID.MaxStep)
	}
	if c.PID.Deadband < 0 {
		return fmt.Errorf("pid.deadband must be non-negative, got %f", c.PID.Deadband)
	}
	if c.Bandit.PriorAlpha <= 0 || c.Bandit.PriorBeta <= 0 {
		return fmt.Errorf("bandit priors must be positive, got alpha=%f beta=%f", c.Bandit.PriorAlpha, c.Bandit.PriorBeta)
	}
	if c.Fluctuation.MaxPulse <= 0 {
		return fmt.Errorf("fluctuation.max_pulse must be positive, got %f", c.Fluctuation.MaxPulse)
	}
	if c.Fluctuation.CooldownDays < 0 {
		return fmt.Errorf("fluctuation.cooldown_days must be non-negative, got %d", c.Fluctuation.CooldownDays)
	}
	if c.Fluctuation.AttentionThreshold <= 0 {
		return fmt.Errorf("fluctuation.attention_threshold must be positive, got %f", c.Fluctuation.AttentionThreshold)
	}
	if c.Fluctuation.StallThreshold <= 0 {
		return fmt.Errorf("fluctuation.stall_threshold must be positive, got %f", c.Fluctuation.StallThreshold)
	}
	if c.Fluctuation.Strategy != "" {
		if _, ok := control.GetStrategy(c.Fluctuation.Strategy); !ok {
			return fmt.Errorf("unknown fluctuation strategy %q (available: %v)", c.Fluctuation.Strategy, control.StrategyNames())
		}
	}
	if c.Estimator.SensingFeatures < 0 || c.Estimator.ActuationChannels < 0 {
		return fmt.Errorf("estimator channel counts must be non-negative")
	}
	if c.Estimator.FeedbackLatencyDays < 0 {
		return fmt.Errorf("estimator.feedback_latency_days must be non-negative, got %f", c.Estimator.FeedbackLatencyDays)
	}
	return nil
}

// SimConfig materializes the loop configuration.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Target:          c.TargetY,
		Horizon:         c.HorizonDays,
		RewardThreshold: c.RewardThreshold,
		NoiseStd:        c.NoiseStd,
		Seed:            c.Seed,
		InitState: engine.State{
			Outcome:    c.InitState.Y,
			Norm:       c.InitState.N,
			Attention:  c.InitState.A,
			Constraint: c.InitState.C,
			Burden:     c.InitState.B,
		},
		Arms:      c.Arms,
		Dynamics:  c.Dynamics,
		Estimator: c.Estimator,
	}
}

// PIDController builds the structural controller.
func (c *Config) PIDController() *control.PID {
	pid := control.NewPID(c.PID.Kp, c.PID.Ki, c.PID.Kd, c.PID.Deadband, c.PID.MaxStep, c.PID.Hysteresis)
	if c.PID.Damping > 0 {
		pid.Damping = c.PID.Damping
	}
	return pid
}

// BanditController builds the attention-arm selector over the configured
// catalog.
func (c *Config) BanditController(rng *rand.Rand) *control.ThompsonBandit {
	return control.NewThompsonBandit(len(c.Arms), c.Bandit.PriorAlpha, c.Bandit.PriorBeta, rng)
}

// FluctuationController builds the pulse generator, applying a named
// strategy preset and the adaptive variant when configured.
func (c *Config) FluctuationController() sim.Pulser {
	f := c.Fluctuation
	if f.Adaptive {
		a := control.NewAdaptiveFluctuation(f.MaxPulse, f.CooldownDays, f.AttentionThreshold, f.StallThreshold)
		if s, ok := control.GetStrategy(f.Strategy); ok {
			a.Apply(s)
		}
		return a
	}
	fl := control.NewFluctuation(f.MaxPulse, f.CooldownDays, f.AttentionThreshold, f.StallThreshold)
	if s, ok := control.GetStrategy(f.Strategy); ok {
		fl.Apply(s)
	}
	return fl
}
