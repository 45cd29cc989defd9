package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/cfar/internal/engine"
)

// Mode is the control regime chosen for one day.
type Mode string

const (
	// ModePrecision: the error exceeds the resolution floor, so the
	// structural PID channel is active and the pulse channel is forced
	// to zero.
	ModePrecision Mode = "precision"

	// ModeFluctuation: the error is below the resolution floor. A
	// structural correction would be meaningless, so it is suppressed in
	// favor of the fluctuation channel.
	ModeFluctuation Mode = "fluctuation"
)

// Arm is one entry of the attention-arm catalog.
type Arm struct {
	Name string  `yaml:"name" json:"name"`
	Dose float64 `yaml:"dose" json:"dose"`
}

// Config is everything the loop needs beyond the controllers themselves.
type Config struct {
	Target          float64
	Horizon         int
	RewardThreshold float64
	NoiseStd        float64
	Seed            int64
	InitState       engine.State
	Arms            []Arm
	Dynamics        engine.Params
	Estimator       engine.EstimatorInputs
}

func (c Config) validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.Target < 0 || c.Target > 1 {
		return fmt.Errorf("target must be in [0,1], got %f", c.Target)
	}
	if c.NoiseStd < 0 {
		return fmt.Errorf("noise std must be non-negative, got %f", c.NoiseStd)
	}
	if len(c.Arms) == 0 {
		return errors.New("arm catalog is empty")
	}
	if !c.InitState.IsValid() {
		return errors.New("initial state contains NaN/Inf")
	}
	return nil
}

// StepRecord is the flat per-day record handed to persistence and
// reporting. Every field of the step is represented.
type StepRecord struct {
	Day        int               `json:"day"`
	State      engine.State      `json:"state"`
	Resolution engine.Resolution `json:"resolution"`
	Error      float64           `json:"error"`
	Mode       Mode              `json:"mode"`
	Attention  float64           `json:"u_attention"`
	Structural float64           `json:"u_structural"`
	Pulse      float64           `json:"u_pulse"`
	Arm        int               `json:"arm"`
	ArmName    string            `json:"arm_name"`
	Reward     float64           `json:"reward"`
}

// Summary is the run-level rollup.
type Summary struct {
	FinalState      engine.State `json:"final_state"`
	FinalError      float64      `json:"final_error"`
	DaysAtTarget    int          `json:"days_at_target"`
	MaxOutcome      float64      `json:"max_outcome"`
	ArmPulls        []int        `json:"arm_pulls"`
	PrecisionDays   int          `json:"precision_days"`
	FluctuationDays int          `json:"fluctuation_days"`
	Pulses          int          `json:"pulses"`
}

// Result is the full output of a run.
type Result struct {
	Records []StepRecord
	History engine.History
	Summary Summary
	Metrics map[string]float64
}

// Metric observes every step and reduces to one number for the result.
type Metric interface {
	Name() string
	Observe(rec StepRecord)
	Value() float64
	Reset()
}

// Observer is notified after each completed step.
type Observer interface {
	OnStep(rec StepRecord)
}

// Pulser is the fluctuation channel as the loop sees it.
type Pulser interface {
	Compute(s engine.State, day int, history engine.History) float64
}

// OutcomeObserver is implemented by pulse generators that learn from
// post-pulse outcome trends. The loop feeds it via type assertion.
type OutcomeObserver interface {
	ObserveOutcome(post engine.History)
}

// ErrDone is returned by Step once the horizon is exhausted.
var ErrDone = errors.New("sim: horizon exhausted")
