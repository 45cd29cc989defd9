package engine

import "math"

// Params holds the dynamics coefficients. All of them are configuration,
// not derived quantities.
type Params struct {
	Bias             float64 `yaml:"bias" json:"bias"`                           // β0
	NormWeight       float64 `yaml:"norm_weight" json:"norm_weight"`             // βN
	AttentionWeight  float64 `yaml:"attention_weight" json:"attention_weight"`   // βA
	ConstraintWeight float64 `yaml:"constraint_weight" json:"constraint_weight"` // βC
	BurdenWeight     float64 `yaml:"burden_weight" json:"burden_weight"`         // βB
	NormRate         float64 `yaml:"norm_rate" json:"norm_rate"`                 // η
	AttentionDecay   float64 `yaml:"attention_decay" json:"attention_decay"`     // ρ
	ConstraintDecay  float64 `yaml:"constraint_decay" json:"constraint_decay"`   // δC per day
	BurdenRate       float64 `yaml:"burden_rate" json:"burden_rate"`             // κ
}

// DefaultParams returns the reference coefficients.
func DefaultParams() Params {
	return Params{
		Bias:             -0.5,
		NormWeight:       3.0,
		AttentionWeight:  2.0,
		ConstraintWeight: 2.0,
		BurdenWeight:     1.5,
		NormRate:         0.2,
		AttentionDecay:   0.9,
		ConstraintDecay:  0.02,
		BurdenRate:       0.3,
	}
}

// Inputs are the per-day control signals fed into a dynamics step.
type Inputs struct {
	Attention    float64 // uA, dose from the selected arm; not bounded here
	Structural   float64 // uC, PID output (zero in fluctuation mode)
	Pulse        float64 // uF, fluctuation pulse (zero in precision mode)
	OutcomeSlope float64 // recent dY/dt, feeds gradient strength
	Noise        float64 // external disturbance on the outcome logit
}

// Cost weights for the three control channels. Structural change is the
// most expensive intervention, attention the cheapest.
const (
	costAttention  = 0.6
	costStructural = 1.0
	costPulse      = 0.4
)

// Cost is the weighted L1 intervention cost that drives burden.
func Cost(uA, uC, uF float64) float64 {
	return costAttention*math.Abs(uA) + costStructural*math.Abs(uC) + costPulse*math.Abs(uF)
}

// Gradient strength coefficients. BurdenCeiling is shared with the
// fluctuation controller's burden guard.
const (
	gradientBase  = 0.3
	attentionRef  = 0.8
	flatnessScale = 0.01
	constraintRef = 0.5
	BurdenCeiling = 0.8
)

// GradientStrength is the multiplier a fluctuation pulse applies to the
// outcome logit. It grows with attention surplus, trend flatness, and
// constraint weakness, and is suppressed entirely once burden reaches
// BurdenCeiling.
func GradientStrength(s State, outcomeSlope float64) float64 {
	surplus := math.Max(0, s.Attention-attentionRef)
	flatness := 1.0 / (1.0 + math.Abs(outcomeSlope)/flatnessScale)
	weakness := math.Max(0, constraintRef-s.Constraint)
	guard := math.Max(0, BurdenCeiling-s.Burden)
	return gradientBase + surplus*(1+flatness)*(1+weakness)*guard
}

// Step advances the state by one day. Deterministic given its inputs; the
// only randomness is whatever the caller folds into in.Noise.
func (p Params) Step(s State, in Inputs) State {
	logit := p.Bias +
		p.NormWeight*s.Norm +
		p.AttentionWeight*s.Attention +
		p.ConstraintWeight*s.Constraint -
		p.BurdenWeight*s.Burden +
		GradientStrength(s, in.OutcomeSlope)*in.Pulse +
		in.Noise
	y := sigmoid(logit)

	return State{
		Outcome:    y,
		Norm:       (1-p.NormRate)*s.Norm + p.NormRate*y,
		Attention:  p.AttentionDecay*s.Attention + in.Attention,
		Constraint: s.Constraint + in.Structural - p.ConstraintDecay,
		Burden:     (1-p.BurdenRate)*s.Burden + p.BurdenRate*Cost(in.Attention, in.Structural, in.Pulse),
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
