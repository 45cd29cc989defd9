package engine

import "math"

// State is a snapshot of the five process variables at one simulated day.
// Transitions never mutate a State; Params.Step always returns a new one.
type State struct {
	Outcome    float64 `json:"y"` // Y, probability-like in (0,1)
	Norm       float64 `json:"n"` // N, smoothed trace of past outcomes
	Attention  float64 `json:"a"` // A, decaying engagement resource
	Constraint float64 `json:"c"` // C, structural lever
	Burden     float64 `json:"b"` // B, accumulated intervention cost
}

func (s State) IsValid() bool {
	for _, v := range [...]float64{s.Outcome, s.Norm, s.Attention, s.Constraint, s.Burden} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// History is an append-only sequence of states in day order. Index equals
// day index; callers receive it as a read-only view.
type History []State

// Last returns the most recent n states (fewer if the history is shorter).
func (h History) Last(n int) History {
	if n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}

func (h History) Outcomes() []float64 {
	vs := make([]float64, len(h))
	for i, s := range h {
		vs[i] = s.Outcome
	}
	return vs
}

func (h History) Constraints() []float64 {
	vs := make([]float64, len(h))
	for i, s := range h {
		vs[i] = s.Constraint
	}
	return vs
}
