package control

import "math"

// DefaultDamping is the output scale applied when the error derivative
// exceeds the hysteresis threshold. Tunable, no derivation behind it.
const DefaultDamping = 0.7

// PID is the structural controller. Its deadband is widened each call by
// the current resolution floor, so it never chases corrections the system
// cannot resolve.
type PID struct {
	Kp         float64
	Ki         float64
	Kd         float64
	Deadband   float64
	MaxStep    float64
	Hysteresis float64
	Damping    float64

	integral float64
	prevErr  float64
}

func NewPID(kp, ki, kd, deadband, maxStep, hysteresis float64) *PID {
	return &PID{
		Kp:         kp,
		Ki:         ki,
		Kd:         kd,
		Deadband:   deadband,
		MaxStep:    maxStep,
		Hysteresis: hysteresis,
		Damping:    DefaultDamping,
	}
}

// Compute returns the structural adjustment for the given error. Inside
// the effective deadband it returns 0 without touching internal state, so
// no windup accumulates while the controller is gated.
func (p *PID) Compute(err, resolutionFloor float64) float64 {
	band := math.Max(p.Deadband, resolutionFloor)
	if math.Abs(err) < band {
		return 0
	}

	p.integral += err
	d := err - p.prevErr
	p.prevErr = err

	u := p.Kp*err + p.Ki*p.integral + p.Kd*d

	// Soften direction flips.
	if math.Abs(d) > p.Hysteresis {
		u *= p.Damping
	}

	return math.Max(-p.MaxStep, math.Min(p.MaxStep, u))
}

// Reset zeroes the accumulator and previous error, leaving gains alone.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
}

func (p *PID) SetGains(kp, ki, kd float64) {
	p.Kp = kp
	p.Ki = ki
	p.Kd = kd
}
