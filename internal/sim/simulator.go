package sim

import (
	"context"
	"math"
	"math/rand"

	"github.com/san-kum/cfar/internal/control"
	"github.com/san-kum/cfar/internal/engine"
)

// pulseLookAhead is how many post-pulse days accumulate before an
// adaptive pulser is shown the outcome window.
const pulseLookAhead = 5

// Simulator owns the whole loop: estimator, mode switch, the three
// controllers, dynamics, and the step records. Strictly sequential; one
// day depends on the previous state.
type Simulator struct {
	cfg    Config
	pid    *control.PID
	bandit control.Bandit
	pulser Pulser

	metrics   []Metric
	observers []Observer

	rng       *rand.Rand
	state     engine.State
	history   engine.History
	day       int
	records   []StepRecord
	pulseDays []int
}

func New(cfg Config, pid *control.PID, bandit control.Bandit, pulser Pulser) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:     cfg,
		pid:     pid,
		bandit:  bandit,
		pulser:  pulser,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		state:   cfg.InitState,
		history: engine.History{cfg.InitState},
		records: make([]StepRecord, 0, cfg.Horizon),
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Day() int                { return s.day }
func (s *Simulator) Done() bool              { return s.day >= s.cfg.Horizon }
func (s *Simulator) State() engine.State     { return s.state }
func (s *Simulator) History() engine.History { return s.history }
func (s *Simulator) Records() []StepRecord   { return s.records }
func (s *Simulator) Target() float64         { return s.cfg.Target }
func (s *Simulator) Horizon() int            { return s.cfg.Horizon }

// Step advances the loop by one day and returns its record.
func (s *Simulator) Step() (StepRecord, error) {
	if s.Done() {
		return StepRecord{}, ErrDone
	}

	res := engine.Estimate(s.cfg.Estimator)
	err := s.cfg.Target - s.state.Outcome

	// Rayleigh gate: a correction smaller than the resolution floor is
	// unresolvable, so the structural channel yields to the pulse channel.
	mode := ModePrecision
	var uC, uF float64
	if math.Abs(err) < res.Floor {
		mode = ModeFluctuation
		uF = s.pulser.Compute(s.state, s.day, s.history)
	} else {
		uC = s.pid.Compute(err, res.Floor)
	}

	arm := s.bandit.Select()
	uA := s.cfg.Arms[arm].Dose

	ySlope := engine.SlopeWindow(s.history.Outcomes(), 5)
	next := s.cfg.Dynamics.Step(s.state, engine.Inputs{
		Attention:    uA,
		Structural:   uC,
		Pulse:        uF,
		OutcomeSlope: ySlope,
		Noise:        s.rng.NormFloat64() * s.cfg.NoiseStd,
	})

	reward := 0.0
	if next.Outcome > s.cfg.RewardThreshold {
		reward = 1.0
	}
	s.bandit.Update(arm, reward)

	rec := StepRecord{
		Day:        s.day,
		State:      next,
		Resolution: res,
		Error:      err,
		Mode:       mode,
		Attention:  uA,
		Structural: uC,
		Pulse:      uF,
		Arm:        arm,
		ArmName:    s.cfg.Arms[arm].Name,
		Reward:     reward,
	}

	if uF > control.FireThreshold {
		s.pulseDays = append(s.pulseDays, s.day)
	}

	s.state = next
	s.history = append(s.history, next)
	s.records = append(s.records, rec)
	s.day++

	s.feedAdaptivePulser()

	for _, m := range s.metrics {
		m.Observe(rec)
	}
	for _, o := range s.observers {
		o.OnStep(rec)
	}

	return rec, nil
}

// feedAdaptivePulser hands completed look-ahead windows to the pulser if
// it learns from outcomes. history[d+1:] are the states produced after
// the pulse on day d.
func (s *Simulator) feedAdaptivePulser() {
	obs, ok := s.pulser.(OutcomeObserver)
	if !ok {
		return
	}
	for len(s.pulseDays) > 0 {
		d := s.pulseDays[0]
		if len(s.history) <= d+pulseLookAhead {
			return
		}
		obs.ObserveOutcome(s.history[d+1:])
		s.pulseDays = s.pulseDays[1:]
	}
}

// Run executes the remaining horizon. The context is checked once per
// day; no other interruption contract exists.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	for !s.Done() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if _, err := s.Step(); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Records: s.records,
		History: s.history,
		Summary: s.Summary(),
		Metrics: make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// Summary rolls up the records seen so far.
func (s *Simulator) Summary() Summary {
	sum := Summary{
		FinalState: s.state,
		FinalError: s.cfg.Target - s.state.Outcome,
		ArmPulls:   make([]int, len(s.cfg.Arms)),
	}
	for _, rec := range s.records {
		if rec.State.Outcome >= s.cfg.Target {
			sum.DaysAtTarget++
		}
		if rec.State.Outcome > sum.MaxOutcome {
			sum.MaxOutcome = rec.State.Outcome
		}
		sum.ArmPulls[rec.Arm]++
		switch rec.Mode {
		case ModePrecision:
			sum.PrecisionDays++
		case ModeFluctuation:
			sum.FluctuationDays++
		}
		if rec.Pulse > control.ReportThreshold {
			sum.Pulses++
		}
	}
	return sum
}
