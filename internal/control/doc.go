// Package control provides the three feedback channels of the cfar loop:
//
//   - [PID]: structural controller with a resolution-gated deadband
//   - [ThompsonBandit]: discrete attention-arm selector
//   - [Fluctuation]: gradient-engineering pulse generator, with an
//     [AdaptiveFluctuation] variant that tunes itself from pulse outcomes
//
// Each controller is a plain value with explicit internal state, owned and
// sequenced by the simulation loop. Nothing in this package is safe for
// concurrent use and nothing needs to be.
package control
