// Package engine holds the process model at the center of cfar: the
// five-variable system state, the single-day dynamics update, and the
// resolution estimator that derives the minimum resolvable outcome
// change from instrumentation inputs.
//
// Everything in this package is a pure function or an immutable value.
// Controller state lives in [github.com/san-kum/cfar/internal/control];
// sequencing lives in [github.com/san-kum/cfar/internal/sim].
package engine
