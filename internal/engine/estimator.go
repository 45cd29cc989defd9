package engine

import "math"

// Resolution bundles the derived resolution parameters for one day.
// All four are recomputed from EstimatorInputs every step and carry no
// state of their own.
type Resolution struct {
	Aperture      float64 `json:"aperture"`       // effective numerical aperture, [0,1]
	Wavelength    float64 `json:"wavelength"`     // effective wavelength, ~[0.1,2]
	ProcessFactor float64 `json:"process_factor"` // k1, [0.2,2.0]
	Floor         float64 `json:"floor"`          // minimum resolvable outcome change, [0.001,1.0]
}

// EstimatorInputs are the instrumentation-level quantities the resolution
// parameters are derived from. They come straight from configuration.
type EstimatorInputs struct {
	SensingFeatures     int     `yaml:"sensing_features" json:"sensing_features"`
	ActuationChannels   int     `yaml:"actuation_channels" json:"actuation_channels"`
	FeedbackLatencyDays float64 `yaml:"feedback_latency_days" json:"feedback_latency_days"`
	CadenceDays         float64 `yaml:"cadence_days" json:"cadence_days"`
	SpatialScaleKm      float64 `yaml:"spatial_scale_km" json:"spatial_scale_km"`
	ResidualStd         float64 `yaml:"residual_std" json:"residual_std"`
	OpsVariance         float64 `yaml:"ops_variance" json:"ops_variance"`
	HabituationRate     float64 `yaml:"habituation_rate" json:"habituation_rate"`
}

// apertureEpsilon is the cutoff below which the aperture is treated as
// numerically zero and the floor degrades to its maximum.
const apertureEpsilon = 1e-6

// ApertureEff estimates the effective numerical aperture in [0,1].
// More sensing features and actuation channels widen it; feedback latency
// narrows it.
func ApertureEff(sensingFeatures, actuationChannels int, feedbackLatencyDays float64) float64 {
	s := math.Tanh(0.15 * float64(sensingFeatures))
	a := math.Tanh(0.25 * float64(actuationChannels))
	l := 1.0 / (1.0 + 0.1*feedbackLatencyDays)
	return clamp(0.5*(s+a)*l, 0, 1)
}

// WavelengthEff estimates the effective wavelength from intervention
// cadence (7-day reference, floored at 1 day) and spatial scale (1 km
// reference, floored at 0.1 km).
func WavelengthEff(cadenceDays, spatialScaleKm float64) float64 {
	t := math.Max(cadenceDays, 1.0) / 7.0
	x := math.Max(spatialScaleKm, 0.1) / 1.0
	return 0.5 * (t + x)
}

// ProcessFactor estimates the process factor k1 in [0.2,2.0] from
// residual variability, operational variance, and habituation rate.
func ProcessFactor(residualStd, opsVariance, habituationRate float64) float64 {
	return clamp(0.3+0.7*math.Tanh(residualStd+opsVariance+2*habituationRate), 0.2, 2.0)
}

// ResolutionFloor is the minimum resolvable outcome change, k1·λ/NA
// clamped to [0.001,1.0]. A numerically zero aperture yields 1.0: nothing
// is resolvable and structural control is pointless.
func ResolutionFloor(aperture, wavelength, processFactor float64) float64 {
	if aperture <= apertureEpsilon {
		return 1.0
	}
	return clamp(processFactor*wavelength/aperture, 0.001, 1.0)
}

// Estimate derives all four resolution parameters from one set of inputs.
func Estimate(in EstimatorInputs) Resolution {
	na := ApertureEff(in.SensingFeatures, in.ActuationChannels, in.FeedbackLatencyDays)
	lam := WavelengthEff(in.CadenceDays, in.SpatialScaleKm)
	k1 := ProcessFactor(in.ResidualStd, in.OpsVariance, in.HabituationRate)
	return Resolution{
		Aperture:      na,
		Wavelength:    lam,
		ProcessFactor: k1,
		Floor:         ResolutionFloor(na, lam, k1),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
