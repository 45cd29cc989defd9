package control

import (
	"math"
	"math/rand"
)

// Bandit selects among a fixed menu of attention arms and learns from
// binary rewards. ThompsonBandit is the one full implementation; other
// policies (contextual, LinUCB) can slot in behind the same interface.
type Bandit interface {
	Select() int
	Update(arm int, reward float64)
}

// ThompsonBandit keeps a Beta(a,b) posterior per arm and picks the arm
// with the largest posterior draw. No forgetting: all pseudo-counts are
// retained, so it assumes a stationary reward process.
type ThompsonBandit struct {
	alpha []float64
	beta  []float64
	rng   *rand.Rand
}

func NewThompsonBandit(arms int, priorAlpha, priorBeta float64, rng *rand.Rand) *ThompsonBandit {
	b := &ThompsonBandit{
		alpha: make([]float64, arms),
		beta:  make([]float64, arms),
		rng:   rng,
	}
	for i := 0; i < arms; i++ {
		b.alpha[i] = priorAlpha
		b.beta[i] = priorBeta
	}
	return b
}

// Select draws one sample per arm and returns the index of the largest.
// Ties go to the first maximal index.
func (b *ThompsonBandit) Select() int {
	best := 0
	bestSample := -1.0
	for i := range b.alpha {
		s := sampleBeta(b.rng, b.alpha[i], b.beta[i])
		if s > bestSample {
			bestSample = s
			best = i
		}
	}
	return best
}

// Update folds a Bernoulli reward into the selected arm's posterior.
func (b *ThompsonBandit) Update(arm int, reward float64) {
	b.alpha[arm] += reward
	b.beta[arm] += 1 - reward
}

func (b *ThompsonBandit) Arms() int { return len(b.alpha) }

// Mean returns the posterior mean success rate of an arm.
func (b *ThompsonBandit) Mean(arm int) float64 {
	return b.alpha[arm] / (b.alpha[arm] + b.beta[arm])
}

func sampleBeta(rng *rand.Rand, a, b float64) float64 {
	x := sampleGamma(rng, a)
	y := sampleGamma(rng, b)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, 1) using Marsaglia-Tsang, with the
// usual boost for shape < 1.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / (3.0 * math.Sqrt(d))
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}
