package control

import (
	"math/rand"
	"testing"
)

func TestThompsonBanditUpdate(t *testing.T) {
	b := NewThompsonBandit(3, 1, 1, rand.New(rand.NewSource(1)))

	if b.Arms() != 3 {
		t.Fatalf("expected 3 arms, got %d", b.Arms())
	}
	if b.Mean(0) != 0.5 {
		t.Errorf("uniform prior mean should be 0.5, got %f", b.Mean(0))
	}

	before := b.Mean(1)
	for i := 0; i < 5; i++ {
		b.Update(1, 1)
		after := b.Mean(1)
		if after <= before {
			t.Fatalf("posterior mean should strictly increase on reward: %f then %f", before, after)
		}
		before = after
	}

	b.Update(2, 0)
	if b.Mean(2) >= 0.5 {
		t.Errorf("failure should lower posterior mean, got %f", b.Mean(2))
	}
}

func TestThompsonBanditConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := NewThompsonBandit(3, 1, 1, rng)

	// Arm 2 pays 0.9, the others 0.1.
	rates := []float64{0.1, 0.1, 0.9}
	for i := 0; i < 2000; i++ {
		arm := b.Select()
		reward := 0.0
		if rng.Float64() < rates[arm] {
			reward = 1.0
		}
		b.Update(arm, reward)
	}

	pulls := make([]int, 3)
	for i := 0; i < 500; i++ {
		pulls[b.Select()]++
	}
	if pulls[2] <= pulls[0] || pulls[2] <= pulls[1] {
		t.Errorf("expected arm 2 to dominate, got pulls %v", pulls)
	}
}

func TestThompsonBanditSelectRange(t *testing.T) {
	b := NewThompsonBandit(4, 1, 1, rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		arm := b.Select()
		if arm < 0 || arm >= 4 {
			t.Fatalf("arm index %d out of range", arm)
		}
	}
}

func TestSampleBetaRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	params := []struct{ a, b float64 }{{1, 1}, {0.5, 0.5}, {20, 2}, {2, 20}}

	for _, p := range params {
		for i := 0; i < 500; i++ {
			v := sampleBeta(rng, p.a, p.b)
			if v < 0 || v > 1 {
				t.Fatalf("beta(%f,%f) sample %f outside [0,1]", p.a, p.b, v)
			}
		}
	}
}

func TestSampleBetaMean(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	// Beta(8,2) has mean 0.8; a big sample average should land near it.
	sum := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		sum += sampleBeta(rng, 8, 2)
	}
	mean := sum / float64(n)
	if mean < 0.77 || mean > 0.83 {
		t.Errorf("expected sample mean near 0.8, got %f", mean)
	}
}
