package sim

import "testing"

func TestWeightedIndexAlwaysInRange(t *testing.T) {
	rng := NewRand(42)
	weights := []float64{0.2, 0.5, 0.3}

	for i := 0; i < 10000; i++ {
		idx := weightedIndex(rng, weights)
		if idx < 0 || idx >= len(weights) {
			t.Fatalf("weightedIndex returned %d, want [0,%d)", idx, len(weights))
		}
	}
}

func TestWeightedIndexNegativeWeightsClampToZero(t *testing.T) {
	rng := NewRand(7)
	weights := []float64{-1.0, 0.5, -0.2}

	for i := 0; i < 1000; i++ {
		idx := weightedIndex(rng, weights)
		if idx == 0 || idx == 2 {
			t.Fatalf("drew index %d with non-positive weight", idx)
		}
	}
}

func TestWeightedIndexZeroTotalReturnsLast(t *testing.T) {
	rng := NewRand(1)
	weights := []float64{0, 0, 0}

	if idx := weightedIndex(rng, weights); idx != 2 {
		t.Errorf("expected last index 2 on zero total, got %d", idx)
	}
}

func TestWeightedIndexRespectsWeights(t *testing.T) {
	rng := NewRand(99)
	weights := []float64{0.9, 0.1}

	counts := [2]int{}
	n := 20000
	for i := 0; i < n; i++ {
		counts[weightedIndex(rng, weights)]++
	}

	// The heavy item should dominate; allow generous statistical slack.
	if counts[0] < n*8/10 {
		t.Errorf("expected first item to win ~90%% of draws, got %d/%d", counts[0], n)
	}
}

func TestNewRandDeterministic(t *testing.T) {
	a := NewRand(1234)
	b := NewRand(1234)

	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed should produce identical sequences")
		}
	}
}

func TestClampHelpers(t *testing.T) {
	if got := clamp01(-0.5); got != 0 {
		t.Errorf("clamp01(-0.5) = %v, want 0", got)
	}
	if got := clamp01(1.5); got != 1 {
		t.Errorf("clamp01(1.5) = %v, want 1", got)
	}
	if got := clamp(0.5, 0.85, 1.15); got != 0.85 {
		t.Errorf("clamp(0.5, 0.85, 1.15) = %v, want 0.85", got)
	}
}
