package vectormath

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	t.Run("unit vector unchanged", func(t *testing.T) {
		v := []float32{1, 0, 0}
		NormalizeL2(v)

		if v[0] != 1 || v[1] != 0 || v[2] != 0 {
			t.Errorf("unit vector changed: got %v", v)
		}
	})

	t.Run("normalizes to unit length", func(t *testing.T) {
		vec := []float32{3, 4}
		NormalizeL2(vec)
		// 3-4-5 triangle => magnitude 5 => expected (0.6, 0.8)
		const tol = 1e-5
		if math.Abs(float64(vec[0])-0.6) > tol || math.Abs(float64(vec[1])-0.8) > tol {
			t.Errorf("expected (0.6, 0.8), got (%f, %f)", vec[0], vec[1])
		}

		mag := math.Sqrt(float64(vec[0]*vec[0] + vec[1]*vec[1]))
		if math.Abs(mag-1) > tol {
			t.Errorf("magnitude should be 1, got %f", mag)
		}
	})

	t.Run("zero vector does not panic", func(t *testing.T) {
		v := []float32{0, 0, 0}
		NormalizeL2(v)

		if v[0] != 0 || v[1] != 0 || v[2] != 0 {
			t.Errorf("zero vector should remain unchanged: got %v", v)
		}
	})
}

func TestCosine(t *testing.T) {
	const tol = 1e-9

	t.Run("self similarity is 1 for nonzero vector", func(t *testing.T) {
		a := []float32{0.3, -0.5, 0.8}
		if got := Cosine(a, a); math.Abs(got-1) > 1e-6 {
			t.Errorf("Cosine(a, a) = %f, want 1", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{-4, 5, 0.5}

		if Cosine(a, b) != Cosine(b, a) {
			t.Error("cosine similarity should be symmetric")
		}
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}

		if got := Cosine(a, b); math.Abs(got) > tol {
			t.Errorf("Cosine = %f, want 0", got)
		}
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		a := []float32{1, 1}
		b := []float32{-1, -1}

		if got := Cosine(a, b); math.Abs(got+1) > 1e-6 {
			t.Errorf("Cosine = %f, want -1", got)
		}
	})

	t.Run("zero norm scores 0, not NaN", func(t *testing.T) {
		a := []float32{0, 0, 0}
		b := []float32{1, 2, 3}

		got := Cosine(a, b)
		if got != 0 {
			t.Errorf("Cosine with zero vector = %f, want 0", got)
		}

		if math.IsNaN(got) {
			t.Error("Cosine with zero vector must not be NaN")
		}
	})
}
