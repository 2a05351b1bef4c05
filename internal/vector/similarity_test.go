package vector

import (
	"math"
	"testing"
)

func TestSquaredL2(t *testing.T) {
	if got := SquaredL2([]float32{0, 0}, []float32{3, 4}); got != 25 {
		t.Errorf("SquaredL2 = %v, want 25", got)
	}
	if got := SquaredL2([]float32{1, 2}, []float32{1, 2}); got != 0 {
		t.Errorf("SquaredL2 of identical vectors = %v", got)
	}
}

func TestInnerProductAndNorm(t *testing.T) {
	if got := InnerProduct([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Errorf("InnerProduct = %v, want 32", got)
	}
	if got := InnerProduct([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("InnerProduct of mismatched lengths = %v", got)
	}
	if got := L2Norm([]float32{3, 4}); got != 5 {
		t.Errorf("L2Norm = %v, want 5", got)
	}
}

func TestVectorArithmetic(t *testing.T) {
	d := Sub([]float32{3, 5}, []float32{1, 2})
	if d[0] != 2 || d[1] != 3 {
		t.Errorf("Sub = %v", d)
	}
	acc := []float32{1, 1}
	AddScaled(acc, []float32{2, -1}, 0.5)
	if acc[0] != 2 || acc[1] != 0.5 {
		t.Errorf("AddScaled = %v", acc)
	}
	Scale(acc, 2)
	if acc[0] != 4 || acc[1] != 1 {
		t.Errorf("Scale = %v", acc)
	}
}

func TestNormalized(t *testing.T) {
	x := []float32{0, 3, 4}
	n := Normalized(x)
	if x[1] != 3 {
		t.Error("Normalized must not modify its input")
	}
	if math.Abs(L2Norm(n)-1) > 1e-6 {
		t.Errorf("norm = %v", L2Norm(n))
	}
	z := Normalized([]float32{0, 0})
	if !IsZero(z) {
		t.Errorf("zero vector should stay zero, got %v", z)
	}
	if IsZero([]float32{0, 1e-30}) {
		t.Error("IsZero on non-zero vector")
	}
}
