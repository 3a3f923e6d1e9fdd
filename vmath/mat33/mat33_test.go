package mat33

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/vmath/vec3"
)

func TestInverse(t *testing.T) {
	m := T{
		2, 0, 1,
		0, 3, 0,
		1, 0, 1,
	}

	got := MulMM(m, Inverse(m))
	if diff := cmp.Diff(got, Identity(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("m * Inverse(m) != I; diff (-got +want)\n%s", diff)
	}
}

func TestInverseOfPermutation(t *testing.T) {
	m := T{
		0, 1, 0,
		1, 0, 0,
		0, 0, 4,
	}

	got := Inverse(m)
	want := T{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0.25,
	}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Inverse; diff (-got +want)\n%s", diff)
	}
}

func TestMulMVAndTranspose(t *testing.T) {
	m := T{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}

	if got, want := MulMV(m, vec3.T{1, 0, 0}), (vec3.T{1, 4, 7}); got != want {
		t.Errorf("MulMV; got %v, want %v", got, want)
	}
	if got, want := MulMV(Transpose(m), vec3.T{1, 0, 0}), (vec3.T{1, 2, 3}); got != want {
		t.Errorf("MulMV(Transpose); got %v, want %v", got, want)
	}
}

func TestDeterminantAndCofactor(t *testing.T) {
	m := T{
		2, 0, 1,
		0, 3, 0,
		1, 0, 1,
	}

	if got, want := Determinant(m), 3.0; got != want {
		t.Errorf("Determinant; got %v, want %v", got, want)
	}

	// For any m, m * transpose(cofactor(m)) = det(m) * I.
	got := MulMM(m, Transpose(Cofactor(m)))
	want := T{3, 0, 0, 0, 3, 0, 0, 0, 3}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("m * adj(m); diff (-got +want)\n%s", diff)
	}
}
