package mat44

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/vmath/vec4"
)

func TestInverse(t *testing.T) {
	m := T{
		2, 0, 0, 1,
		0, 0, 3, 2,
		0, 1, 0, 3,
		0, 0, 0, 1,
	}

	got := MulMM(m, Inverse(m))
	if diff := cmp.Diff(got, Identity(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("m * Inverse(m) != I; diff (-got +want)\n%s", diff)
	}
}

func TestMulMV(t *testing.T) {
	translate := T{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	}

	if got, want := MulMV(translate, vec4.T{1, 1, 1, 1}), (vec4.T{6, 7, 8, 1}); got != want {
		t.Errorf("MulMV(point); got %v, want %v", got, want)
	}
	if got, want := MulMV(translate, vec4.T{1, 1, 1, 0}), (vec4.T{1, 1, 1, 0}); got != want {
		t.Errorf("MulMV(direction); got %v, want %v", got, want)
	}
}
