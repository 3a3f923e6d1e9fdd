package contact

import (
	"math"
	"testing"

	"whitted/material"
	"whitted/vmath/vec3"
)

func TestNearest(t *testing.T) {
	cs := []Contact{
		{T: 6},
		{T: -1},
		{T: math.NaN()},
		{T: 0.005},
		{T: 4},
	}

	got, ok := Nearest(cs, 0.01)
	if !ok {
		t.Fatalf("Nearest found nothing")
	}
	if got.T != 4 {
		t.Errorf("Nearest; got t=%v, want 4", got.T)
	}

	if _, ok := Nearest([]Contact{{T: -3}, {T: 0.01}}, 0.01); ok {
		t.Errorf("Nearest should not accept t <= minT")
	}
	if _, ok := Nearest(nil, 0.01); ok {
		t.Errorf("Nearest of no contacts should report false")
	}
}

func TestClassifyRefraction(t *testing.T) {
	glass := material.Material{RefractiveIndex: 1.5}

	entering := Contact{N: vec3.T{0, 0, 1}, Mtl: glass}
	entering.ClassifyRefraction(vec3.T{0, 0, -3})
	if entering.FromIndex != 1 || entering.ToIndex != 1.5 || entering.Flip {
		t.Errorf("entering; got from=%v to=%v flip=%v, want 1, 1.5, false", entering.FromIndex, entering.ToIndex, entering.Flip)
	}

	exiting := Contact{N: vec3.T{0, 0, -1}, Mtl: glass}
	exiting.ClassifyRefraction(vec3.T{0, 0, -3})
	if exiting.FromIndex != 1.5 || exiting.ToIndex != 1 || !exiting.Flip {
		t.Errorf("exiting; got from=%v to=%v flip=%v, want 1.5, 1, true", exiting.FromIndex, exiting.ToIndex, exiting.Flip)
	}

	// Tangent rays count as entering.
	grazing := Contact{N: vec3.T{0, 1, 0}, Mtl: glass}
	grazing.ClassifyRefraction(vec3.T{1, 0, 0})
	if grazing.Flip {
		t.Errorf("grazing ray should not flip")
	}
}
