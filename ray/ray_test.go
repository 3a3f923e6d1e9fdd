package ray

import (
	"math"
	"testing"

	"whitted/affinetransform"
	"whitted/vmath/vec3"
)

func TestTransformKeepsParameter(t *testing.T) {
	r := Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -1}}
	xf := affinetransform.Compose(affinetransform.Translate(vec3.T{1, 2, 3}), affinetransform.Scale(0.5))

	mapped := r.Transform(xf)
	if got, want := mapped.Slope.Norm(), 0.5; got != want {
		t.Errorf("mapped slope norm; got %v, want %v", got, want)
	}

	for _, tt := range []float64{-1, 0, 2.5, 7} {
		got := mapped.Eval(tt)
		want := affinetransform.TransformPoint(xf, r.Eval(tt))
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-12 {
				t.Errorf("Eval(%v) after transform; got %v, want %v", tt, got, want)
				break
			}
		}
	}
}

func TestSpanOverlaps(t *testing.T) {
	testCases := []struct {
		a, b Span
		want bool
	}{
		{Span{0, 1}, Span{0.5, 2}, true},
		{Span{0, 1}, Span{1, 2}, false},
		{Span{0, 1}, Span{-2, -1}, false},
		{Span{math.Inf(-1), math.Inf(1)}, Span{3, 4}, true},
	}

	for _, tc := range testCases {
		if got := SpanOverlaps(tc.a, tc.b); got != tc.want {
			t.Errorf("SpanOverlaps(%v, %v); got %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
