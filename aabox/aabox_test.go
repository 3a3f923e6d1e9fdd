package aabox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/affinetransform"
	"whitted/ray"
	"whitted/vmath/vec3"
)

func unitCube() AABox {
	return AABox{
		X: ray.Span{Lo: -0.5, Hi: 0.5},
		Y: ray.Span{Lo: -0.5, Hi: 0.5},
		Z: ray.Span{Lo: -0.5, Hi: 0.5},
	}
}

func TestRayTestAABox(t *testing.T) {
	testCases := []struct {
		desc    string
		r       ray.Ray
		want    ray.Span
		wantNaN bool
	}{
		{
			desc: "straight through",
			r:    ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -1}},
			want: ray.Span{Lo: 4.5, Hi: 5.5},
		},
		{
			desc: "unnormalized slope",
			r:    ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -2}},
			want: ray.Span{Lo: 2.25, Hi: 2.75},
		},
		{
			desc:    "parallel outside",
			r:       ray.Ray{Point: vec3.T{2, 2, 5}, Slope: vec3.T{0, 0, -1}},
			wantNaN: true,
		},
		{
			desc:    "diagonal miss",
			r:       ray.Ray{Point: vec3.T{-3, 0, 2}, Slope: vec3.T{1, 0, 0.1}},
			wantNaN: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := RayTestAABox(tc.r, unitCube())
			if tc.wantNaN {
				if !got.IsNaN() {
					t.Errorf("RayTestAABox; got %v, want NaN span", got)
				}
				return
			}
			if diff := cmp.Diff(got, tc.want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("RayTestAABox; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	xf := affinetransform.Compose(affinetransform.Translate(vec3.T{1, 0, 0}), affinetransform.ScaleV(vec3.T{2, 1, 1}))
	got := unitCube().Transform(xf)
	want := AABox{
		X: ray.Span{Lo: 0, Hi: 2},
		Y: ray.Span{Lo: -0.5, Hi: 0.5},
		Z: ray.Span{Lo: -0.5, Hi: 0.5},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Transform; diff (-got +want)\n%s", diff)
	}
}

func TestAccumulate(t *testing.T) {
	acc := AccumZeroAABox()
	if !acc.IsEmpty() {
		t.Errorf("AccumZeroAABox should be empty")
	}
	acc = MinContainingAABox(acc, unitCube())
	if diff := cmp.Diff(acc, unitCube()); diff != "" {
		t.Errorf("fold of one box; diff (-got +want)\n%s", diff)
	}
	if !acc.Pad(0.1).IsFinite() {
		t.Errorf("padded cube should be finite")
	}
}
