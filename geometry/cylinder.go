package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Cylinder is the closed unit-radius cylinder around the y axis between y=0
// and y=1.
type Cylinder struct{}

func (Cylinder) GetAABox() aabox.AABox {
	return aabox.AABox{
		X: ray.Span{Lo: -1.0, Hi: 1.0},
		Y: ray.Span{Lo: 0.0, Hi: 1.0},
		Z: ray.Span{Lo: -1.0, Hi: 1.0},
	}
}

func (cyl Cylinder) RayHits(r ray.Ray) []Hit {
	if aabox.RayTestAABox(r, cyl.GetAABox().Pad(boundsPad)).IsNaN() {
		return nil
	}

	s, v := r.Point, r.Slope
	result := make([]Hit, 0, 3)

	if v[1] != 0 {
		tTop := (1 - s[1]) / v[1]
		x, z := s[0]+tTop*v[0], s[2]+tTop*v[2]
		if !math.IsNaN(tTop) && x*x+z*z <= 1 {
			result = append(result, Hit{
				T:  tTop,
				N:  vec3.T{0, 1, 0},
				UV: vec2.T{turns(math.Atan2(-z, -x)), 1},
			})
		}

		tBot := -s[1] / v[1]
		x, z = s[0]+tBot*v[0], s[2]+tBot*v[2]
		if !math.IsNaN(tBot) && x*x+z*z <= 1 {
			result = append(result, Hit{
				T:  tBot,
				N:  vec3.T{0, -1, 0},
				UV: vec2.T{turns(math.Atan2(-x, -z)), 0},
			})
		}
	}

	a := v[0]*v[0] + v[2]*v[2]
	b := 2 * (v[0]*s[0] + v[2]*s[2])
	c := s[0]*s[0] + s[2]*s[2] - 1
	tSmall, tBig, ok := solveQuadratic(a, b, c)
	if ok {
		// The wall is entered at most once in front of the origin.
		t := tSmall
		if t < 0 {
			t = tBig
		}
		p := r.Eval(t)
		if p[1] >= 0 && p[1] <= 1 {
			result = append(result, Hit{
				T:  t,
				N:  vec3.T{p[0], 0, p[2]},
				UV: vec2.T{turns(math.Atan2(-p[2], -p[0])), 1 - p[1]},
			})
		}
	}

	return result
}
