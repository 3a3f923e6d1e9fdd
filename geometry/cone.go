package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Tolerances on the cone's extent; both ends are hard to hit exactly.
const (
	coneEdgeTolerance = 0.001
	coneApexY         = 0.999
)

// Cone has its apex at (0, 1, 0) and a unit-radius base disc on y=0.
type Cone struct{}

func (Cone) GetAABox() aabox.AABox {
	return aabox.AABox{
		X: ray.Span{Lo: -1.0, Hi: 1.0},
		Y: ray.Span{Lo: 0.0, Hi: 1.0},
		Z: ray.Span{Lo: -1.0, Hi: 1.0},
	}
}

func (cone Cone) RayHits(r ray.Ray) []Hit {
	if aabox.RayTestAABox(r, cone.GetAABox().Pad(boundsPad)).IsNaN() {
		return nil
	}

	s, v := r.Point, r.Slope
	result := make([]Hit, 0, 3)

	if v[1] != 0 {
		tBot := -s[1] / v[1]
		x, z := s[0]+tBot*v[0], s[2]+tBot*v[2]
		disSq := x*x + z*z
		if !math.IsNaN(tBot) && disSq <= 1+coneEdgeTolerance {
			radius := math.Sqrt(disSq)
			theta := math.Atan2(-x, z)
			result = append(result, Hit{
				T:  tBot,
				N:  vec3.T{0, -1, 0},
				UV: vec2.T{math.Mod(theta/(2*math.Pi)+1.25, 1) * radius, radius},
			})
		}
	}

	// (y-1)^2 = x^2 + z^2 along the ray.
	a := v[1]*v[1] - v[0]*v[0] - v[2]*v[2]
	b := 2 * (s[1]*v[1] - s[0]*v[0] - s[2]*v[2] - v[1])
	c := (s[1]-1)*(s[1]-1) - s[0]*s[0] - s[2]*s[2]
	t0, t1, ok := solveQuadratic(a, b, c)
	if !ok {
		return result
	}

	for i, t := range [2]float64{t0, t1} {
		// A tangent ray, such as one down the axis, has a double root.
		if i == 1 && t1 == t0 {
			continue
		}
		if !(t > 0) {
			continue
		}
		p := r.Eval(t)
		if p[1] < -coneEdgeTolerance || p[1] > 1+coneEdgeTolerance {
			continue
		}

		n := vec3.T{0, 1, 0}
		if p[1] < coneApexY {
			n = vec3.T{p[0] / (1 - p[1]), 1, p[2] / (1 - p[1])}
		}
		result = append(result, Hit{
			T:  t,
			N:  n,
			UV: vec2.T{turns(math.Atan2(-p[2], -p[0])), 1 - p[1]},
		})
	}

	return result
}
